package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-edureport/internal/assets"
	"github.com/alnah/go-edureport/internal/config"
	"github.com/alnah/go-edureport/internal/notice"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and asset loading.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	AssetLoader assets.AssetLoader // nil = resolve from report.assetsPath
	Config      *config.Config     // Loaded by the root command before any subcommand runs
	Logger      zerolog.Logger
	Banner      *notice.Banner
}

// DefaultEnv returns production environment with embedded assets.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
		Logger: zerolog.Nop(),
		Banner: notice.New(os.Stderr, notice.DefaultDuration),
	}
}

// newLogger returns a console logger on w. Quiet keeps errors only.
func newLogger(w io.Writer, verbose, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case quiet:
		level = zerolog.ErrorLevel
	case verbose:
		level = zerolog.DebugLevel
	}
	return zerolog.New(consoleWriter(w, isTerminal(w))).
		Level(level).
		With().Timestamp().Logger()
}

// consoleWriter formats log lines for a person reading out.
func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !color}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
