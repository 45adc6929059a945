package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-edureport/internal/browser"
	"github.com/alnah/go-edureport/internal/config"
	"github.com/alnah/go-edureport/internal/fileutil"
	"github.com/alnah/go-edureport/internal/hints"
)

// errNotReady is returned when doctor finds blocking problems.
var errNotReady = errors.New("environment not ready, see errors above")

// pingTimeout bounds the service reachability check.
const pingTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	API      apiInfo    `json:"api"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Remote  string `json:"remote,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// apiInfo holds the service reachability result.
type apiInfo struct {
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OutputDir      string `json:"output_dir"`
	OutputWritable bool   `json:"output_writable"`
	FontFile       string `json:"font_file,omitempty"`
	FontFound      bool   `json:"font_found"`
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check Chrome, the services and the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := runDoctor(cmd.Context(), a)
			if a.common.json {
				if err := writeJSON(a.env.Stdout, result); err != nil {
					return err
				}
			} else {
				printDoctorResult(a.env.Stdout, result)
			}
			if result.Status == "errors" {
				return errNotReady
			}
			return nil
		},
	}
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, a *app) *doctorResult {
	cfg := a.env.Config
	result := &doctorResult{
		Status: "ready",
		Env:    envInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	checkEnvironment(result, cfg)
	checkChrome(result, cfg)
	checkAPI(ctx, result, a)
	checkSystem(result, cfg)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkChrome detects Chrome/Chromium installation. A missing browser is a
// warning: reports still export with placeholders.
func checkChrome(result *doctorResult, cfg *config.Config) {
	result.Chrome.Sandbox = !cfg.Browser.NoSandbox
	if cfg.Browser.RemoteURL != "" {
		result.Chrome.Found = true
		result.Chrome.Remote = cfg.Browser.RemoteURL
		return
	}

	chromePath := cfg.Browser.Bin
	if chromePath == "" {
		var found bool
		chromePath, found = browser.LookPath()
		if !found {
			msg := "Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN"
			if cfg.Page.URL != "" {
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg+"; region images will be placeholders")
			}
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}
	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- configured browser binary
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkAPI pings the prediction service.
func checkAPI(ctx context.Context, result *doctorResult, a *app) {
	result.API.BaseURL = a.env.Config.API.BaseURL
	client, err := a.client()
	if err != nil {
		result.API.Error = err.Error()
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid API base URL: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		result.API.Error = err.Error()
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Services unreachable at %s; recommendations and analytics will be missing", result.API.BaseURL))
		return
	}
	result.API.Reachable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, cfg *config.Config) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !cfg.Browser.NoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the browser sandbox is on. Set "+hints.NoSandboxEnv+"=true")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("EDUREPORT_CONTAINER") == "1" {
		return true, "EDUREPORT_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the output directory and the configured font.
func checkSystem(result *doctorResult, cfg *config.Config) {
	dir := cfg.Output.Dir
	if dir == "" {
		dir = "."
	}
	result.System.OutputDir = dir
	if err := fileutil.DirWritable(dir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Output directory not writable: %s", dir))
	} else {
		result.System.OutputWritable = true
	}

	if cfg.Report.FontFile != "" {
		result.System.FontFile = cfg.Report.FontFile
		if fileutil.FileExists(cfg.Report.FontFile) {
			result.System.FontFound = true
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("Font file not found: %s", cfg.Report.FontFile))
		}
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "edureport doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Remote != "":
		fmt.Fprintf(w, "  [OK] Remote: %s\n", r.Chrome.Remote)
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	default:
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Services")
	if r.API.Reachable {
		fmt.Fprintf(w, "  [OK] Reachable at %s\n", r.API.BaseURL)
	} else {
		fmt.Fprintf(w, "  [WARN] Unreachable at %s\n", r.API.BaseURL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.OutputWritable {
		fmt.Fprintf(w, "  [OK] Output directory: %s\n", r.System.OutputDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Output directory: %s not writable\n", r.System.OutputDir)
	}
	if r.System.FontFile != "" {
		if r.System.FontFound {
			fmt.Fprintf(w, "  [OK] Font: %s\n", r.System.FontFile)
		} else {
			fmt.Fprintf(w, "  [ERROR] Font: %s missing\n", r.System.FontFile)
		}
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to export")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
