package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

// EmbeddedLoader loads the built-in assets.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle implements AssetLoader.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadTemplateSet implements AssetLoader.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	dir := path.Join("templates", name)
	return readTemplateSet(name, func(file string) ([]byte, error) {
		return fs.ReadFile(templates, path.Join(dir, file))
	})
}

// readTemplateSet reads both region templates with read and classifies
// missing files.
func readTemplateSet(name string, read func(file string) ([]byte, error)) (*TemplateSet, error) {
	recs, recErr := read(recommendationsFile)
	analytics, anErr := read(analyticsFile)

	recMissing := errors.Is(recErr, fs.ErrNotExist)
	anMissing := errors.Is(anErr, fs.ErrNotExist)

	switch {
	case recMissing && anMissing:
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	case recErr != nil && !recMissing:
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, recommendationsFile, recErr)
	case anErr != nil && !anMissing:
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, analyticsFile, anErr)
	case recMissing:
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, recommendationsFile)
	case anMissing:
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, analyticsFile)
	}

	return &TemplateSet{
		Name:            name,
		Recommendations: string(recs),
		Analytics:       string(analytics),
	}, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
