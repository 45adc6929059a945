package main

import (
	"errors"
	"os"

	edureport "github.com/alnah/go-edureport"
	"github.com/alnah/go-edureport/internal/api"
	"github.com/alnah/go-edureport/internal/assets"
	"github.com/alnah/go-edureport/internal/browser"
	"github.com/alnah/go-edureport/internal/config"
	"github.com/alnah/go-edureport/internal/dateutil"
	"github.com/alnah/go-edureport/internal/hints"
)

// Exit codes for edureport CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful command
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome or drawing capability errors
	ExitNetwork = 5 // Collaborator service unreachable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Network errors (exit 5)
	if errors.Is(err, api.ErrNetwork) {
		return ExitNetwork
	}

	// Browser and capability errors (exit 4)
	if errors.Is(err, edureport.ErrCapabilityUnavailable) ||
		errors.Is(err, browser.ErrBrowserConnect) ||
		errors.Is(err, browser.ErrPageCreate) ||
		errors.Is(err, browser.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, edureport.ErrDownload) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, edureport.ErrInvalidProfile) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateSetNotFound) ||
		errors.Is(err, assets.ErrIncompleteTemplateSet) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, api.ErrInvalidBaseURL) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, api.ErrNetwork):
		base := ""
		if cfg != nil {
			base = cfg.API.BaseURL
		}
		return hints.ForNetwork(base)
	case errors.Is(err, browser.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, browser.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, edureport.ErrDownload):
		return hints.ForOutputDirectory()
	case errors.Is(err, assets.ErrTemplateSetNotFound):
		return hints.ForAssetNotFound([]string{assets.DefaultTemplateSetName})
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForAssetNotFound([]string{assets.DefaultStyleName})
	case errors.Is(err, edureport.ErrCapabilityUnavailable):
		var ce *edureport.CapabilityError
		if errors.As(err, &ce) && ce.ID == edureport.DocumentDrawing {
			return hints.ForFont()
		}
		return hints.ForBrowserConnect()
	}
	return ""
}
