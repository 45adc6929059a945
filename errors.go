package edureport

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Capability errors.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrUnknownCapability     = errors.New("unknown capability")

	// Section errors, recovered locally as placeholders.
	ErrCaptureFailure = errors.New("region capture failed")
	ErrInvalidImage   = errors.New("invalid image dimensions")

	// Export errors.
	ErrExportInProgress = errors.New("export already in progress")
	ErrDownload         = errors.New("failed to save artifact")
	ErrVerify           = errors.New("artifact verification failed")
	ErrSerialize        = errors.New("failed to serialize document")

	// Profile errors.
	ErrInvalidProfile = errors.New("invalid student profile")

	// Collaborator errors, logged only.
	ErrTrackingFailure = errors.New("usage tracking failed")
	ErrQueueFull       = errors.New("dispatch queue full")
)

// CapabilityError reports that a capability could not be loaded.
// It unwraps to ErrCapabilityUnavailable and to the load error.
type CapabilityError struct {
	ID  Capability
	Err error
}

func (e *CapabilityError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrCapabilityUnavailable, e.ID)
	}
	return fmt.Sprintf("%s: %s: %v", ErrCapabilityUnavailable, e.ID, e.Err)
}

func (e *CapabilityError) Unwrap() []error {
	return []error{ErrCapabilityUnavailable, e.Err}
}
