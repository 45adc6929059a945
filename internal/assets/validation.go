package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that name is usable as a bare file or directory
// name: not empty, no separators, no dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
