package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that an asset name is a plain file name.
// Returns ErrInvalidAssetName if the name is empty, contains path separators
// or a NUL byte, is a dot entry, or starts with a dot (hidden files).
// Extensions are allowed: templates are referenced as "invoice.docx".
func ValidateAssetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	// Drive-relative names such as "C:evil.docx" on Windows.
	if strings.Contains(name, ":") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
