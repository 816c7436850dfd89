package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat checks a requested report format against the
// formats enabled in configuration. An empty list disables the check,
// which keeps custom formatter registrations usable without a config
// change.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("output format %q is not enabled (choose one of: %s)",
		format, strings.Join(supportedFormats, ", "))
}
