// Package labels implements the external label validator collaborator
// referenced by spec.md §3/§4.H: Group.Labels is a short key/value
// mapping, validated before a Create or Update is accepted.
package labels

import (
	"fmt"
	"regexp"
)

const (
	maxKeyLength   = 63
	maxValueLength = 255
	maxCount       = 64
)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_.\-]*[A-Za-z0-9])?$`)

// ValidateFunc matches the signature Service expects for its label
// validator, so a caller can swap in a stricter policy.
type ValidateFunc func(labels map[string]string) error

// Validate checks key/value shape: short, ASCII-identifier-ish keys and
// bounded-length values, with no control characters in either. This is a
// narrow, hand-rolled validator (no ecosystem label-validation library
// appeared across the retrieved pack; see DESIGN.md).
func Validate(labels map[string]string) error {
	if len(labels) > maxCount {
		return fmt.Errorf("too many labels: %d exceeds maximum %d", len(labels), maxCount)
	}
	for k, v := range labels {
		if len(k) == 0 || len(k) > maxKeyLength {
			return fmt.Errorf("label key %q must be 1..%d bytes", k, maxKeyLength)
		}
		if !keyRe.MatchString(k) {
			return fmt.Errorf("label key %q contains disallowed characters", k)
		}
		if len(v) > maxValueLength {
			return fmt.Errorf("label value for key %q exceeds maximum length %d", k, maxValueLength)
		}
		if hasControlByte(v) {
			return fmt.Errorf("label value for key %q contains control characters", k)
		}
	}
	return nil
}

func hasControlByte(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}
