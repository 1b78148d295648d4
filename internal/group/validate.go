package group

import (
	"regexp"
	"strings"

	"github.com/trustify-project/catalogd/internal/apierr"
)

// nameRe matches the allowed character set for a group name (spec.md §3).
var nameRe = regexp.MustCompile(`^[A-Za-z0-9 _.()\-]+$`)

// ValidateName checks name against spec.md §3: 1..maxLen bytes after
// trimming, no leading/trailing whitespace, and a restricted character
// set.
func ValidateName(name string, maxLen int) error {
	if name != strings.TrimSpace(name) {
		return apierr.New(apierr.BadRequest, "name has leading or trailing whitespace")
	}
	if len(name) == 0 {
		return apierr.New(apierr.BadRequest, "name must not be empty")
	}
	if len(name) > maxLen {
		return apierr.New(apierr.BadRequest, "name exceeds maximum length %d", maxLen)
	}
	if !nameRe.MatchString(name) {
		return apierr.New(apierr.BadRequest, "name contains disallowed characters")
	}
	return nil
}
