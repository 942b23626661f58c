package types

import (
	"strings"

	"golang.org/x/mod/semver"
)

// IsValidReleaseVersion reports whether v is a full semantic version
// (MAJOR.MINOR.PATCH with optional pre-release and build parts).
// A leading "v" or "=" is accepted. Shorthand forms such as "1.2" are not.
func IsValidReleaseVersion(v string) bool {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "=")
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return false
	}

	core := v
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.Count(core, ".") != 2 {
		return false
	}

	return semver.IsValid("v" + v)
}
