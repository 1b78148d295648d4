// Package spdx is the static SPDX license-identifier table referenced
// by spec.md §1/§4.I as an external collaborator: the full catalog is
// out of scope, but the license-expansion query needs a minimal,
// case-insensitive lookup to canonicalize display casing (spec.md §9,
// "Case sensitivity").
package spdx

import "strings"

// identifiers is a deliberately small, hand-picked subset of the SPDX
// license list covering the identifiers that show up most often in
// dependency manifests. It is not the full catalog (out of scope per
// spec.md §1); a real deployment would load this from the published
// SPDX license-list JSON.
var identifiers = []string{
	"MIT", "Apache-2.0", "BSD-2-Clause", "BSD-3-Clause", "ISC",
	"GPL-2.0-only", "GPL-2.0-or-later", "GPL-3.0-only", "GPL-3.0-or-later",
	"LGPL-2.1-only", "LGPL-2.1-or-later", "LGPL-3.0-only", "LGPL-3.0-or-later",
	"AGPL-3.0-only", "AGPL-3.0-or-later", "MPL-2.0", "EPL-2.0", "CDDL-1.0",
	"Unlicense", "CC0-1.0", "Zlib", "BSL-1.0", "WTFPL", "Python-2.0", "OFL-1.1",
}

var byFold map[string]string

func init() {
	byFold = make(map[string]string, len(identifiers))
	for _, id := range identifiers {
		byFold[strings.ToLower(id)] = id
	}
}

// Canonical returns the catalog's canonical casing for id, matched
// case-insensitively (spec.md §9: SPDX identifiers are case-insensitive).
// ok is false when id isn't in this minimal table, in which case callers
// should display id verbatim.
func Canonical(id string) (canonical string, ok bool) {
	canonical, ok = byFold[strings.ToLower(id)]
	return canonical, ok
}

// Known reports whether id (case-insensitively) names a catalog entry.
func Known(id string) bool {
	_, ok := byFold[strings.ToLower(id)]
	return ok
}
