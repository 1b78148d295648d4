package group

import (
	"fmt"
	"strings"

	"github.com/trustify-project/catalogd/internal/query"
	"github.com/trustify-project/catalogd/internal/query/token"
)

// Columns describes the sbom_group relation to the filter DSL (spec.md
// §4.B), backing the `q` parameter on `GET /v2/group/sbom` (spec.md §6).
// Declaration order is also the full-text expansion order (spec.md §4.E).
var Columns = query.NewColumns(
	query.Column{Name: "id", Kind: query.UUID, SQL: `"sbom_group"."id"`},
	query.Column{Name: "parent", Kind: query.UUID, SQL: `"sbom_group"."parent_id"`},
	query.Column{Name: "name", Kind: query.String, SQL: `"sbom_group"."name"`},
	query.Column{Name: "revision", Kind: query.Integer, SQL: `"sbom_group"."revision"`},
	// labels is a flat string->string map; labels:key addresses one entry
	// as JSON text, exercising the Column Registry's JSON sub-path support.
	query.Column{Name: "labels", Kind: query.JSON, SQL: `"sbom_group"."labels"`},
	// label is a computed/aliased field (spec.md §4.B's translate hook):
	// `label=key:value` desugars into a `labels:key=value` sub-query, so
	// callers can write `label=team:catalog` instead of the JSON-sub-path
	// form directly.
	query.Column{Name: "label", Kind: query.Computed, Translate: translateLabel},
)

// translateLabel implements Columns.label's Translate hook. A malformed
// value (missing the `key:value` separator) is rewritten to reference an
// unknown field, so Build still surfaces a clear UnknownField error
// rather than silently matching nothing.
func translateLabel(_ string, op token.Operator, value string) (string, bool) {
	key, val, found := strings.Cut(value, ":")
	if !found || key == "" {
		return "label_missing_key_separator=" + query.EscapeDSLValue(value), true
	}
	return fmt.Sprintf("labels:%s%s%s", key, op, query.EscapeDSLValue(val)), true
}

const baseQuery = `SELECT "sbom_group"."id", "sbom_group"."parent_id", "sbom_group"."name", "sbom_group"."labels", "sbom_group"."revision" FROM "sbom_group"`
