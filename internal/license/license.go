// Package license implements the license-expansion query of spec.md
// §4.I: the distinct, case-folded set of license names a given SBOM
// exposes to the user, joined from its packages' recorded licenses.
package license

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/trustify-project/catalogd/internal/apierr"
	"github.com/trustify-project/catalogd/internal/query"
	"github.com/trustify-project/catalogd/internal/spdx"
)

// Row is one entry of the expanded license set. Name and ID are always
// equal (spec.md §4.I keeps them separate fields for consumer
// compatibility with a richer license-table shape elsewhere in the
// catalog).
type Row struct {
	Name string
	ID   string
}

// buildQuery composes the "case on text vs sbom_id" expression from
// spec.md §4.I: each sbom_package_license row joined to license prefers
// the parsed SPDX expression when present, else falls back to the raw
// license text, distinct and ordered by a case-folded key (SPDX
// identifiers are case-insensitive, spec.md §9). It reuses the Filter
// Builder's Expr/Rebind idiom (internal/query) rather than a bespoke
// string-building path, the same machinery spec.md §4.I calls out this
// query as exercising "against a non-trivial relational shape".
func buildQuery(sbomID uuid.UUID) query.Expr {
	return query.Expr{
		SQL: `
			SELECT DISTINCT ON (LOWER(expanded.expr)) expanded.expr AS license_name, expanded.expr AS license_id
			FROM (
				SELECT CASE
					WHEN l.spdx_expression IS NOT NULL AND l.spdx_expression <> '' THEN l.spdx_expression
					ELSE l.text
				END AS expr
				FROM sbom_package_license spl
				JOIN license l ON l.id = spl.license_id
				WHERE spl.sbom_id = ?
			) AS expanded
			ORDER BY LOWER(expanded.expr) ASC, expanded.expr ASC`,
		Args: []any{sbomID},
	}
}

// Query runs the license-expansion query for sbomID against db, which
// may be *sql.DB or *sql.Tx. The Licenses HTTP handler passes the
// connection pool, so the query does not run inside a read-only
// transaction.
func Query(ctx context.Context, db interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, sbomID uuid.UUID) ([]Row, error) {
	expr := buildQuery(sbomID)
	rows, err := db.QueryContext(ctx, query.Rebind(expr), expr.Args...)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "run license expansion query")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Name, &r.ID); err != nil {
			return nil, apierr.Wrap(apierr.Internal, err, "scan license row")
		}
		out = append(out, canonicalize(r))
	}
	return out, apierr.Wrap(apierr.Internal, rows.Err(), "iterate license rows")
}

// canonicalize swaps in the SPDX catalog's canonical casing when r.Name
// matches a known identifier case-insensitively, so two packages
// recording "mit" and "MIT" display consistently despite the query's
// distinctness being case-folded.
func canonicalize(r Row) Row {
	if canon, ok := spdx.Canonical(r.Name); ok {
		return Row{Name: canon, ID: canon}
	}
	return r
}
