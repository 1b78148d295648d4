package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// Paginated carries the offset/limit a caller requested. Limit == 0
// means unbounded (spec.md §4.F).
type Paginated struct {
	Offset int
	Limit  int
}

// PaginatedResults pairs a page of items with the total row count of
// the underlying (unlimited) query, for clients rendering "1-20 of N".
type PaginatedResults[T any] struct {
	Total uint64
	Items []T
}

// Querier is the subset of *sql.DB / *sql.Tx the Limiter needs, so
// callers can run a paginated query inside an existing transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Limiter wraps a base relation (already filtered by a Build'd Expr)
// and knows how to compute its total row count and fetch one page
// (spec.md §4.F).
type Limiter struct {
	Q         Querier
	BaseQuery string // e.g. `SELECT ... FROM "sbom_group" WHERE (...)`
	Args      []any
	OrderBy   string // e.g. `ORDER BY "name" ASC`, may be empty
}

// Total runs COUNT(*) over the base relation, ignoring OrderBy/limit.
func (l *Limiter) Total(ctx context.Context) (uint64, error) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS counted", l.BaseQuery)
	var n uint64
	if err := l.Q.QueryRowContext(ctx, q, l.Args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count base relation")
	}
	return n, nil
}

// Fetch runs the base relation with LIMIT/OFFSET applied via scan,
// which maps each *sql.Rows to a T. limit == 0 fetches every row.
func Fetch[T any](ctx context.Context, l *Limiter, p Paginated, scan func(*sql.Rows) (T, error)) ([]T, error) {
	q := l.BaseQuery
	if l.OrderBy != "" {
		q += " " + l.OrderBy
	}
	args := append([]any{}, l.Args...)
	if p.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", p.Limit)
	}
	if p.Offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", p.Offset)
	}

	rows, err := l.Q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "fetch base relation")
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		items = append(items, item)
	}
	return items, errors.Wrap(rows.Err(), "iterate rows")
}

// FetchPage runs Total and Fetch together, returning a PaginatedResults.
func FetchPage[T any](ctx context.Context, l *Limiter, p Paginated, scan func(*sql.Rows) (T, error)) (PaginatedResults[T], error) {
	total, err := l.Total(ctx)
	if err != nil {
		return PaginatedResults[T]{}, err
	}
	items, err := Fetch(ctx, l, p, scan)
	if err != nil {
		return PaginatedResults[T]{}, err
	}
	return PaginatedResults[T]{Total: total, Items: items}, nil
}
