package group

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trustify-project/catalogd/internal/apierr"
)

// Execer is the subset of *sql.DB / *sql.Tx the store needs, so callers
// can run store operations inside an existing transaction (spec.md §5).
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the pure persistence layer for groups and assignments
// (spec.md §4.G). It has no business rules of its own; Service owns
// validation, revision checks, and cycle prevention.
type Store struct{}

func scanGroup(row *sql.Row) (*Group, error) {
	var g Group
	var parent uuid.NullUUID
	var labelsJSON []byte
	if err := row.Scan(&g.ID, &parent, &g.Name, &labelsJSON, &g.Revision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apierr.Wrap(apierr.Internal, err, "scan group row")
	}
	if parent.Valid {
		id := parent.UUID
		g.Parent = &id
	}
	labels, err := decodeLabels(labelsJSON)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "decode labels")
	}
	g.Labels = labels
	return &g, nil
}

func decodeLabels(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// Insert creates a new group row with revision 1. Unique-violation on
// (parent_id, name) surfaces as apierr.Conflict.
func (Store) Insert(ctx context.Context, db Execer, g *Group) error {
	labelsJSON, err := json.Marshal(g.Labels)
	if err != nil {
		return apierr.Wrap(apierr.Internal, err, "encode labels")
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO "sbom_group" (id, parent_id, name, labels, revision)
		VALUES ($1, $2, $3, $4, $5)`,
		g.ID, nullableUUID(g.Parent), g.Name, labelsJSON, g.Revision)
	if err != nil {
		if isUniqueViolation(err) {
			return apierr.New(apierr.Conflict, "a group named %q already exists under this parent", g.Name)
		}
		return apierr.Wrap(apierr.Internal, err, "insert group")
	}
	return nil
}

// FindByID returns nil, nil when no row matches id.
func (Store) FindByID(ctx context.Context, db Execer, id uuid.UUID) (*Group, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, parent_id, name, labels, revision FROM "sbom_group" WHERE id = $1`, id)
	return scanGroup(row)
}

// FindByParentAndName returns nil, nil when no row matches. parent == nil
// queries the root scope, where NULL participates in the uniqueness
// constraint (spec.md §3).
func (Store) FindByParentAndName(ctx context.Context, db Execer, parent *uuid.UUID, name string) (*Group, error) {
	var row *sql.Row
	if parent == nil {
		row = db.QueryRowContext(ctx, `
			SELECT id, parent_id, name, labels, revision FROM "sbom_group"
			WHERE parent_id IS NULL AND name = $1`, name)
	} else {
		row = db.QueryRowContext(ctx, `
			SELECT id, parent_id, name, labels, revision FROM "sbom_group"
			WHERE parent_id = $1 AND name = $2`, *parent, name)
	}
	return scanGroup(row)
}

// Update applies the full row and bumps revision in one statement, guarded
// by expectedRevision (spec.md §5's `UPDATE ... WHERE id=? AND revision=?`
// pattern). ok is false when zero rows matched, meaning either the group
// is gone or the revision no longer matches.
func (Store) Update(ctx context.Context, db Execer, g *Group, expectedRevision int32) (ok bool, err error) {
	labelsJSON, err := json.Marshal(g.Labels)
	if err != nil {
		return false, apierr.Wrap(apierr.Internal, err, "encode labels")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE "sbom_group"
		SET parent_id = $1, name = $2, labels = $3, revision = $4
		WHERE id = $5 AND revision = $6`,
		nullableUUID(g.Parent), g.Name, labelsJSON, g.Revision, g.ID, expectedRevision)
	if err != nil {
		if isUniqueViolation(err) {
			return false, apierr.New(apierr.Conflict, "a group named %q already exists under this parent", g.Name)
		}
		return false, apierr.Wrap(apierr.Internal, err, "update group")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apierr.Wrap(apierr.Internal, err, "rows affected")
	}
	return n == 1, nil
}

// DeleteByID removes the row guarded by expectedRevision. ok is false
// when zero rows matched.
func (Store) DeleteByID(ctx context.Context, db Execer, id uuid.UUID, expectedRevision int32) (ok bool, err error) {
	res, err := db.ExecContext(ctx, `
		DELETE FROM "sbom_group" WHERE id = $1 AND revision = $2`, id, expectedRevision)
	if err != nil {
		return false, apierr.Wrap(apierr.Internal, err, "delete group")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apierr.Wrap(apierr.Internal, err, "rows affected")
	}
	return n == 1, nil
}

// ListChildren returns the direct child ids of id, in no particular order.
func (Store) ListChildren(ctx context.Context, db Execer, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM "sbom_group" WHERE parent_id = $1`, id)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "list children")
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apierr.Wrap(apierr.Internal, err, "scan child id")
		}
		ids = append(ids, id)
	}
	return ids, apierr.Wrap(apierr.Internal, rows.Err(), "iterate children")
}

// CountAssignments counts SBOM assignments for groupID.
func (Store) CountAssignments(ctx context.Context, db Execer, groupID uuid.UUID) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM "sbom_group_assignment" WHERE group_id = $1`, groupID).Scan(&n)
	if err != nil {
		return 0, apierr.Wrap(apierr.Internal, err, "count assignments")
	}
	return n, nil
}

// GetAssignedGroups returns the group ids sbomID belongs to.
func (Store) GetAssignedGroups(ctx context.Context, db Execer, sbomID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT group_id FROM "sbom_group_assignment" WHERE sbom_id = $1`, sbomID)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "get assignments")
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apierr.Wrap(apierr.Internal, err, "scan assignment")
		}
		ids = append(ids, id)
	}
	return ids, apierr.Wrap(apierr.Internal, rows.Err(), "iterate assignments")
}

// InsertAssignment inserts one (sbom_id, group_id) pair. ignoreConflict
// makes duplicate inserts a no-op, for AddAssignments' idempotent-union
// semantics (spec.md §4.H/§7).
func (Store) InsertAssignment(ctx context.Context, db Execer, sbomID, groupID uuid.UUID, ignoreConflict bool) error {
	q := `INSERT INTO "sbom_group_assignment" (sbom_id, group_id) VALUES ($1, $2)`
	if ignoreConflict {
		q += ` ON CONFLICT DO NOTHING`
	}
	_, err := db.ExecContext(ctx, q, sbomID, groupID)
	if err != nil {
		return apierr.Wrap(apierr.Internal, err, "insert assignment")
	}
	return nil
}

// DeleteAssignmentsForSBOM removes every assignment row for sbomID.
func (Store) DeleteAssignmentsForSBOM(ctx context.Context, db Execer, sbomID uuid.UUID) error {
	_, err := db.ExecContext(ctx, `DELETE FROM "sbom_group_assignment" WHERE sbom_id = $1`, sbomID)
	if err != nil {
		return apierr.Wrap(apierr.Internal, err, "delete assignments")
	}
	return nil
}

// Exists reports whether a group row with id exists.
func (Store) Exists(ctx context.Context, db Execer, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM "sbom_group" WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apierr.Wrap(apierr.Internal, err, "check group existence")
	}
	return exists, nil
}

// AncestorChain runs the recursive ancestor CTE described in spec.md
// §4.H "Cycle-detection algorithm": starting at start, it walks parent_id
// links up to and including a root, bounded at maxDepth hops. The result
// is ordered by depth ascending: start itself first, root (or the last
// node reached before the cap) last. Both the cycle check (does target
// appear anywhere in the chain?) and the parent-path projection (reverse
// the chain) are built from this single query.
func (Store) AncestorChain(ctx context.Context, db Execer, start uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	rows, err := db.QueryContext(ctx, `
		WITH RECURSIVE ancestors(id, parent_id, depth) AS (
			SELECT id, parent_id, 0 FROM "sbom_group" WHERE id = $1
			UNION ALL
			SELECT g.id, g.parent_id, a.depth + 1
			FROM "sbom_group" g
			JOIN ancestors a ON g.id = a.parent_id
			WHERE a.depth < $2
		)
		SELECT id FROM ancestors ORDER BY depth`, start, maxDepth)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "walk ancestors")
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apierr.Wrap(apierr.Internal, err, "scan ancestor")
		}
		ids = append(ids, id)
	}
	return ids, apierr.Wrap(apierr.Internal, rows.Err(), "iterate ancestors")
}

// LockAncestors takes a row lock on every id in ids, closing the
// check-then-write cycle race per spec.md §5 option (a). Call it inside
// the same transaction as the cycle check and the subsequent update.
func (Store) LockAncestors(ctx context.Context, db Execer, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id FROM "sbom_group" WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return apierr.Wrap(apierr.Internal, err, "lock ancestors")
	}
	defer rows.Close()
	for rows.Next() {
		var discard uuid.UUID
		if err := rows.Scan(&discard); err != nil {
			return apierr.Wrap(apierr.Internal, err, "scan locked ancestor")
		}
	}
	return apierr.Wrap(apierr.Internal, rows.Err(), "iterate locked ancestors")
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
