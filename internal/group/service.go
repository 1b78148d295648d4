package group

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trustify-project/catalogd/internal/apierr"
	"github.com/trustify-project/catalogd/internal/labels"
	"github.com/trustify-project/catalogd/internal/query"
)

// MaxHierarchyDepth bounds how many parent hops a cycle check or
// parent-path walk will follow before giving up (spec.md §3).
const MaxHierarchyDepth = 100

// Service implements the group CRUD + hierarchy contract of spec.md
// §4.H. Every mutating method opens its own transaction; read methods
// run against the pool directly (spec.md §5).
type Service struct {
	DB                *sql.DB
	Store             Store
	ValidateLabels    labels.ValidateFunc
	MaxHierarchyDepth int
	MaxNameLength     int
	Log               *logrus.Entry
}

// NewService builds a Service with spec.md defaults. db is the
// connection pool; callers may override MaxHierarchyDepth/MaxNameLength
// via config.Config before first use.
func NewService(db *sql.DB) *Service {
	return &Service{
		DB:                db,
		Store:             Store{},
		ValidateLabels:    labels.Validate,
		MaxHierarchyDepth: MaxHierarchyDepth,
		MaxNameLength:     255,
		Log:               logrus.WithField("component", "group.Service"),
	}
}

func (s *Service) maxName() int {
	if s.MaxNameLength > 0 {
		return s.MaxNameLength
	}
	return 255
}

func (s *Service) maxDepth() int {
	if s.MaxHierarchyDepth > 0 {
		return s.MaxHierarchyDepth
	}
	return MaxHierarchyDepth
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic (spec.md §5). A canceled ctx aborts via the
// deferred Rollback once fn returns its context.Canceled error.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apierr.Wrap(apierr.Internal, err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = apierr.Wrap(apierr.Internal, cErr, "commit transaction")
		}
	}()
	err = fn(tx)
	return err
}

// Create validates and inserts a new group (spec.md §4.H).
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Group, error) {
	if err := ValidateName(req.Name, s.maxName()); err != nil {
		return nil, err
	}
	if err := s.ValidateLabels(req.Labels); err != nil {
		return nil, apierr.Wrap(apierr.BadRequest, err, "invalid labels")
	}

	g := &Group{ID: uuid.New(), Parent: req.Parent, Name: req.Name, Labels: req.Labels, Revision: 1}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if req.Parent != nil {
			exists, err := s.Store.Exists(ctx, tx, *req.Parent)
			if err != nil {
				return err
			}
			if !exists {
				return apierr.New(apierr.NotFound, "parent group %s not found", *req.Parent)
			}
		}
		return s.Store.Insert(ctx, tx, g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Get loads a group by id and the projections flags requests. It returns
// nil, nil when the group is absent; the service layer does not set HTTP
// status (spec.md §4.H).
func (s *Service) Get(ctx context.Context, id uuid.UUID, flags GetFlags) (*View, error) {
	g, err := s.Store.FindByID(ctx, s.DB, id)
	if err != nil || g == nil {
		return nil, err
	}
	return s.view(ctx, s.DB, *g, flags)
}

// GetByPath walks decoded segments from the root, each step filtered by
// (parent, name); the first segment uses parent IS NULL (spec.md §4.H).
func (s *Service) GetByPath(ctx context.Context, segments []string, flags GetFlags) (*View, error) {
	var current *Group
	var parent *uuid.UUID
	for _, seg := range segments {
		g, err := s.Store.FindByParentAndName(ctx, s.DB, parent, seg)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, nil
		}
		current = g
		id := g.ID
		parent = &id
	}
	if current == nil {
		return nil, nil
	}
	return s.view(ctx, s.DB, *current, flags)
}

// List builds a paginated, DSL-filtered view of groups (spec.md §6
// `GET /v2/group/sbom`, supplementing §4.H per SPEC_FULL.md).
func (s *Service) List(ctx context.Context, p ListParams) (ListResult, error) {
	tree, err := query.Parse(p.Query)
	if err != nil {
		return ListResult{}, apierr.Wrap(apierr.BadRequest, err, "parse query")
	}
	expr, err := query.Build(tree, Columns)
	if err != nil {
		return ListResult{}, apierr.Wrap(apierr.BadRequest, err, "build filter")
	}

	where := baseQuery
	if expr.SQL != "" && expr.SQL != "TRUE" {
		where += " WHERE " + expr.SQL
	}
	limiter := &query.Limiter{
		Q:         s.DB,
		BaseQuery: query.Rebind(query.Expr{SQL: where, Args: expr.Args}),
		Args:      expr.Args,
		OrderBy:   `ORDER BY "sbom_group"."name" ASC`,
	}

	page, err := query.FetchPage(ctx, limiter, query.Paginated{Offset: p.Offset, Limit: p.Limit}, func(rows *sql.Rows) (Group, error) {
		var g Group
		var parent uuid.NullUUID
		var labelsJSON []byte
		if err := rows.Scan(&g.ID, &parent, &g.Name, &labelsJSON, &g.Revision); err != nil {
			return Group{}, err
		}
		if parent.Valid {
			id := parent.UUID
			g.Parent = &id
		}
		m, err := decodeLabels(labelsJSON)
		if err != nil {
			return Group{}, err
		}
		g.Labels = m
		return g, nil
	})
	if err != nil {
		return ListResult{}, apierr.Wrap(apierr.Internal, err, "fetch group page")
	}

	items := make([]View, 0, len(page.Items))
	for _, g := range page.Items {
		v, err := s.view(ctx, s.DB, g, p.Flags)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, *v)
	}
	return ListResult{Total: page.Total, Items: items}, nil
}

// view assembles a View for g according to flags. db may be *sql.DB or
// *sql.Tx, so it can be used both for standalone reads and inside the
// caller's transaction.
func (s *Service) view(ctx context.Context, db Execer, g Group, flags GetFlags) (*View, error) {
	v := &View{Group: g}
	if flags.Children {
		children, err := s.Store.ListChildren(ctx, db, g.ID)
		if err != nil {
			return nil, err
		}
		v.Children = children
	}
	if flags.Totals {
		n, err := s.Store.CountAssignments(ctx, db, g.ID)
		if err != nil {
			return nil, err
		}
		v.Totals = n
	}
	if flags.Parents {
		parents, err := s.parentPath(ctx, db, g)
		if err != nil {
			return nil, err
		}
		v.Parents = parents
	}
	return v, nil
}

// parentPath returns the ordered root-to-parent chain for g, excluding g
// itself; empty for a root group (spec.md §4.H, §9's open question
// resolved to "empty list", per DESIGN.md).
func (s *Service) parentPath(ctx context.Context, db Execer, g Group) ([]uuid.UUID, error) {
	if g.Parent == nil {
		return []uuid.UUID{}, nil
	}
	chain, err := s.Store.AncestorChain(ctx, db, *g.Parent, s.maxDepth())
	if err != nil {
		return nil, err
	}
	path := make([]uuid.UUID, len(chain))
	for i, id := range chain {
		path[len(chain)-1-i] = id
	}
	return path, nil
}

// Update applies req to the group at id, guarded by expectedRevision, and
// rejects cycles and self-parenting (spec.md §4.H).
func (s *Service) Update(ctx context.Context, id uuid.UUID, expectedRevision int32, req UpdateRequest) (*Group, error) {
	if err := ValidateName(req.Name, s.maxName()); err != nil {
		return nil, err
	}
	if err := s.ValidateLabels(req.Labels); err != nil {
		return nil, apierr.Wrap(apierr.BadRequest, err, "invalid labels")
	}
	if req.Parent != nil && *req.Parent == id {
		return nil, apierr.New(apierr.BadRequest, "group cannot be its own parent")
	}

	var updated *Group
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := s.Store.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apierr.New(apierr.NotFound, "group %s not found", id)
		}
		if existing.Revision != expectedRevision {
			return apierr.New(apierr.BadRequest, "revision mismatch")
		}

		if req.Parent != nil {
			exists, err := s.Store.Exists(ctx, tx, *req.Parent)
			if err != nil {
				return err
			}
			if !exists {
				return apierr.New(apierr.NotFound, "parent group %s not found", *req.Parent)
			}

			chain, err := s.Store.AncestorChain(ctx, tx, *req.Parent, s.maxDepth())
			if err != nil {
				return err
			}
			if err := s.Store.LockAncestors(ctx, tx, chain); err != nil {
				return err
			}
			for _, ancestor := range chain {
				if ancestor == id {
					return apierr.New(apierr.BadRequest, "update would create a cycle")
				}
			}
		}

		g := &Group{ID: id, Parent: req.Parent, Name: req.Name, Labels: req.Labels, Revision: expectedRevision + 1}
		ok, err := s.Store.Update(ctx, tx, g, expectedRevision)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.New(apierr.BadRequest, "revision mismatch")
		}

		// Re-run the cycle check post-write inside the same transaction
		// (spec.md §5 option (b)), closing the window the row locks in
		// option (a) already narrowed.
		if req.Parent != nil {
			chain, err := s.Store.AncestorChain(ctx, tx, *req.Parent, s.maxDepth())
			if err != nil {
				return err
			}
			for _, ancestor := range chain {
				if ancestor == id {
					return apierr.New(apierr.BadRequest, "update would create a cycle")
				}
			}
		}

		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the group at id, guarded by expectedRevision, and
// refuses when children exist (spec.md §4.H). An expectedRevision of 0
// (revisions start at 1) means no revision was supplied: the revision
// read inside this transaction is used instead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, expectedRevision int32) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := s.Store.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apierr.New(apierr.NotFound, "group %s not found", id)
		}
		if expectedRevision == 0 {
			expectedRevision = existing.Revision
		}
		if existing.Revision != expectedRevision {
			return apierr.New(apierr.BadRequest, "revision mismatch")
		}

		children, err := s.Store.ListChildren(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return apierr.New(apierr.Conflict, "group %s has children", id)
		}

		ok, err := s.Store.DeleteByID(ctx, tx, id, expectedRevision)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.New(apierr.BadRequest, "revision mismatch")
		}
		return nil
	})
}

// GetAssignments returns the group ids sbomID is assigned to (spec.md §4.H).
func (s *Service) GetAssignments(ctx context.Context, sbomID uuid.UUID) ([]uuid.UUID, error) {
	return s.Store.GetAssignedGroups(ctx, s.DB, sbomID)
}

// SetAssignments replaces sbomID's assignment set with groupIDs, dedup'd
// and existence-checked, in one transaction (spec.md §4.H).
func (s *Service) SetAssignments(ctx context.Context, sbomID uuid.UUID, groupIDs []uuid.UUID) error {
	unique := dedupe(groupIDs)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireAllExist(ctx, tx, unique); err != nil {
			return err
		}
		if err := s.Store.DeleteAssignmentsForSBOM(ctx, tx, sbomID); err != nil {
			return err
		}
		for _, gid := range unique {
			if err := s.Store.InsertAssignment(ctx, tx, sbomID, gid, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddAssignments unions groupIDs into sbomID's assignment set, ignoring
// already-present pairs (spec.md §4.H/§7). Not exposed over HTTP per
// spec.md's open questions, but kept for programmatic/embedding callers
// (see SPEC_FULL.md's "Supplemented features").
func (s *Service) AddAssignments(ctx context.Context, sbomID uuid.UUID, groupIDs []uuid.UUID) error {
	unique := dedupe(groupIDs)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireAllExist(ctx, tx, unique); err != nil {
			return err
		}
		for _, gid := range unique {
			if err := s.Store.InsertAssignment(ctx, tx, sbomID, gid, true); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) requireAllExist(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) error {
	var missing []uuid.UUID
	for _, id := range ids {
		exists, err := s.Store.Exists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apierr.New(apierr.NotFound, "groups not found: %v", missing)
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
