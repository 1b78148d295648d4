// Package group implements the hierarchical SBOM-group service (spec.md
// §3, §4.G/§4.H): groups form a forest of named nodes with mutually
// exclusive (parent, name) pairs, optimistic-concurrency revisions, and
// SBOM↔Group assignments.
package group

import (
	"github.com/google/uuid"
)

// Group is one node in the sbom_group forest (spec.md §3).
type Group struct {
	ID       uuid.UUID
	Parent   *uuid.UUID
	Name     string
	Labels   map[string]string
	Revision int32
}

// Assignment links an SBOM to a Group (spec.md §3, composite key).
type Assignment struct {
	SbomID  uuid.UUID
	GroupID uuid.UUID
}

// CreateRequest is the input to Service.Create.
type CreateRequest struct {
	Parent *uuid.UUID
	Name   string
	Labels map[string]string
}

// UpdateRequest is the input to Service.Update. Parent is re-validated
// even when unchanged, since the cycle check (spec.md §4.H step 5) must
// run on every update.
type UpdateRequest struct {
	Parent *uuid.UUID
	Name   string
	Labels map[string]string
}

// GetFlags controls which optional projections Get/GetByPath/List
// compute alongside the base Group row (spec.md §4.H).
type GetFlags struct {
	Children bool
	Totals   bool
	Parents  bool
}

// View pairs a Group with the optional projections GetFlags requested.
type View struct {
	Group    Group
	Children []uuid.UUID
	Totals   int64
	// Parents is ordered root-first, exclusive of the group itself; empty
	// when the group is a root (spec.md §4.H, open question confirmed:
	// root groups carry an empty, non-nil slice).
	Parents []uuid.UUID
}

// ListParams is the input to Service.List, backing `GET /v2/group/sbom`
// (spec.md §6).
type ListParams struct {
	Query  string
	Offset int
	Limit  int
	Flags  GetFlags
}

// ListResult is a page of Views plus the total row count of the
// unlimited, filtered relation (spec.md §4.F).
type ListResult struct {
	Total uint64
	Items []View
}
