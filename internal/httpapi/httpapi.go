// Package httpapi adapts the group service onto the HTTP surface in
// spec.md §6: thin handlers that decode a request, call
// internal/group.Service, map an apierr.Kind to a status code, and
// write JSON.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trustify-project/catalogd/internal/apierr"
	"github.com/trustify-project/catalogd/internal/group"
	"github.com/trustify-project/catalogd/internal/license"
)

// API wires a group.Service (and the license expansion query) onto a
// chi.Router. MaxPathDepth bounds GetByPath's segment count the way
// config.Config.MaxPathDepth does for the rest of the service.
type API struct {
	Groups       *group.Service
	MaxPathDepth int
	Log          *logrus.Entry
}

// New builds an API with spec.md defaults.
func New(groups *group.Service) *API {
	return &API{
		Groups:       groups,
		MaxPathDepth: group.MaxPathDepth,
		Log:          logrus.WithField("component", "httpapi.API"),
	}
}

// Routes mounts the endpoint table of spec.md §6 on r.
func (a *API) Routes(r chi.Router) {
	r.Route("/v2/group/sbom", func(r chi.Router) {
		r.Get("/", a.listGroups)
		r.Post("/", a.createGroup)
		r.Get("/{id}", a.getGroup)
		r.Put("/{id}", a.updateGroup)
		r.Delete("/{id}", a.deleteGroup)
	})
	r.Get("/v2/group/sbom-by-path/*", a.getGroupByPath)
	r.Get("/v2/group/sbom-assignment/{sbomID}", a.getAssignments)
	r.Put("/v2/group/sbom-assignment/{sbomID}", a.setAssignments)
}

func (a *API) listGroups(w http.ResponseWriter, r *http.Request) {
	flags := flagsFromQuery(r.URL.Query())
	offset, limit, err := pagingFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := a.Groups.List(r.Context(), group.ListParams{
		Query: r.URL.Query().Get("q"), Offset: offset, Limit: limit, Flags: flags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(result))
}

func (a *API) createGroup(w http.ResponseWriter, r *http.Request) {
	var body createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed request body"))
		return
	}

	g, err := a.Groups.Create(r.Context(), group.CreateRequest{
		Parent: body.Parent, Name: body.Name, Labels: body.Labels,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v2/group/sbom/%s", g.ID))
	writeJSON(w, http.StatusCreated, toGroupResponse(group.View{Group: *g}))
}

func (a *API) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed id"))
		return
	}

	v, err := a.Groups.Get(r.Context(), id, flagsFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	if v == nil {
		writeError(w, apierr.New(apierr.NotFound, "group %s not found", id))
		return
	}
	w.Header().Set("ETag", etag(v.Group.Revision))
	writeJSON(w, http.StatusOK, toGroupResponse(*v))
}

func (a *API) getGroupByPath(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	segments, err := group.DecodePath(raw, a.maxPathDepth())
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := a.Groups.GetByPath(r.Context(), segments, flagsFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	if v == nil {
		writeError(w, apierr.New(apierr.NotFound, "group path %q not found", raw))
		return
	}
	w.Header().Set("ETag", etag(v.Group.Revision))
	writeJSON(w, http.StatusOK, toGroupResponse(*v))
}

func (a *API) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed id"))
		return
	}
	rev, ok := revisionFromIfMatch(r.Header.Get("If-Match"))
	if !ok {
		writeError(w, apierr.New(apierr.PreconditionRequired, "If-Match header is required"))
		return
	}

	var body updateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed request body"))
		return
	}

	if _, err := a.Groups.Update(r.Context(), id, rev, group.UpdateRequest{
		Parent: body.Parent, Name: body.Name, Labels: body.Labels,
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed id"))
		return
	}
	// If-Match is optional on delete (spec.md §6); a missing/unparsable
	// header falls back to revision 0, which Service.Delete treats as
	// "use the revision read inside the delete's own transaction".
	rev, _ := revisionFromIfMatch(r.Header.Get("If-Match"))

	if err := a.Groups.Delete(r.Context(), id, rev); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) getAssignments(w http.ResponseWriter, r *http.Request) {
	sbomID, err := uuid.Parse(chi.URLParam(r, "sbomID"))
	if err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed sbom id"))
		return
	}
	ids, err := a.Groups.GetAssignments(r.Context(), sbomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (a *API) setAssignments(w http.ResponseWriter, r *http.Request) {
	sbomID, err := uuid.Parse(chi.URLParam(r, "sbomID"))
	if err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed sbom id"))
		return
	}
	var ids []uuid.UUID
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed request body"))
		return
	}
	if err := a.Groups.SetAssignments(r.Context(), sbomID, ids); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// licenseDB is the subset of *sql.DB the license-expansion handler
// needs, narrowed so handler tests can supply a sqlmock connection.
type licenseDB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Licenses handles the license-expansion read referenced in spec.md
// §4.I, mounted separately from Routes since it sits on the SBOM
// resource rather than the group hierarchy.
func Licenses(db licenseDB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sbomID, err := uuid.Parse(chi.URLParam(r, "sbomID"))
		if err != nil {
			writeError(w, apierr.New(apierr.BadRequest, "malformed sbom id"))
			return
		}
		rows, err := license.Query(r.Context(), db, sbomID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func (a *API) maxPathDepth() int {
	if a.MaxPathDepth > 0 {
		return a.MaxPathDepth
	}
	return group.MaxPathDepth
}

func flagsFromQuery(q map[string][]string) group.GetFlags {
	return group.GetFlags{
		Children: boolParam(q, "children"),
		Totals:   boolParam(q, "totals"),
		Parents:  boolParam(q, "parents"),
	}
}

func boolParam(q map[string][]string, key string) bool {
	v, ok := q[key]
	if !ok || len(v) == 0 {
		return false
	}
	b, _ := strconv.ParseBool(v[0])
	return b
}

func pagingFromQuery(q map[string][]string) (offset, limit int, err error) {
	if v, ok := q["offset"]; ok && len(v) > 0 {
		offset, err = strconv.Atoi(v[0])
		if err != nil || offset < 0 {
			return 0, 0, apierr.New(apierr.BadRequest, "invalid offset")
		}
	}
	if v, ok := q["limit"]; ok && len(v) > 0 {
		limit, err = strconv.Atoi(v[0])
		if err != nil || limit < 0 {
			return 0, 0, apierr.New(apierr.BadRequest, "invalid limit")
		}
	}
	return offset, limit, nil
}

// etag renders a group revision as a quoted HTTP validator, matched
// against revisionFromIfMatch on write requests (spec.md §6).
func etag(revision int32) string {
	return fmt.Sprintf("%q", strconv.Itoa(int(revision)))
}

func revisionFromIfMatch(header string) (int32, bool) {
	if header == "" {
		return 0, false
	}
	unquoted, err := strconv.Unquote(header)
	if err != nil {
		unquoted = header
	}
	n, err := strconv.ParseInt(unquoted, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := apierr.KindOf(err)
	writeJSON(w, kind.Status(), errorResponse{Error: err.Error()})
}
