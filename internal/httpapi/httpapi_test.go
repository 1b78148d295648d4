package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustify-project/catalogd/internal/dbtest"
	"github.com/trustify-project/catalogd/internal/group"
)

func TestGetGroupNotFound(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := group.NewService(db)
	api := New(svc)

	r := chi.NewRouter()
	api.Routes(r)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, parent_id, name, labels, revision FROM "sbom_group"`).
		WillReturnRows(mock.NewRows([]string{"id", "parent_id", "name", "labels", "revision"}))

	req := httptest.NewRequest(http.MethodGet, "/v2/group/sbom/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetGroupMalformedID(t *testing.T) {
	db, _ := dbtest.New(t)
	svc := group.NewService(db)
	api := New(svc)

	r := chi.NewRouter()
	api.Routes(r)

	req := httptest.NewRequest(http.MethodGet, "/v2/group/sbom/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateGroupRequiresIfMatch(t *testing.T) {
	db, _ := dbtest.New(t)
	svc := group.NewService(db)
	api := New(svc)

	r := chi.NewRouter()
	api.Routes(r)

	id := uuid.New()
	body := strings.NewReader(`{"name":"Acme"}`)
	req := httptest.NewRequest(http.MethodPut, "/v2/group/sbom/"+id.String(), body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestCreateGroupSuccess(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := group.NewService(db)
	api := New(svc)

	r := chi.NewRouter()
	api.Routes(r)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "sbom_group"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := strings.NewReader(`{"name":"Acme","labels":{"env":"prod"}}`)
	req := httptest.NewRequest(http.MethodPost, "/v2/group/sbom", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Location"))

	var got groupResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Acme", got.Name)
}

func TestGetGroupByPathMalformed(t *testing.T) {
	db, _ := dbtest.New(t)
	svc := group.NewService(db)
	api := New(svc)

	r := chi.NewRouter()
	api.Routes(r)

	req := httptest.NewRequest(http.MethodGet, "/v2/group/sbom-by-path/acme/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevisionFromIfMatch(t *testing.T) {
	rev, ok := revisionFromIfMatch(`"3"`)
	require.True(t, ok)
	assert.Equal(t, int32(3), rev)

	_, ok = revisionFromIfMatch("")
	assert.False(t, ok)
}
