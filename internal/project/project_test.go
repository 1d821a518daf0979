package project

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/auth"
	"github.com/inamate/figura/internal/db"
	"github.com/inamate/figura/internal/document"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/render"
)

type memStore struct {
	mu        sync.Mutex
	drawings  map[string]db.Drawing
	snapshots map[string][]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{drawings: map[string]db.Drawing{}, snapshots: map[string][]json.RawMessage{}}
}

func (m *memStore) CreateDrawing(_ context.Context, d db.Drawing, doc json.RawMessage) (*db.Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.drawings[d.ID] = d
	m.snapshots[d.ID] = []json.RawMessage{doc}
	return &d, nil
}

func (m *memStore) GetDrawing(_ context.Context, id string) (*db.Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drawings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &d, nil
}

func (m *memStore) ListDrawings(_ context.Context, ownerID string) ([]db.Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Drawing
	for _, d := range m.drawings {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) DeleteDrawing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drawings[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.drawings, id)
	delete(m.snapshots, id)
	return nil
}

func (m *memStore) SaveSnapshot(_ context.Context, id string, doc json.RawMessage) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drawings[id]; !ok {
		return 0, db.ErrNotFound
	}
	m.snapshots[id] = append(m.snapshots[id], doc)
	return len(m.snapshots[id]), nil
}

func (m *memStore) LatestSnapshot(_ context.Context, id string) (*db.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snapshots[id]
	if len(snaps) == 0 {
		return nil, db.ErrNotFound
	}
	return &db.Snapshot{ID: "snap", DrawingID: id, Version: len(snaps), Document: snaps[len(snaps)-1]}, nil
}

type testEnv struct {
	store  *memStore
	router *mux.Router
	auth   *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fonts, err := render.NewFonts()
	require.NoError(t, err)

	store := newMemStore()
	authSvc := auth.NewService("secret")
	h := NewHandler(NewService(store, nil, fonts, editor.DefaultSettings()), 256)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authSvc.AuthMiddleware)
	h.Routes(api)
	return &testEnv{store: store, router: r, auth: authSvc}
}

func (e *testEnv) token(t *testing.T, name string) string {
	t.Helper()
	res, err := e.auth.IssueGuestToken(name)
	require.NoError(t, err)
	return res.Token
}

func (e *testEnv) do(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func createDrawing(t *testing.T, env *testEnv, token, body string) Drawing {
	t.Helper()
	rec := env.do(t, token, http.MethodPost, "/api/drawings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d Drawing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d
}

func TestCreateListGetDelete(t *testing.T) {
	env := newTestEnv(t)
	ada := env.token(t, "Ada")
	bob := env.token(t, "Bob")

	d := createDrawing(t, env, ada, `{"name":"Floor plan"}`)
	assert.Equal(t, "Floor plan", d.Name)

	rec := env.do(t, ada, http.MethodGet, "/api/drawings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Drawing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)

	rec = env.do(t, bob, http.MethodGet, "/api/drawings/"+d.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, bob, http.MethodDelete, "/api/drawings/"+d.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, ada, http.MethodDelete, "/api/drawings/"+d.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, ada, http.MethodGet, "/api/drawings/"+d.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequiresName(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, env.token(t, "Ada"), http.MethodPost, "/api/drawings", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocumentVersions(t *testing.T) {
	env := newTestEnv(t)
	ada := env.token(t, "Ada")
	d := createDrawing(t, env, ada, `{"name":"Sample","sample":true}`)

	rec := env.do(t, ada, http.MethodGet, "/api/drawings/"+d.ID+"/document", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc document.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, d.ID, doc.ID)
	assert.NotEmpty(t, doc.Figures)

	doc.Figures = doc.Figures[:1]
	body, err := json.Marshal(doc)
	require.NoError(t, err)
	rec = env.do(t, ada, http.MethodPut, "/api/drawings/"+d.ID+"/document", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"version":2}`, rec.Body.String())

	rec = env.do(t, ada, http.MethodGet, "/api/drawings/"+d.ID+"/document", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Figures, 1)
}

func TestSaveDocumentRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	ada := env.token(t, "Ada")
	d := createDrawing(t, env, ada, `{"name":"Plan"}`)

	rec := env.do(t, ada, http.MethodPut, "/api/drawings/"+d.ID+"/document",
		`{"version":1,"figures":[{"id":"a","type":"teapot","geometry":{}}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, ada, http.MethodPut, "/api/drawings/"+d.ID+"/document", `{"version":99,"figures":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, ada, http.MethodPut, "/api/drawings/"+d.ID+"/document", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t)
	ada := env.token(t, "Ada")
	d := createDrawing(t, env, ada, `{"name":"Sample","sample":true}`)

	rec := env.do(t, ada, http.MethodGet, "/api/drawings/"+d.ID+"/preview.png?size=128", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	b := img.Bounds()
	assert.LessOrEqual(t, max(b.Dx(), b.Dy()), 128)
	assert.NotEqual(t, image.Rectangle{}, b)

	rec = env.do(t, ada, http.MethodGet, "/api/drawings/"+d.ID+"/preview.png?size=huge", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, ada, http.MethodGet, "/api/drawings/drw_missing/preview.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
