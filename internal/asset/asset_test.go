package asset

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/engine"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/typeid"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestStoreSaveOpenDelete(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	id, err := s.Save(testImage())
	require.NoError(t, err)
	require.NoError(t, typeid.Validate(id, typeid.PrefixAsset))

	img, err := s.Open(id)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	r, _, _, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)

	require.NoError(t, s.Delete(id))
	_, err = s.Open(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)
}

func TestStoreRejectsForeignIDs(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Open("../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func uploadRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="dot.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assets/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadServeDelete(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	h := NewHandler(s)

	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, testImage()))

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", encoded.Bytes()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Width)
	assert.Equal(t, 3, resp.Height)
	assert.Equal(t, "dot.png", resp.Name)

	rec = httptest.NewRecorder()
	h.Serve().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	r := mux.NewRouter()
	r.HandleFunc("/api/assets/{id}", h.Delete).Methods(http.MethodDelete)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/assets/"+resp.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/assets/"+resp.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsBadInput(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	h := NewHandler(s)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", []byte("not a png")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoaderAttachesThroughPost(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	id, err := s.Save(testImage())
	require.NoError(t, err)

	e := engine.NewEngine(editor.DefaultSettings())
	e.AddView("main")
	figID, err := e.InsertImage("main", id, geom.Rect{Width: 40, Height: 30})
	require.NoError(t, err)
	_, err = e.InsertImage("main", typeid.NewAssetID(), geom.Rect{X: 50, Width: 40, Height: 30})
	require.NoError(t, err)
	require.Len(t, e.MissingAssets(), 2)

	done := NewLoader(s).Load(context.Background(), e)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loader did not finish")
	}

	// Nothing is attached until the owning thread drains its queue.
	assert.Len(t, e.MissingAssets(), 2)
	assert.Equal(t, 1, e.RunPending())
	assert.Len(t, e.MissingAssets(), 1)

	f, ok := e.Drawing().FigureByID(figID)
	require.True(t, ok)
	assert.NotNil(t, f.(figure.ImageHolder).Image())
}

func TestLoaderWithNothingMissing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	e := engine.NewEngine(editor.DefaultSettings())

	_, open := <-NewLoader(s).Load(context.Background(), e)
	assert.False(t, open)
}
