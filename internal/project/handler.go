package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/figura/internal/auth"
	"github.com/inamate/figura/internal/document"
)

const maxPreviewSize = 2048

type Handler struct {
	service     *Service
	previewSize int
}

func NewHandler(service *Service, previewSize int) *Handler {
	return &Handler{service: service, previewSize: previewSize}
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

// Routes registers the drawing endpoints on r, which is expected to sit
// behind the auth middleware.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/drawings", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/drawings", h.List).Methods(http.MethodGet)
	r.HandleFunc("/drawings/{drawingId}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/drawings/{drawingId}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/drawings/{drawingId}/document", h.GetDocument).Methods(http.MethodGet)
	r.HandleFunc("/drawings/{drawingId}/document", h.SaveDocument).Methods(http.MethodPut)
	r.HandleFunc("/drawings/{drawingId}/preview.png", h.Preview).Methods(http.MethodGet)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	d, err := h.service.Create(r.Context(), req.Name, userID, req.Sample)
	if err != nil {
		slog.Error("create drawing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), mux.Vars(r)["drawingId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	drawings, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list drawings failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, drawings)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	err := h.service.Delete(r.Context(), mux.Vars(r)["drawingId"], userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.LatestDocument(r.Context(), mux.Vars(r)["drawingId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var doc document.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	version, err := h.service.SaveDocument(r.Context(), mux.Vars(r)["drawingId"], &doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"version": version})
}

// Preview handles GET /drawings/{id}/preview.png?size=N.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	size := h.previewSize
	if q := r.URL.Query().Get("size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 16 || n > maxPreviewSize {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size must be between 16 and 2048"})
			return
		}
		size = n
	}

	png, err := h.service.Preview(r.Context(), mux.Vars(r)["drawingId"], size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
