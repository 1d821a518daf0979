// Package project manages stored drawings: creation, listing, versioned
// documents and PNG previews.
package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/inamate/figura/internal/db"
	"github.com/inamate/figura/internal/document"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/engine"
	"github.com/inamate/figura/internal/render"
	"github.com/inamate/figura/internal/typeid"
)

var (
	ErrNotFound  = errors.New("drawing not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid document")
)

// Store is the persistence the service needs; *db.SnapshotStore
// implements it.
type Store interface {
	CreateDrawing(ctx context.Context, d db.Drawing, doc json.RawMessage) (*db.Drawing, error)
	GetDrawing(ctx context.Context, id string) (*db.Drawing, error)
	ListDrawings(ctx context.Context, ownerID string) ([]db.Drawing, error)
	DeleteDrawing(ctx context.Context, id string) error
	SaveSnapshot(ctx context.Context, drawingID string, doc json.RawMessage) (int, error)
	LatestSnapshot(ctx context.Context, drawingID string) (*db.Snapshot, error)
}

// ImageSource resolves image assets for previews.
type ImageSource interface {
	Open(assetID string) (image.Image, error)
}

type Service struct {
	store    Store
	images   ImageSource
	fonts    *render.Fonts
	settings editor.Settings
}

func NewService(store Store, images ImageSource, fonts *render.Fonts, settings editor.Settings) *Service {
	return &Service{store: store, images: images, fonts: fonts, settings: settings}
}

type Drawing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toDrawing(d *db.Drawing) *Drawing {
	return &Drawing{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
}

// Create stores a new drawing owned by ownerID. With sample set it starts
// from the demonstration document instead of an empty one.
func (s *Service) Create(ctx context.Context, name, ownerID string, sample bool) (*Drawing, error) {
	drawingID := typeid.NewDrawingID()

	var doc *document.Document
	if sample {
		doc = document.NewSampleDocument(drawingID)
		doc.Name = name
	} else {
		doc = document.NewEmptyDocument(drawingID, name)
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	d, err := s.store.CreateDrawing(ctx, db.Drawing{ID: drawingID, Name: name, OwnerID: ownerID}, docJSON)
	if err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}
	return toDrawing(d), nil
}

// Get returns any drawing by id; drawings are shared by link.
func (s *Service) Get(ctx context.Context, drawingID string) (*Drawing, error) {
	d, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toDrawing(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Drawing, error) {
	rows, err := s.store.ListDrawings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	drawings := make([]Drawing, len(rows))
	for i := range rows {
		drawings[i] = *toDrawing(&rows[i])
	}
	return drawings, nil
}

func (s *Service) Delete(ctx context.Context, drawingID, userID string) error {
	d, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		return mapStoreError(err)
	}
	if d.OwnerID != userID {
		return ErrForbidden
	}
	return mapStoreError(s.store.DeleteDrawing(ctx, drawingID))
}

// LatestDocument loads the newest stored version of the drawing.
func (s *Service) LatestDocument(ctx context.Context, drawingID string) (*document.Document, error) {
	snap, err := s.store.LatestSnapshot(ctx, drawingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	var doc document.Document
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", snap.ID, err)
	}
	return &doc, nil
}

// SaveDocument validates doc by decoding it and stores it as the next
// version.
func (s *Service) SaveDocument(ctx context.Context, drawingID string, doc *document.Document) (int, error) {
	if doc.Version != document.FormatVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrInvalid, doc.Version)
	}
	if _, err := document.Decode(doc, nil); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	doc.ID = drawingID
	doc.Touch()

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}
	version, err := s.store.SaveSnapshot(ctx, drawingID, docJSON)
	if err != nil {
		return 0, mapStoreError(err)
	}
	return version, nil
}

// Preview renders the latest version as PNG no larger than size pixels
// on its longer side.
func (s *Service) Preview(ctx context.Context, drawingID string, size int) ([]byte, error) {
	doc, err := s.LatestDocument(ctx, drawingID)
	if err != nil {
		return nil, err
	}

	e := engine.NewEngine(s.settings)
	e.SetMeasurer(s.fonts)
	if err := e.Load(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.images != nil {
		for _, id := range e.MissingAssets() {
			img, err := s.images.Open(id)
			if err != nil {
				slog.Warn("preview asset unavailable", "drawing", drawingID, "asset", id, "error", err)
				continue
			}
			e.AttachImage(id, img)
		}
	}

	var buf bytes.Buffer
	if err := render.Preview(e.Drawing(), s.fonts, size).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func mapStoreError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
