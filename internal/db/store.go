package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/figura/internal/typeid"
)

var ErrNotFound = errors.New("not found")

type Drawing struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID        string
	DrawingID string
	Version   int
	Document  json.RawMessage
	CreatedAt time.Time
}

// SnapshotStore persists drawings and appends a new snapshot version on
// every save.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// CreateDrawing inserts the drawing row and its first snapshot in one
// transaction.
func (s *SnapshotStore) CreateDrawing(ctx context.Context, d Drawing, doc json.RawMessage) (*Drawing, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO drawings (id, name, owner_id) VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		d.ID, d.Name, d.OwnerID,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert drawing: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO snapshots (id, drawing_id, version, document) VALUES ($1, $2, 1, $3)`,
		typeid.NewSnapshotID(), d.ID, doc,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &d, nil
}

func (s *SnapshotStore) GetDrawing(ctx context.Context, id string) (*Drawing, error) {
	var d Drawing
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM drawings WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return &d, nil
}

func (s *SnapshotStore) ListDrawings(ctx context.Context, ownerID string) ([]Drawing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM drawings
		 WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer rows.Close()

	var out []Drawing
	for rows.Next() {
		var d Drawing
		if err := rows.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan drawing: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveSnapshot appends doc as the next version of drawingID and returns
// that version.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, drawingID string, doc json.RawMessage) (int, error) {
	var version int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO snapshots (id, drawing_id, version, document)
		 SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3 FROM snapshots WHERE drawing_id = $2
		 RETURNING version`,
		typeid.NewSnapshotID(), drawingID, doc,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `UPDATE drawings SET updated_at = now() WHERE id = $1`, drawingID); err != nil {
		return 0, fmt.Errorf("touch drawing: %w", err)
	}
	return version, nil
}

func (s *SnapshotStore) LatestSnapshot(ctx context.Context, drawingID string) (*Snapshot, error) {
	var snap Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT id, drawing_id, version, document, created_at FROM snapshots
		 WHERE drawing_id = $1 ORDER BY version DESC LIMIT 1`, drawingID,
	).Scan(&snap.ID, &snap.DrawingID, &snap.Version, &snap.Document, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SnapshotStore) DeleteDrawing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
