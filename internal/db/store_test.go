package db

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/typeid"
)

// testStore connects to FIGURA_TEST_DATABASE_URL, skipping when it is unset.
func testStore(t *testing.T) *SnapshotStore {
	t.Helper()
	url := os.Getenv("FIGURA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FIGURA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return NewSnapshotStore(pool)
}

func TestSnapshotVersionsIncrease(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := typeid.NewUserID()

	d, err := s.CreateDrawing(ctx, Drawing{ID: typeid.NewDrawingID(), Name: "Plan", OwnerID: owner},
		json.RawMessage(`{"version":1,"figures":[]}`))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DeleteDrawing(ctx, d.ID) })
	assert.False(t, d.CreatedAt.IsZero())

	v, err := s.SaveSnapshot(ctx, d.ID, json.RawMessage(`{"version":1,"figures":[{"id":"a"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	snap, err := s.LatestSnapshot(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)
	assert.JSONEq(t, `{"version":1,"figures":[{"id":"a"}]}`, string(snap.Document))

	list, err := s.ListDrawings(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Plan", list[0].Name)
}

func TestMissingDrawing(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.GetDrawing(ctx, typeid.NewDrawingID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LatestSnapshot(ctx, typeid.NewDrawingID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteDrawing(ctx, typeid.NewDrawingID()), ErrNotFound)
}
