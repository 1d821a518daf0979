package asset

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const loadConcurrency = 4

// Sink receives decoded rasters. Post must be safe to call from any
// goroutine; the other methods run on the sink's own thread.
type Sink interface {
	MissingAssets() []string
	AttachImage(assetID string, img image.Image) int
	Post(fn func())
}

// Loader decodes the images a drawing refers to off the interaction
// thread and hands each one back through Sink.Post.
type Loader struct {
	store *Store
}

func NewLoader(store *Store) *Loader {
	return &Loader{store: store}
}

// Load starts fetching every asset sink is missing. It must be called on
// the sink's thread; the returned channel closes once every fetch has been
// posted. Unreadable assets are logged and skipped.
func (l *Loader) Load(ctx context.Context, sink Sink) <-chan struct{} {
	ids := sink.MissingAssets()
	done := make(chan struct{})
	if len(ids) == 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(loadConcurrency)
		for _, id := range ids {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				img, err := l.store.Open(id)
				if err != nil {
					slog.Warn("asset unavailable", "asset", id, "error", err)
					return nil
				}
				sink.Post(func() { sink.AttachImage(id, img) })
				return nil
			})
		}
		_ = g.Wait()
	}()
	return done
}
