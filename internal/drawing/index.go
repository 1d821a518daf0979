package drawing

import (
	"github.com/tidwall/rtree"

	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
)

// spatialIndex indexes figures by their drawing area. The rect each figure
// was last indexed under is kept so it can be deleted exactly after the
// figure has already moved.
type spatialIndex struct {
	tree  rtree.RTreeG[figure.Figure]
	rects map[figure.Figure]geom.Rect
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{rects: make(map[figure.Figure]geom.Rect)}
}

func corners(r geom.Rect) (minPt, maxPt [2]float64) {
	return [2]float64{r.X, r.Y}, [2]float64{r.X + r.Width, r.Y + r.Height}
}

func (s *spatialIndex) insert(f figure.Figure, r geom.Rect) {
	if _, ok := s.rects[f]; ok {
		s.remove(f)
	}
	s.rects[f] = r
	lo, hi := corners(r)
	s.tree.Insert(lo, hi, f)
}

func (s *spatialIndex) remove(f figure.Figure) {
	r, ok := s.rects[f]
	if !ok {
		return
	}
	delete(s.rects, f)
	lo, hi := corners(r)
	s.tree.Delete(lo, hi, f)
}

func (s *spatialIndex) update(f figure.Figure, r geom.Rect) {
	if old, ok := s.rects[f]; ok && old == r {
		return
	}
	s.remove(f)
	s.insert(f, r)
}

// query returns the figures whose indexed area intersects r.
func (s *spatialIndex) query(r geom.Rect) map[figure.Figure]struct{} {
	out := make(map[figure.Figure]struct{})
	lo, hi := corners(r)
	s.tree.Search(lo, hi, func(_, _ [2]float64, f figure.Figure) bool {
		out[f] = struct{}{}
		return true
	})
	return out
}

func (s *spatialIndex) len() int {
	return len(s.rects)
}
