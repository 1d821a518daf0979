package figure

import (
	"errors"
	"fmt"

	"github.com/inamate/figura/internal/geom"
)

var ErrUnknownType = errors.New("unknown figure type")

// Registry maps type tags to prototypes. New figures are clones of the
// registered prototype.
type Registry struct {
	protos map[Type]Figure
	order  []Type
}

func NewRegistry() *Registry {
	return &Registry{protos: make(map[Type]Figure)}
}

// DefaultRegistry holds one prototype for every built-in figure type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewRectangle(geom.Rect{}))
	r.Register(NewEllipse(geom.Rect{}))
	r.Register(NewBezier(geom.BezierPath{}))
	r.Register(NewText(geom.Point{}, ""))
	r.Register(NewImage(geom.Rect{}, ""))
	r.Register(NewGroup())
	r.Register(NewGraphicalComposite(nil, VerticalLayouter{Insets: DefaultInsets, Gap: 2}))
	r.Register(NewLineConnection(geom.Point{}, geom.Point{}))
	return r
}

// Register installs proto for its type, replacing any previous prototype.
func (r *Registry) Register(proto Figure) {
	t := proto.Type()
	if _, ok := r.protos[t]; !ok {
		r.order = append(r.order, t)
	}
	r.protos[t] = proto
}

// New clones the prototype registered for t.
func (r *Registry) New(t Type) (Figure, error) {
	p, ok := r.protos[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return p.Clone(), nil
}

// Prototype returns the registered prototype itself.
func (r *Registry) Prototype(t Type) (Figure, bool) {
	p, ok := r.protos[t]
	return p, ok
}

// Types lists the registered tags in registration order.
func (r *Registry) Types() []Type {
	return append([]Type(nil), r.order...)
}
