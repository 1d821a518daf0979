package document

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
)

// Encode snapshots d as a document named name.
func Encode(d *drawing.Drawing, name string) *Document {
	doc := NewEmptyDocument(d.ID(), name)
	for _, f := range d.Figures() {
		doc.Figures = append(doc.Figures, EncodeFigure(f))
	}
	return doc
}

// EncodeFigure records f and, for composites, its children.
func EncodeFigure(f figure.Figure) Record {
	r := Record{ID: f.ID(), Type: f.Type(), Geometry: f.Geometry()}
	if names := f.AttributeNames(); len(names) > 0 {
		r.Attributes = make(map[string]any, len(names))
		for _, name := range names {
			r.Attributes[name], _ = f.Attribute(name)
		}
	}
	if c, ok := f.(figure.Composite); ok {
		for _, ch := range c.Children() {
			r.Children = append(r.Children, EncodeFigure(ch))
		}
	}
	if g, ok := f.(*figure.GraphicalComposite); ok {
		r.Layout = g.LayouterKind()
	}
	if c, ok := f.(figure.ConnectionFigure); ok {
		r.Start = endpoint(c.StartConnector())
		r.End = endpoint(c.EndConnector())
		if l := c.Liner(); l != nil {
			r.Liner = l.Kind()
		}
	}
	return r
}

func endpoint(c figure.Connector) *Endpoint {
	if c == nil {
		return nil
	}
	return &Endpoint{Figure: c.Owner().ID(), Connector: c.Spec()}
}

// Decode rebuilds a drawing from doc using the prototypes in reg. Figures
// keep their ids and order. A connection whose end figure is missing keeps
// its recorded route and stays unattached at that end.
func Decode(doc *Document, reg *figure.Registry) (*drawing.Drawing, error) {
	if reg == nil {
		reg = figure.DefaultRegistry()
	}
	dec := &decoder{registry: reg, byID: make(map[string]figure.Figure)}
	figs := make([]figure.Figure, 0, len(doc.Figures))
	for i := range doc.Figures {
		f, err := dec.figure(&doc.Figures[i])
		if err != nil {
			return nil, fmt.Errorf("decode figure %d: %w", i, err)
		}
		figs = append(figs, f)
	}
	dec.connect()

	d := drawing.NewWithID(doc.ID)
	if err := d.AddAll(figs); err != nil {
		return nil, fmt.Errorf("populate drawing: %w", err)
	}
	return d, nil
}

type pendingEnds struct {
	conn       figure.ConnectionFigure
	start, end *Endpoint
}

type decoder struct {
	registry *figure.Registry
	byID     map[string]figure.Figure
	pending  []pendingEnds
}

func (dec *decoder) figure(r *Record) (figure.Figure, error) {
	f, err := dec.registry.New(r.Type)
	if err != nil {
		return nil, err
	}
	if r.ID != "" {
		if _, dup := dec.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate figure id: %s", r.ID)
		}
		f.SetID(r.ID)
	}
	dec.byID[f.ID()] = f

	names := make([]string, 0, len(r.Attributes))
	for name := range r.Attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		f.SetAttribute(name, r.Attributes[name])
	}

	if g, ok := f.(*figure.GraphicalComposite); ok && r.Layout != g.LayouterKind() {
		l, err := figure.RestoreLayouter(r.Layout)
		if err != nil {
			return nil, err
		}
		g.SetLayouter(l)
	}
	if len(r.Children) > 0 {
		c, ok := f.(figure.Composite)
		if !ok {
			return nil, fmt.Errorf("figure %s of type %s cannot hold children", f.ID(), r.Type)
		}
		for i := range r.Children {
			ch, err := dec.figure(&r.Children[i])
			if err != nil {
				return nil, err
			}
			c.Add(ch)
		}
	}

	if c, ok := f.(figure.ConnectionFigure); ok {
		l, err := figure.RestoreLiner(r.Liner)
		if err != nil {
			return nil, err
		}
		c.SetLiner(l)
		if r.Start != nil || r.End != nil {
			dec.pending = append(dec.pending, pendingEnds{conn: c, start: r.Start, end: r.End})
		}
	}
	f.RestoreGeometry(r.Geometry)
	return f, nil
}

// connect binds connection ends once every figure exists.
func (dec *decoder) connect() {
	for _, p := range dec.pending {
		if c := dec.connector(p.conn, p.start); c != nil {
			p.conn.SetStartConnector(c)
		}
		if c := dec.connector(p.conn, p.end); c != nil {
			p.conn.SetEndConnector(c)
		}
	}
}

func (dec *decoder) connector(conn figure.ConnectionFigure, e *Endpoint) figure.Connector {
	if e == nil {
		return nil
	}
	owner, ok := dec.byID[e.Figure]
	if !ok {
		slog.Warn("connection end refers to a missing figure", "connection", conn.ID(), "figure", e.Figure)
		return nil
	}
	c, err := figure.RestoreConnector(owner, e.Connector)
	if err != nil {
		slog.Warn("restore connector", "connection", conn.ID(), "error", err)
		return nil
	}
	return c
}

// Touch stamps the document as modified now.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
