// Package document is the persisted form of a drawing: a list of figure
// records in z-order, back to front.
package document

import (
	"time"

	"github.com/inamate/figura/internal/figure"
)

// FormatVersion is bumped whenever Record changes incompatibly.
const FormatVersion = 1

type Document struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   int      `json:"version"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Figures   []Record `json:"figures"`
}

// Record is one figure: its type tag, attributes and geometry. Composites
// nest their children; connections refer to their end figures by id.
type Record struct {
	ID         string          `json:"id"`
	Type       figure.Type     `json:"type"`
	Attributes map[string]any  `json:"attributes,omitempty"`
	Geometry   figure.Geometry `json:"geometry"`
	Children   []Record        `json:"children,omitempty"`
	Layout     string          `json:"layout,omitempty"` // graphical composites only
	Start      *Endpoint       `json:"start,omitempty"`
	End        *Endpoint       `json:"end,omitempty"`
	Liner      string          `json:"liner,omitempty"`
}

// Endpoint binds a connection end to a connector on another figure.
type Endpoint struct {
	Figure    string               `json:"figure"`
	Connector figure.ConnectorSpec `json:"connector"`
}

func NewEmptyDocument(id, name string) *Document {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Document{
		ID:        id,
		Name:      name,
		Version:   FormatVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Figures:   []Record{},
	}
}

// Walk visits every record depth first, parents before children.
func (d *Document) Walk(fn func(r *Record)) {
	var walk func(rs []Record)
	walk = func(rs []Record) {
		for i := range rs {
			fn(&rs[i])
			walk(rs[i].Children)
		}
	}
	walk(d.Figures)
}

// AssetIDs lists the image assets the document refers to.
func (d *Document) AssetIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	d.Walk(func(r *Record) {
		if r.Type != figure.TypeImage {
			return
		}
		id, _ := r.Attributes[figure.AssetID.Name()].(string)
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	})
	return ids
}
