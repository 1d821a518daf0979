package figure

import (
	"image"

	"github.com/inamate/figura/internal/geom"
)

// ImageHolder figures display a decoded raster that may arrive after the
// figure is created.
type ImageHolder interface {
	Figure
	AssetRef() string
	Image() image.Image
	SetImage(img image.Image)
}

// Image shows a raster asset scaled into its box. Until the asset is
// decoded a placeholder is drawn.
type Image struct {
	Base
	box
	img image.Image
}

func NewImage(r geom.Rect, assetID string) *Image {
	f := &Image{box: box{rect: r}}
	f.init(f)
	if assetID != "" {
		f.attrs[AssetID.Name()] = assetID
	}
	return f
}

func (f *Image) Type() Type         { return TypeImage }
func (f *Image) AssetRef() string   { return AssetID.Get(f) }
func (f *Image) Image() image.Image { return f.img }

func (f *Image) SetImage(img image.Image) {
	f.WillChange()
	f.img = img
	f.Changed()
}

func (f *Image) Bounds() geom.Rect      { return f.bounds() }
func (f *Image) DrawingArea() geom.Rect { return f.bounds().Grow(1, 1) }

func (f *Image) SetBounds(anchor, lead geom.Point) {
	f.WillChange()
	f.setBounds(anchor, lead)
	f.Changed()
}

func (f *Image) Transform(m geom.Matrix2D) {
	f.WillChange()
	f.transform(m)
	f.Changed()
}

func (f *Image) Contains(p geom.Point, tolerance float64) bool {
	lp, tol := f.toLocal(p, tolerance)
	return f.rect.Grow(tol, tol).Contains(lp)
}

var placeholderPaint = Paint{Fill: "#eeeeee", Stroke: "#999999", StrokeWidth: 1, Opacity: 1}

func (f *Image) Draw(s Surface) {
	if f.img == nil {
		s.DrawPath(f.path(geom.RectPath(f.rect)), placeholderPaint)
		var cross geom.Path
		cross.MoveTo(f.rect.Min())
		cross.LineTo(f.rect.Max())
		cross.MoveTo(geom.Pt(f.rect.MaxX(), f.rect.Y))
		cross.LineTo(geom.Pt(f.rect.X, f.rect.MaxY()))
		s.DrawPath(f.path(cross), placeholderPaint)
		return
	}
	s.DrawImage(f.img, f.bounds(), f.AssetRef())
}

// Clone shares the decoded image; rasters are never mutated in place.
func (f *Image) Clone() Figure {
	c := &Image{box: f.box.clone(), img: f.img}
	c.Base = f.cloneFor(c)
	return c
}

func (f *Image) Geometry() Geometry { return f.geometry() }

func (f *Image) RestoreGeometry(g Geometry) {
	f.WillChange()
	f.restore(g)
	f.Changed()
}

func (f *Image) ChopPoint(from geom.Point) geom.Point { return f.chop(from, geom.ChopRect) }
func (f *Image) FindConnector(p geom.Point) Connector { return findStandardConnector(f, p) }
func (f *Image) Connectors() []Connector              { return standardConnectors(f) }
