package render

import (
	"math"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/geom"
)

const previewMargin = 8

// Preview paints d on white, scaled down to fit maxSize pixels on its
// longer side. Drawings are never scaled up.
func Preview(d *drawing.Drawing, fonts *Fonts, maxSize int) *Raster {
	area := geom.Rect{}
	for _, f := range d.Figures() {
		area = area.Union(f.DrawingArea())
	}
	if area.IsEmpty() {
		return NewRaster(2*previewMargin, 2*previewMargin, fonts, "#ffffff")
	}

	room := float64(maxSize - 2*previewMargin)
	scale := 1.0
	if longest := math.Max(area.Width, area.Height); room > 0 && longest > room {
		scale = room / longest
	}
	w := int(math.Round(area.Width*scale)) + 2*previewMargin
	h := int(math.Round(area.Height*scale)) + 2*previewMargin

	r := NewRaster(w, h, fonts, "#ffffff")
	r.SetTransform(geom.Translate(previewMargin, previewMargin).
		Multiply(geom.Scale(scale, scale)).
		Multiply(geom.Translate(-area.X, -area.Y)))
	d.Draw(r, geom.Rect{})
	return r
}
