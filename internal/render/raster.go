package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
)

// Raster is a figure.Surface that paints into an RGBA image.
type Raster struct {
	dc    *gg.Context
	fonts *Fonts
	faces faceCache
}

// NewRaster creates a width x height surface cleared to background. An
// empty background leaves it transparent.
func NewRaster(width, height int, fonts *Fonts, background string) *Raster {
	r := &Raster{dc: gg.NewContext(width, height), fonts: fonts, faces: make(faceCache)}
	if c, ok := parseColor(background, 1); ok {
		r.dc.SetColor(c)
		r.dc.Clear()
	}
	return r
}

// SetTransform maps drawing coordinates to pixels for all later draws.
func (r *Raster) SetTransform(m geom.Matrix2D) {
	r.dc.Identity()
	r.dc.Translate(m[4], m[5])
	r.dc.Scale(m[0], m[3])
}

func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) EncodePNG(w io.Writer) error {
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Raster) MeasureText(text string, f figure.Font) (float64, float64) {
	return measure(r.faces.face(r.fonts, f), text, f)
}

func (r *Raster) DrawPath(p geom.Path, paint figure.Paint) {
	if len(p.Cmds) == 0 {
		return
	}
	r.trace(p)
	fill, hasFill := parseColor(paint.Fill, paint.Opacity)
	stroke, hasStroke := parseColor(paint.Stroke, paint.Opacity)
	hasStroke = hasStroke && paint.StrokeWidth > 0
	if hasFill {
		r.dc.SetColor(fill)
		if hasStroke {
			r.dc.FillPreserve()
		} else {
			r.dc.Fill()
		}
	}
	if hasStroke {
		r.dc.SetColor(stroke)
		r.dc.SetLineWidth(paint.StrokeWidth)
		r.dc.Stroke()
	}
	r.dc.ClearPath()
}

func (r *Raster) trace(p geom.Path) {
	r.dc.ClearPath()
	for _, c := range p.Cmds {
		switch c.Op {
		case geom.MoveTo:
			r.dc.MoveTo(c.Pts[0].X, c.Pts[0].Y)
		case geom.LineTo:
			r.dc.LineTo(c.Pts[0].X, c.Pts[0].Y)
		case geom.CubicTo:
			r.dc.CubicTo(c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y, c.Pts[2].X, c.Pts[2].Y)
		case geom.Close:
			r.dc.ClosePath()
		}
	}
}

// DrawText draws each line below the previous one, the first with its top
// edge at at.
func (r *Raster) DrawText(text string, at geom.Point, f figure.Font, paint figure.Paint) {
	c, ok := parseColor(paint.Fill, paint.Opacity)
	if !ok {
		return
	}
	face := r.faces.face(r.fonts, f)
	ascent := float64(face.Metrics().Ascent) / 64
	r.dc.SetFontFace(face)
	r.dc.SetColor(c)
	for i, line := range strings.Split(text, "\n") {
		r.dc.DrawString(line, at.X, at.Y+ascent+float64(i)*f.Size*lineSpacing)
	}
}

func (r *Raster) DrawImage(img image.Image, dst geom.Rect, _ string) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	r.dc.Push()
	r.dc.Translate(dst.X, dst.Y)
	r.dc.Scale(dst.Width/float64(b.Dx()), dst.Height/float64(b.Dy()))
	r.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	r.dc.Pop()
}

func (r *Raster) Clip(rect geom.Rect) {
	r.dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	r.dc.Clip()
}

func (r *Raster) Save()    { r.dc.Push() }
func (r *Raster) Restore() { r.dc.Pop() }

// parseColor understands #rgb, #rrggbb, #rrggbbaa and CSS color names. It
// reports false for "none", the empty string and unparsable values.
func parseColor(s string, opacity float64) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == figure.NoColor || s == "transparent" {
		return nil, false
	}
	var c color.NRGBA
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			hex += "ff"
		}
		if len(hex) != 8 {
			return nil, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, false
		}
		c = color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	} else {
		named, ok := colornames.Map[s]
		if !ok {
			return nil, false
		}
		c = color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity < 1 {
		c.A = uint8(float64(c.A) * opacity)
	}
	return c, true
}
