package figure

import (
	"image"

	"github.com/inamate/figura/internal/geom"
)

// Paint is the resolved style of a path draw.
type Paint struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
}

// Font selects a face for text drawing and measurement.
type Font struct {
	Family string
	Size   float64
}

// TextMeasurer reports the extent of a run of text.
type TextMeasurer interface {
	MeasureText(text string, f Font) (width, height float64)
}

// Surface is the drawing target. Implementations record commands for a
// browser canvas or rasterize directly.
type Surface interface {
	TextMeasurer
	DrawPath(p geom.Path, paint Paint)
	// DrawText draws text with its top-left corner at at.
	DrawText(text string, at geom.Point, f Font, paint Paint)
	DrawImage(img image.Image, dst geom.Rect, assetID string)
	Clip(r geom.Rect)
	Save()
	Restore()
}

// PaintOf resolves the paint attributes of f.
func PaintOf(f Figure) Paint {
	return Paint{
		Fill:        FillColor.Get(f),
		Stroke:      StrokeColor.Get(f),
		StrokeWidth: StrokeWidth.Get(f),
		Opacity:     Opacity.Get(f),
	}
}

// FontOf resolves the font attributes of f.
func FontOf(f Figure) Font {
	return Font{Family: FontFamily.Get(f), Size: FontSize.Get(f)}
}

// EstimateMeasurer approximates text extents from the font size alone. It
// stands in where no font rasterizer is available.
type EstimateMeasurer struct{}

func (EstimateMeasurer) MeasureText(text string, f Font) (float64, float64) {
	if text == "" {
		return 0, f.Size * 1.2
	}
	lines, longest, n := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			n = 0
			continue
		}
		n++
		if n > longest {
			longest = n
		}
	}
	return float64(longest) * f.Size * 0.6, float64(lines) * f.Size * 1.2
}
