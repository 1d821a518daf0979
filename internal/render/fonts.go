// Package render rasterizes drawings with gg for previews and measures
// text with the Go fonts.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inamate/figura/internal/figure"
)

// lineSpacing matches the line height text figures lay out with.
const lineSpacing = 1.2

// Fonts holds the parsed Go font families. Faces are not safe for
// concurrent use, so every Raster keeps its own face cache; Fonts measures
// under a lock.
type Fonts struct {
	families map[string]*truetype.Font

	mu    sync.Mutex
	faces faceCache
}

// NewFonts parses the bundled Go fonts. "monospace" maps to Go Mono, "bold"
// to Go Bold and every other family to Go Regular.
func NewFonts() (*Fonts, error) {
	fs := &Fonts{families: make(map[string]*truetype.Font), faces: make(faceCache)}
	for name, ttf := range map[string][]byte{
		"regular":   goregular.TTF,
		"monospace": gomono.TTF,
		"bold":      gobold.TTF,
	} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		fs.families[name] = f
	}
	return fs, nil
}

func (fs *Fonts) lookup(family string) *truetype.Font {
	family = strings.ToLower(strings.TrimSpace(family))
	if f, ok := fs.families[family]; ok {
		return f
	}
	if strings.Contains(family, "mono") || family == "courier" {
		return fs.families["monospace"]
	}
	return fs.families["regular"]
}

// MeasureText implements figure.TextMeasurer.
func (fs *Fonts) MeasureText(text string, f figure.Font) (float64, float64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return measure(fs.faces.face(fs, f), text, f)
}

type faceKey struct {
	family string
	size   float64
}

type faceCache map[faceKey]font.Face

func (c faceCache) face(fs *Fonts, f figure.Font) font.Face {
	size := f.Size
	if size <= 0 {
		size = figure.FontSize.Default()
	}
	k := faceKey{family: f.Family, size: size}
	if face, ok := c[k]; ok {
		return face
	}
	face := truetype.NewFace(fs.lookup(f.Family), &truetype.Options{Size: size, Hinting: font.HintingFull})
	c[k] = face
	return face
}

func measure(face font.Face, text string, f figure.Font) (float64, float64) {
	lines := strings.Split(text, "\n")
	var w float64
	for _, line := range lines {
		if lw := float64(font.MeasureString(face, line)) / 64; lw > w {
			w = lw
		}
	}
	return w, float64(len(lines)) * f.Size * lineSpacing
}
