package engine

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op           string        `json:"op"`                     // Operation: "path", "text", "image", "save", "restore", "clip"
	ObjectID     string        `json:"objectId,omitempty"`     // Figure id for hit correlation, empty for decorations
	Transform    []float64     `json:"transform,omitempty"`    // [a, b, c, d, e, f] affine matrix
	Path         []PathCommand `json:"path,omitempty"`         // Path data for "path" and "clip" ops
	Fill         string        `json:"fill,omitempty"`         // Fill color
	Stroke       string        `json:"stroke,omitempty"`       // Stroke color
	StrokeWidth  float64       `json:"strokeWidth,omitempty"`  // Stroke width
	Opacity      float64       `json:"opacity,omitempty"`      // Global alpha
	Text         string        `json:"text,omitempty"`         // Text run for "text" ops
	Font         string        `json:"font,omitempty"`         // CSS font shorthand
	X            float64       `json:"x,omitempty"`            // Text origin
	Y            float64       `json:"y,omitempty"`            // Text origin
	ImageAssetID string        `json:"imageAssetId,omitempty"` // Asset ID for image lookup
	ImageWidth   float64       `json:"imageWidth,omitempty"`   // Destination width
	ImageHeight  float64       `json:"imageHeight,omitempty"`  // Destination height
}

// PathCommand is one canvas path verb followed by its coordinates, e.g.
// ["M", x, y] or ["C", x1, y1, x2, y2, x, y].
type PathCommand []interface{}

// PathCommands converts a path into canvas verbs.
func PathCommands(p geom.Path) []PathCommand {
	out := make([]PathCommand, 0, len(p.Cmds))
	for _, c := range p.Cmds {
		switch c.Op {
		case geom.MoveTo:
			out = append(out, PathCommand{"M", c.Pts[0].X, c.Pts[0].Y})
		case geom.LineTo:
			out = append(out, PathCommand{"L", c.Pts[0].X, c.Pts[0].Y})
		case geom.CubicTo:
			out = append(out, PathCommand{"C", c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y, c.Pts[2].X, c.Pts[2].Y})
		case geom.Close:
			out = append(out, PathCommand{"Z"})
		}
	}
	return out
}

// Recorder is a figure.Surface that compiles draw calls into a command
// buffer in painter's order.
type Recorder struct {
	measurer  figure.TextMeasurer
	transform []float64
	object    string
	commands  []DrawCommand
}

// NewRecorder records with view transform m. Text is measured with
// measurer, or estimated when it is nil.
func NewRecorder(measurer figure.TextMeasurer, m geom.Matrix2D) *Recorder {
	if measurer == nil {
		measurer = figure.EstimateMeasurer{}
	}
	r := &Recorder{measurer: measurer}
	if !m.IsIdentity() {
		r.transform = m.ToSlice()
	}
	return r
}

// SetObject tags the following commands with a figure id.
func (r *Recorder) SetObject(id string) { r.object = id }

func (r *Recorder) Commands() []DrawCommand { return r.commands }

func (r *Recorder) MeasureText(text string, f figure.Font) (float64, float64) {
	return r.measurer.MeasureText(text, f)
}

func (r *Recorder) DrawPath(p geom.Path, paint figure.Paint) {
	if len(p.Cmds) == 0 {
		return
	}
	r.commands = append(r.commands, DrawCommand{
		Op:          "path",
		ObjectID:    r.object,
		Transform:   r.transform,
		Path:        PathCommands(p),
		Fill:        visible(paint.Fill),
		Stroke:      visible(paint.Stroke),
		StrokeWidth: paint.StrokeWidth,
		Opacity:     paint.Opacity,
	})
}

func (r *Recorder) DrawText(text string, at geom.Point, f figure.Font, paint figure.Paint) {
	if text == "" {
		return
	}
	r.commands = append(r.commands, DrawCommand{
		Op:        "text",
		ObjectID:  r.object,
		Transform: r.transform,
		Text:      text,
		Font:      CSSFont(f),
		X:         at.X,
		Y:         at.Y,
		Fill:      visible(paint.Fill),
		Opacity:   paint.Opacity,
	})
}

func (r *Recorder) DrawImage(_ image.Image, dst geom.Rect, assetID string) {
	m := geom.Translate(dst.X, dst.Y)
	if r.transform != nil {
		var base geom.Matrix2D
		copy(base[:], r.transform)
		m = base.Multiply(m)
	}
	r.commands = append(r.commands, DrawCommand{
		Op:           "image",
		ObjectID:     r.object,
		Transform:    m.ToSlice(),
		Opacity:      1,
		ImageAssetID: assetID,
		ImageWidth:   dst.Width,
		ImageHeight:  dst.Height,
	})
}

func (r *Recorder) Clip(rect geom.Rect) {
	r.commands = append(r.commands, DrawCommand{
		Op:        "clip",
		Transform: r.transform,
		Path:      PathCommands(geom.RectPath(rect)),
	})
}

func (r *Recorder) Save()    { r.commands = append(r.commands, DrawCommand{Op: "save"}) }
func (r *Recorder) Restore() { r.commands = append(r.commands, DrawCommand{Op: "restore"}) }

// CSSFont formats f as a canvas font shorthand.
func CSSFont(f figure.Font) string {
	return fmt.Sprintf("%gpx %s", f.Size, f.Family)
}

func visible(color string) string {
	if color == figure.NoColor {
		return ""
	}
	return color
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
