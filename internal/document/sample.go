package document

import (
	"log/slog"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
)

// NewSampleDocument returns a small diagram: two connected shapes, a
// labelled container and a free bezier.
func NewSampleDocument(drawingID string) *Document {
	d := drawing.NewWithID(drawingID)

	client := figure.NewRectangle(geom.Rect{X: 80, Y: 120, Width: 160, Height: 90})
	figure.FillColor.Set(client, "#e94560")
	figure.StrokeWidth.Set(client, 2)
	figure.CornerRadius.Set(client, 8)

	server := figure.NewEllipse(geom.Rect{X: 420, Y: 100, Width: 180, Height: 130})
	figure.FillColor.Set(server, "#0f3460")
	figure.StrokeColor.Set(server, "#16213e")
	figure.StrokeWidth.Set(server, 2)

	link := figure.NewLineConnection(client.Bounds().Center(), server.Bounds().Center())
	figure.ArrowEnd.Set(link, true)
	figure.StrokeWidth.Set(link, 2)
	link.SetLiner(figure.ElbowLiner{})
	link.Connect(figure.NewChopConnector(client), figure.NewChopConnector(server))

	caption := figure.NewText(geom.Pt(80, 60), "Request flow")
	figure.FontSize.Set(caption, 20)

	box := figure.NewGraphicalComposite(nil, figure.VerticalLayouter{Insets: figure.DefaultInsets, Gap: 2})
	box.SetBounds(geom.Pt(80, 300), geom.Pt(300, 360))
	figure.FillColor.Set(box, "#fdf6e3")
	box.Add(figure.NewText(geom.Point{}, "Notes"))
	box.Add(figure.NewText(geom.Point{}, "retries: 3"))

	wave := figure.NewBezier(geom.BezierPath{Nodes: []geom.BezierNode{
		{Mask: geom.C2Mask, C: [3]geom.Point{{X: 420, Y: 330}, {X: 420, Y: 330}, {X: 470, Y: 270}}},
		{Mask: geom.C1Mask | geom.C2Mask, C: [3]geom.Point{{X: 520, Y: 330}, {X: 480, Y: 390}, {X: 560, Y: 270}}},
		{Mask: geom.C1Mask, C: [3]geom.Point{{X: 620, Y: 330}, {X: 580, Y: 390}, {X: 620, Y: 330}}},
	}})
	figure.FillColor.Set(wave, figure.NoColor)
	figure.StrokeColor.Set(wave, "#53d769")
	figure.StrokeWidth.Set(wave, 3)

	if err := d.AddAll([]figure.Figure{client, server, link, caption, box, wave}); err != nil {
		slog.Error("build sample drawing", "error", err)
	}

	return Encode(d, "Sample")
}
