// Package preview draws a top view of a gear train: every gear as its
// tooth outline filled with its material colour, and every drive edge as a
// red line between gear centres.
package preview

import (
	"fmt"
	"io"
	"math"

	"github.com/chazu/gearwright/pkg/gearmesh"
	"github.com/chazu/gearwright/pkg/train"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gogpu/gg"
)

// Options sizes the image.
type Options struct {
	Width  int
	Height int
	// Margin is the blank border in pixels.
	Margin float64
}

// DefaultOptions is an 800×600 image with a 20 pixel border.
var DefaultOptions = Options{Width: 800, Height: 600, Margin: 20}

const edgeColor = "#E02020"

// viewport maps scene XY to pixels, keeping aspect ratio and flipping Y so
// +Y points up.
type viewport struct {
	scale  float64
	cx, cy float64
	w, h   float64
}

func (v viewport) project(p v3.Vec) (float64, float64) {
	return v.w/2 + (p.X-v.cx)*v.scale, v.h/2 - (p.Y-v.cy)*v.scale
}

func fit(nodes []train.Node, opts Options) viewport {
	v := viewport{scale: 1, w: float64(opts.Width), h: float64(opts.Height)}
	if len(nodes) == 0 {
		return v
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		r := gearmesh.TipRadius(n.Params)
		minX = math.Min(minX, n.Position.X-r)
		maxX = math.Max(maxX, n.Position.X+r)
		minY = math.Min(minY, n.Position.Y-r)
		maxY = math.Max(maxY, n.Position.Y+r)
	}

	v.cx, v.cy = (minX+maxX)/2, (minY+maxY)/2
	availW := v.w - 2*opts.Margin
	availH := v.h - 2*opts.Margin
	spanW, spanH := maxX-minX, maxY-minY
	if spanW > 0 && spanH > 0 && availW > 0 && availH > 0 {
		v.scale = math.Min(availW/spanW, availH/spanH)
	}
	return v
}

// Render draws the train into a new context. The caller closes it.
func Render(t *train.Train, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview: invalid size %dx%d", opts.Width, opts.Height)
	}

	nodes := t.Nodes()
	view := fit(nodes, opts)

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(gg.White)

	for _, n := range nodes {
		if err := drawGear(dc, view, n); err != nil {
			dc.Close()
			return nil, fmt.Errorf("preview: gear %q: %w", n.Name, err)
		}
	}

	dc.SetHexColor(edgeColor)
	dc.SetLineWidth(2)
	for _, e := range t.Edges() {
		from, to := nodes[e.From].Position, nodes[e.To].Position
		x1, y1 := view.project(from)
		x2, y2 := view.project(to)
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("preview: edge %d -> %d: %w", e.From, e.To, err)
		}
	}
	return dc, nil
}

func drawGear(dc *gg.Context, view viewport, n train.Node) error {
	if n.Mesh == nil {
		return nil
	}
	outline := n.Mesh.TopPerimeter()
	if len(outline) == 0 {
		return nil
	}

	m := n.Transform()
	for i, p := range outline {
		x, y := view.project(m.MulPosition(p))
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()

	color := train.DefaultMaterial.Color
	if n.Material != nil {
		if _, _, _, err := n.Material.RGB(); err == nil {
			color = n.Material.Color
		}
	}
	dc.SetHexColor(color)
	if err := dc.FillPreserve(); err != nil {
		return err
	}
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(1)
	if err := dc.Stroke(); err != nil {
		return err
	}

	x, y := view.project(n.Position)
	dc.DrawCircle(x, y, 3)
	return dc.Fill()
}

// WritePNG renders the train and encodes it as PNG.
func WritePNG(w io.Writer, t *train.Train, opts Options) error {
	dc, err := Render(t, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}

// SavePNG renders the train to a PNG file.
func SavePNG(path string, t *train.Train, opts Options) error {
	dc, err := Render(t, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("preview: save %s: %w", path, err)
	}
	return nil
}
