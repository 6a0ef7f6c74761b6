package inspect

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/gearwright/pkg/train"
)

// Status is a printable summary of the inspected gear.
type Status struct {
	Name              string
	Teeth             int
	Resolution        int
	Module            float64
	Thickness         float64
	ReferenceDiameter float64
	TipDiameter       float64
	RootDiameter      float64
	ToothDepth        float64
	Vertices          int
	Triangles         int
	Material          string
	Driven            bool
	InputSpeed        float64
	Angle             float64
	AutoRegenerate    bool
}

// Status collects the gear's parameters, derived dimensions and drive
// state.
func (i *Inspector) Status() (Status, error) {
	n, err := i.train.Node(i.id)
	if err != nil {
		return Status{}, err
	}
	return statusOf(n, i.auto), nil
}

func statusOf(n train.Node, auto bool) Status {
	s := Status{
		Name:              n.Name,
		Teeth:             n.Params.TeethCount,
		Resolution:        n.Params.Resolution,
		Module:            n.Params.Module,
		Thickness:         n.Params.Thickness,
		ReferenceDiameter: n.Params.ReferenceDiameter(),
		TipDiameter:       n.Params.TipDiameter(),
		RootDiameter:      n.Params.RootDiameter(),
		ToothDepth:        n.Params.ToothDepth(),
		Driven:            n.Driven,
		InputSpeed:        n.InputSpeed,
		Angle:             n.Angle,
		AutoRegenerate:    auto,
	}
	if n.Mesh != nil {
		s.Vertices = n.Mesh.VertexCount()
		s.Triangles = n.Mesh.TriangleCount()
	}
	if n.Material != nil {
		s.Material = n.Material.Name
	}
	return s
}

// WriteTo prints the status as an aligned two-column table.
func (s Status) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)
	rows := []struct {
		key string
		val interface{}
	}{
		{"gear", s.Name},
		{"teeth", s.Teeth},
		{"resolution", s.Resolution},
		{"module", s.Module},
		{"thickness", s.Thickness},
		{"reference diameter", s.ReferenceDiameter},
		{"tip diameter", s.TipDiameter},
		{"root diameter", s.RootDiameter},
		{"tooth depth", s.ToothDepth},
		{"vertices", s.Vertices},
		{"triangles", s.Triangles},
		{"material", s.Material},
		{"rotate", s.Driven},
		{"speed", s.InputSpeed},
		{"angle", s.Angle},
		{"auto-generate", s.AutoRegenerate},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%v\n", r.key, r.val); err != nil {
			return cw.n, err
		}
	}
	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
