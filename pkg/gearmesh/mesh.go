package gearmesh

import (
	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/chazu/gearwright/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an indexed triangle mesh with one normal per vertex. A Mesh is
// replaced wholesale on regeneration and never edited in place.
type Mesh struct {
	Vertices  []v3.Vec
	Triangles [][3]int
	Normals   []v3.Vec
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max v3.Vec) {
	if len(m.Vertices) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// TopPerimeter returns the top cap outline in angular order, the tooth
// silhouette as seen from +Z.
func (m *Mesh) TopPerimeter() []v3.Vec {
	fanCount := len(m.Vertices) / 2
	if fanCount < 2 {
		return nil
	}
	out := make([]v3.Vec, fanCount-1)
	copy(out, m.Vertices[1:fanCount])
	return out
}

// Transform returns a copy of the mesh moved by a rigid transform. Normals
// are rotated but not translated.
func (m *Mesh) Transform(t sdf.M44) *Mesh {
	origin := t.MulPosition(v3.Vec{})
	out := &Mesh{
		Vertices:  make([]v3.Vec, len(m.Vertices)),
		Triangles: make([][3]int, len(m.Triangles)),
		Normals:   make([]v3.Vec, len(m.Normals)),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.MulPosition(v)
	}
	for i, n := range m.Normals {
		out.Normals[i] = t.MulPosition(n).Sub(origin)
	}
	copy(out.Triangles, m.Triangles)
	return out
}

// Flat converts the mesh to the flat float32 buffers rendering consumers
// take.
func (m *Mesh) Flat(name string) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float32, 0, len(m.Vertices)*3),
		Normals:  make([]float32, 0, len(m.Normals)*3),
		Indices:  make([]uint32, 0, len(m.Triangles)*3),
		PartName: name,
	}
	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	for _, n := range m.Normals {
		out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, tri := range m.Triangles {
		out.Indices = append(out.Indices, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	return out
}

// PitchRadius is the radius midway between the valleys and the tips of the
// mesh Build produces for p. Two meshes sit in mesh when their centres are
// the sum of their pitch radii apart.
func PitchRadius(p geometry.Params) float64 {
	return p.RootDiameter() + p.ToothDepth()/2
}

// TipRadius is the outermost radius of the mesh Build produces for p.
func TipRadius(p geometry.Params) float64 {
	return p.RootDiameter() + p.ToothDepth()
}
