package kernel

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // gear the mesh was generated for
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Check verifies the buffers are mutually consistent: whole vertices and
// triangles, one normal per vertex and every index in range.
func (m *Mesh) Check() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("kernel: vertex buffer length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: index buffer length %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("kernel: %d normal floats for %d vertex floats", len(m.Normals), len(m.Vertices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("kernel: index %d at position %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// STLTriangles expands the indexed buffers into the unindexed triangle list
// sdfx writes to STL. Call Check first; out of range indices panic.
func (m *Mesh) STLTriangles() []*sdf.Triangle3 {
	vertex := func(i uint32) v3.Vec {
		return v3.Vec{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tris = append(tris, &sdf.Triangle3{
			vertex(m.Indices[i]),
			vertex(m.Indices[i+1]),
			vertex(m.Indices[i+2]),
		})
	}
	return tris
}

// SaveSTL writes the mesh to a binary STL file.
func (m *Mesh) SaveSTL(path string) error {
	if err := m.Check(); err != nil {
		return err
	}
	if err := render.SaveSTL(path, m.STLTriangles()); err != nil {
		return fmt.Errorf("kernel: save stl %s: %w", path, err)
	}
	return nil
}
