package kernel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/gearwright/pkg/geometry"
)

// --- Mesh helper method tests ---

func quad() *Mesh {
	return &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestMeshSTLTriangles(t *testing.T) {
	tris := quad().STLTriangles()
	if len(tris) != 2 {
		t.Fatalf("len(STLTriangles()) = %d, want 2", len(tris))
	}
	if c := tris[1][2]; c.X != 0 || c.Y != 1 || c.Z != 0 {
		t.Errorf("second triangle last corner = %v, want (0, 1, 0)", c)
	}
}

func TestMeshSaveSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.stl")
	if err := quad().SaveSTL(path); err != nil {
		t.Fatalf("SaveSTL() = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// 80 byte header, 4 byte count, 50 bytes per triangle.
	if want := int64(84 + 50*2); info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), want)
	}

	bad := quad()
	bad.Indices[5] = 9
	if err := bad.SaveSTL(filepath.Join(t.TempDir(), "bad.stl")); err == nil {
		t.Error("SaveSTL() with an out of range index: error = nil")
	}
}

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Mesh consistency ---

func TestMeshCheck(t *testing.T) {
	tests := []struct {
		name    string
		mesh    Mesh
		wantErr bool
	}{
		{"empty", Mesh{}, false},
		{
			name: "one triangle",
			mesh: Mesh{
				Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
				Indices:  []uint32{0, 1, 2},
			},
		},
		{
			name: "index out of range",
			mesh: Mesh{
				Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
				Indices:  []uint32{0, 1, 3},
			},
			wantErr: true,
		},
		{
			name: "missing normals",
			mesh: Mesh{
				Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Indices:  []uint32{0, 1, 2},
			},
			wantErr: true,
		},
		{
			name:    "partial vertex",
			mesh:    Mesh{Vertices: []float32{0, 0}, Normals: []float32{0, 0}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Gear(p geometry.Params) (Solid, error) {
	r := p.TipDiameter() / 2
	h := p.Thickness / 2
	return &stubSolid{
		minBB: [3]float64{-r, -r, -h},
		maxBB: [3]float64{r, r, h},
	}, nil
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) Union(a, _ Solid) Solid     { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelGearBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Gear(geometry.Params{TeethCount: 12, Resolution: 4, Module: 1, Thickness: 0.5})
	if err != nil {
		t.Fatalf("Gear() error = %v", err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{-7, -7, -0.25} {
		t.Errorf("Gear min = %v, want [-7 -7 -0.25]", min)
	}
	if max != [3]float64{7, 7, 0.25} {
		t.Errorf("Gear max = %v, want [7 7 0.25]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Cylinder(1, 1, 16)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
