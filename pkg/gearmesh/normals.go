package gearmesh

import v3 "github.com/deadsy/sdfx/vec/v3"

// vertexNormals accumulates the area-weighted face normal of every triangle
// onto its three corners and normalizes the sums. Vertices touched only by
// degenerate triangles keep a zero normal.
func vertexNormals(verts []v3.Vec, tris [][3]int) []v3.Vec {
	normals := make([]v3.Vec, len(verts))
	for _, tri := range tris {
		a, b, c := verts[tri[0]], verts[tri[1]], verts[tri[2]]
		face := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range tri {
			normals[idx] = normals[idx].Add(face)
		}
	}
	for i, n := range normals {
		if n.Length() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}
