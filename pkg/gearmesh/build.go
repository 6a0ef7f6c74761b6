// Package gearmesh procedurally builds a closed triangle mesh of a spur gear
// from its geometry parameters.
//
// The gear is made of two triangle fans (top and bottom caps) whose
// perimeters alternate between tooth tips and valleys, stitched together by
// a band of quads around the outside. Vertex layout:
//
//	[0]            top cap centre
//	[1..n]         top cap perimeter
//	[n+1]          bottom cap centre
//	[n+2..2n+1]    bottom cap perimeter
//
// where n = TeethCount × Resolution. Index buffer layout is top fan, bottom
// fan, then side band.
package gearmesh

import (
	"math"

	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Build generates the mesh for a gear. It is a pure function of p: identical
// parameters always produce identical buffers.
//
// Build does not validate p. An odd Resolution truncates the tip/valley split
// and gives asymmetric teeth; fewer than three teeth give a degenerate fan.
// Callers should run p.Validate first.
func Build(p geometry.Params) *Mesh {
	fanCount := p.FanVertexCount()

	top := fanVertices(p, p.Thickness/2)
	bottom := fanVertices(p, -p.Thickness/2)

	vertices := make([]v3.Vec, 0, 2*fanCount)
	vertices = append(vertices, top...)
	vertices = append(vertices, bottom...)

	extrudeTeeth(vertices, p)

	topFan := fanTriangles(fanCount)
	bottomFan := flipTriangles(offsetTriangles(fanTriangles(fanCount), fanCount))
	side := sideTriangles(p)

	triangles := make([][3]int, 0, len(topFan)+len(bottomFan)+len(side))
	triangles = append(triangles, topFan...)
	triangles = append(triangles, bottomFan...)
	triangles = append(triangles, side...)

	return &Mesh{
		Vertices:  vertices,
		Triangles: triangles,
		Normals:   vertexNormals(vertices, triangles),
	}
}

// Regenerate rebuilds a gear mesh after a parameter change. Hosts call it
// from their own loop once they detect a diff; nothing regenerates
// implicitly.
func Regenerate(p geometry.Params) *Mesh {
	return Build(p)
}

// fanVertices places one cap: a centre vertex followed by the perimeter on a
// circle of radius RootDiameter at height z.
func fanVertices(p geometry.Params, z float64) []v3.Vec {
	count := p.FanVertexCount()
	verts := make([]v3.Vec, count)
	verts[0] = v3.Vec{X: 0, Y: 0, Z: z}

	radius := p.RootDiameter()
	step := 360.0 / float64(count-1)
	for i := 0; i < count-1; i++ {
		dir := unitCircle(step * float64(i))
		verts[i+1] = v3.Vec{X: dir.X * radius, Y: dir.Y * radius, Z: z}
	}
	return verts
}

// unitCircle returns (cos θ, sin θ, 0) for an angle in degrees.
func unitCircle(degrees float64) v3.Vec {
	rad := sdf.DtoR(degrees)
	return v3.Vec{X: math.Cos(rad), Y: math.Sin(rad)}
}

// fanTriangles indexes a fan of count vertices around centre 0. The last
// triangle wraps back to perimeter vertex 1 rather than the centre.
func fanTriangles(count int) [][3]int {
	tris := make([][3]int, count-1)
	for i := 0; i < count-1; i++ {
		b := (i + 1) % count
		c := (i + 2) % count
		if c == 0 {
			c = 1
		}
		tris[i] = [3]int{0, b, c}
	}
	return tris
}

// offsetTriangles shifts every index by offset in place.
func offsetTriangles(tris [][3]int, offset int) [][3]int {
	for i := range tris {
		tris[i][0] += offset
		tris[i][1] += offset
		tris[i][2] += offset
	}
	return tris
}

// flipTriangles reverses winding in place by swapping first and last index.
func flipTriangles(tris [][3]int) [][3]int {
	for i := range tris {
		tris[i][0], tris[i][2] = tris[i][2], tris[i][0]
	}
	return tris
}

// vertexPair links a top perimeter vertex with the bottom vertex at the same
// angular slot.
type vertexPair struct {
	top, bottom int
}

// sidePairs pairs every top perimeter vertex with its bottom counterpart.
func sidePairs(p geometry.Params) []vertexPair {
	n := p.PerimeterCount()
	fanCount := p.FanVertexCount()
	pairs := make([]vertexPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = vertexPair{top: 1 + i, bottom: fanCount + 1 + i}
	}
	return pairs
}

// extrudeTeeth pushes the first half of every tooth's slots outward by the
// tooth depth, on both caps, leaving the second half at the root circle.
func extrudeTeeth(verts []v3.Vec, p geometry.Params) {
	pairs := sidePairs(p)
	depth := p.ToothDepth()
	half := p.Resolution / 2

	for t := 0; t < p.TeethCount; t++ {
		for k := 0; k < half; k++ {
			pair := pairs[t*p.Resolution+k]
			dir := radial(verts[pair.top])
			push := dir.MulScalar(depth)
			verts[pair.top] = verts[pair.top].Add(push)
			verts[pair.bottom] = verts[pair.bottom].Add(push)
		}
	}
}

// radial returns the normalized XY projection of v.
func radial(v v3.Vec) v3.Vec {
	flat := v3.Vec{X: v.X, Y: v.Y}
	if flat.Length() == 0 {
		return flat
	}
	return flat.Normalize()
}

// sideTriangles stitches the two perimeters into a closed band. Each slot
// forms a quad of two neighbouring top vertices and their bottom
// counterparts; the last slot wraps around to the first.
func sideTriangles(p geometry.Params) [][3]int {
	n := p.PerimeterCount()
	fanCount := p.FanVertexCount()
	tris := make([][3]int, 0, 2*n)

	for i := 0; i < n; i++ {
		next := i + 2
		if i == n-1 {
			next = 1
		}
		tris = append(tris, quadTriangles(i+1, next, fanCount+i+1, fanCount+next)...)
	}
	return tris
}

// quadTriangles splits a quad into two triangles along the diagonal from
// the top-left to the bottom-right corner.
func quadTriangles(topLeft, topRight, bottomLeft, bottomRight int) [][3]int {
	return [][3]int{
		{topLeft, bottomLeft, bottomRight},
		{topLeft, bottomRight, topRight},
	}
}
