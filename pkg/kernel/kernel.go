// Package kernel defines the solid-modelling backend used to build
// reference gear geometry, and the flat triangle mesh format handed to
// rendering consumers. Procedural gear meshes and kernel-produced solids
// both end up as a Mesh, so a renderer never needs to know which produced it.
package kernel

import "github.com/chazu/gearwright/pkg/geometry"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Gear builds an involute spur gear extruded along +Z, centred on the
	// origin, sized from the same parameters the procedural builder uses.
	Gear(p geometry.Params) (Solid, error)
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
