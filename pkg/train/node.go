package train

import (
	"github.com/chazu/gearwright/pkg/gearmesh"
	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NodeID addresses a gear inside the arena of its Train.
type NodeID int

// Node is one gear wheel placed in the scene.
type Node struct {
	ID       NodeID
	Name     string
	Params   geometry.Params
	Mesh     *gearmesh.Mesh
	Material *Material
	Position v3.Vec

	// Angle is the rotation about +Z in degrees.
	Angle float64
	// InputSpeed is in degrees per second. It only matters while Driven.
	InputSpeed float64
	Driven     bool
	// LastDelta is the angle applied to the gear during the most recent tick.
	LastDelta float64

	adjacent []NodeID
}

// Adjacent returns the gears this gear drives, in the order the edges were
// added.
func (n *Node) Adjacent() []NodeID {
	out := make([]NodeID, len(n.adjacent))
	copy(out, n.adjacent)
	return out
}

// Transform places the gear's mesh in the scene: rotate about Z by Angle,
// then translate to Position.
func (n *Node) Transform() sdf.M44 {
	return sdf.Translate3d(n.Position).Mul(sdf.RotateZ(sdf.DtoR(n.Angle)))
}

// snapshot returns a copy of the node that shares no mutable state with it.
// The mesh is shared because meshes are replaced, never edited.
func (n *Node) snapshot() Node {
	out := *n
	out.adjacent = n.Adjacent()
	return out
}
