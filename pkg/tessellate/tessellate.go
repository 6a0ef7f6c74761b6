// Package tessellate turns every gear of a train into a triangle mesh
// placed in the scene. Gears are independent, so their meshes are built in
// parallel.
package tessellate

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/chazu/gearwright/pkg/kernel"
	"github.com/chazu/gearwright/pkg/train"
	"golang.org/x/sync/errgroup"
)

// Mode selects where gear geometry comes from.
type Mode int

const (
	// Procedural uses the fan-and-band mesh stored on each gear.
	Procedural Mode = iota
	// Reference rebuilds each gear as an involute solid through a kernel.
	Reference
)

func (m Mode) String() string {
	switch m {
	case Procedural:
		return "procedural"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "procedural" or "reference".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "procedural":
		return Procedural, nil
	case "reference":
		return Reference, nil
	default:
		return Procedural, fmt.Errorf("tessellate: unknown mode %q", s)
	}
}

// Options controls a Tessellate call.
type Options struct {
	Mode Mode
	// Kernel is required in Reference mode.
	Kernel kernel.Kernel
	// Parallelism caps concurrent gear builds. Zero means GOMAXPROCS.
	Parallelism int
}

// Tessellate returns one mesh per gear, in arena order, with PartName set
// to the gear's name. The train is only read.
func Tessellate(ctx context.Context, t *train.Train, opts Options) ([]*kernel.Mesh, error) {
	if t == nil {
		return nil, nil
	}
	if opts.Mode == Reference && opts.Kernel == nil {
		return nil, fmt.Errorf("tessellate: reference mode needs a kernel")
	}

	nodes := t.Nodes()
	meshes := make([]*kernel.Mesh, len(nodes))

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range nodes {
		n := nodes[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := tessellateGear(n, opts)
			if err != nil {
				return fmt.Errorf("tessellate: gear %q: %w", n.Name, err)
			}
			meshes[n.ID] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

func tessellateGear(n train.Node, opts Options) (*kernel.Mesh, error) {
	switch opts.Mode {
	case Procedural:
		if n.Mesh == nil {
			return nil, fmt.Errorf("no mesh")
		}
		return n.Mesh.Transform(n.Transform()).Flat(n.Name), nil

	case Reference:
		k := opts.Kernel
		solid, err := referenceSolid(k, n.Params)
		if err != nil {
			return nil, err
		}
		if n.Angle != 0 {
			solid = k.Rotate(solid, 0, 0, n.Angle)
		}
		if p := n.Position; p.X != 0 || p.Y != 0 || p.Z != 0 {
			solid = k.Translate(solid, p.X, p.Y, p.Z)
		}
		m, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("ToMesh failed: %w", err)
		}
		m.PartName = n.Name
		return m, nil

	default:
		return nil, fmt.Errorf("unknown mode %v", opts.Mode)
	}
}

// referenceSolid is the kernel gear with its ring filled by a web out to
// half the root radius and a shaft bore through the centre.
func referenceSolid(k kernel.Kernel, p geometry.Params) (kernel.Solid, error) {
	g, err := k.Gear(p)
	if err != nil {
		return nil, err
	}
	web := k.Cylinder(p.Thickness, p.RootDiameter()/2, 0)
	bore := k.Cylinder(2*p.Thickness, boreRadius(p), 0)
	return k.Difference(k.Union(g, web), bore), nil
}

// boreRadius is an eighth of the root diameter, but never less than half a
// module.
func boreRadius(p geometry.Params) float64 {
	return math.Max(p.RootDiameter()/8, p.Module/2)
}
