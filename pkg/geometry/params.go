// Package geometry holds the sizing parameters of a spur gear and the
// dimensions derived from them. All derived values are computed on demand
// so they can never drift from the parameters they come from.
package geometry

import "fmt"

// Dimension ratios relative to the module, following the standard
// full-depth spur gear proportions.
const (
	addendumRatio  = 1.0  // tip circle sits one module above the pitch circle
	dedendumRatio  = 1.25 // root circle sits 1.25 modules below it
	toothDepthRate = addendumRatio + dedendumRatio
)

// Params describes the shape of a single gear wheel.
//
// Resolution is the number of perimeter vertices allocated to one tooth arc.
// It must be even: the first half of each tooth's slots becomes the tip and
// the second half the valley, so an odd value silently truncates and gives
// asymmetric teeth. TeethCount below 3 yields a degenerate fan. Neither
// precondition is enforced by the mesh builder; see Validate.
type Params struct {
	TeethCount int     `json:"teeth" yaml:"teeth" validate:"gte=3"`
	Resolution int     `json:"resolution" yaml:"resolution" validate:"gte=2,even"`
	Module     float64 `json:"module" yaml:"module" validate:"gt=0"`
	Thickness  float64 `json:"thickness" yaml:"thickness" validate:"gt=0"`
}

// ReferenceDiameter is the pitch circle diameter, module × teeth.
func (p Params) ReferenceDiameter() float64 {
	return p.Module * float64(p.TeethCount)
}

// TipDiameter bounds the tooth tips.
func (p Params) TipDiameter() float64 {
	return p.ReferenceDiameter() + 2*addendumRatio*p.Module
}

// RootDiameter bounds the tooth valleys. It is negative for degenerate
// module/teeth combinations; callers are expected to reject those.
func (p Params) RootDiameter() float64 {
	return p.ReferenceDiameter() - 2*dedendumRatio*p.Module
}

// ToothDepth is the radial distance a tooth tip is extruded from the root.
func (p Params) ToothDepth() float64 {
	return toothDepthRate * p.Module
}

// PerimeterCount is the number of perimeter vertices on one cap.
func (p Params) PerimeterCount() int {
	return p.TeethCount * p.Resolution
}

// FanVertexCount is the number of vertices on one cap including its centre.
func (p Params) FanVertexCount() int {
	return p.PerimeterCount() + 1
}

// Equal reports whether two parameter sets describe the same gear. Editors
// use it to decide whether a regeneration is due.
func (p Params) Equal(other Params) bool {
	return p == other
}

func (p Params) String() string {
	return fmt.Sprintf("teeth=%d resolution=%d module=%g thickness=%g",
		p.TeethCount, p.Resolution, p.Module, p.Thickness)
}
