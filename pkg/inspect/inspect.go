// Package inspect edits a single gear of a train the way a property panel
// would: read and write parameters, rebuild the mesh on demand or
// automatically when a parameter changes, and start, stop or speed up its
// rotation.
package inspect

import (
	"fmt"

	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/chazu/gearwright/pkg/train"
	"go.uber.org/zap"
)

// SpeedStep is how much AddSpeed and RemoveSpeed change the input speed, in
// degrees per second.
const SpeedStep = 1.0

// Inspector edits one gear. It remembers the parameters it last saw so a
// host loop can call Refresh each frame and only pay for a rebuild when
// something changed.
type Inspector struct {
	train *train.Train
	id    train.NodeID
	log   *zap.Logger

	seen geometry.Params
	auto bool
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger used to report regenerations.
func WithLogger(l *zap.Logger) Option {
	return func(i *Inspector) {
		if l != nil {
			i.log = l
		}
	}
}

// WithAutoRegenerate starts the inspector with auto-regeneration on.
func WithAutoRegenerate(on bool) Option {
	return func(i *Inspector) {
		i.auto = on
	}
}

// New attaches an inspector to gear id.
func New(t *train.Train, id train.NodeID, opts ...Option) (*Inspector, error) {
	n, err := t.Node(id)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	i := &Inspector{train: t, id: id, log: zap.NewNop(), seen: n.Params}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Gear returns the inspected gear's current state.
func (i *Inspector) Gear() (train.Node, error) {
	return i.train.Node(i.id)
}

// Changed reports whether the gear's parameters differ from the ones seen
// on the previous call, and remembers the current ones.
func (i *Inspector) Changed() (bool, error) {
	n, err := i.train.Node(i.id)
	if err != nil {
		return false, err
	}
	changed := !n.Params.Equal(i.seen)
	i.seen = n.Params
	return changed, nil
}

// Refresh regenerates the mesh if auto-regeneration is on and the
// parameters changed since the last look. It reports whether a rebuild
// happened. A change seen while auto-regeneration is off is consumed and
// will not trigger a rebuild later.
func (i *Inspector) Refresh() (bool, error) {
	changed, err := i.Changed()
	if err != nil {
		return false, err
	}
	if !changed || !i.auto {
		return false, nil
	}
	if err := i.Regenerate(); err != nil {
		return false, err
	}
	return true, nil
}

// Regenerate rebuilds the mesh now.
func (i *Inspector) Regenerate() error {
	if err := i.train.Regenerate(i.id); err != nil {
		return fmt.Errorf("inspect: regenerate: %w", err)
	}
	i.log.Debug("gear regenerated", zap.Int("gear", int(i.id)))
	return nil
}

// SetParams validates and stores new parameters, then refreshes.
func (i *Inspector) SetParams(p geometry.Params) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("inspect: %w", err)
	}
	if err := i.train.SetParams(i.id, p); err != nil {
		return false, err
	}
	return i.Refresh()
}

// SetMaterial replaces the gear's material reference.
func (i *Inspector) SetMaterial(m *train.Material) error {
	return i.train.SetMaterial(i.id, m)
}

// AutoRegenerate reports whether auto-regeneration is on.
func (i *Inspector) AutoRegenerate() bool {
	return i.auto
}

// ToggleAutoRegenerate flips auto-regeneration and returns the new state.
func (i *Inspector) ToggleAutoRegenerate() bool {
	i.auto = !i.auto
	return i.auto
}

// ToggleRotate flips whether the gear drives its chain and returns the new
// state.
func (i *Inspector) ToggleRotate() (bool, error) {
	n, err := i.train.Node(i.id)
	if err != nil {
		return false, err
	}
	driven := !n.Driven
	if err := i.train.SetDriven(i.id, driven); err != nil {
		return false, err
	}
	return driven, nil
}

// AddSpeed raises the input speed by SpeedStep.
func (i *Inspector) AddSpeed() (float64, error) {
	return i.train.AddSpeed(i.id, SpeedStep)
}

// RemoveSpeed lowers the input speed by SpeedStep.
func (i *Inspector) RemoveSpeed() (float64, error) {
	return i.train.AddSpeed(i.id, -SpeedStep)
}
