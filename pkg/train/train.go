package train

import (
	"fmt"
	"sync"

	"github.com/chazu/gearwright/pkg/gearmesh"
	"github.com/chazu/gearwright/pkg/geometry"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Train owns a set of gears, the chains they form and the registry that
// tracks those chains. All methods are safe for concurrent use.
type Train struct {
	mu       sync.Mutex
	nodes    []*Node
	names    map[string]NodeID
	registry *Registry
	diag     Diagnostics
	mode     PropagationMode
}

// Option configures a Train.
type Option func(*Train)

// WithDiagnostics routes chain reports to d.
func WithDiagnostics(d Diagnostics) Option {
	return func(t *Train) {
		if d != nil {
			t.diag = d
		}
	}
}

// WithPropagation selects how rotation spreads through a chain.
func WithPropagation(mode PropagationMode) Option {
	return func(t *Train) {
		t.mode = mode
	}
}

// New returns an empty train.
func New(opts ...Option) *Train {
	t := &Train{
		names: make(map[string]NodeID),
		diag:  nopDiagnostics{},
		mode:  Recursive,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.registry = newRegistry(t, t.diag)
	return t
}

// adjacent implements adjacency for the train's chains. Callers hold mu.
func (t *Train) adjacent(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].adjacent
}

func (t *Train) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Train) node(id NodeID) (*Node, error) {
	if !t.valid(id) {
		return nil, fmt.Errorf("train: unknown gear %d", id)
	}
	return t.nodes[id], nil
}

// AddGear places a new gear and builds its mesh. Params are not validated
// here; callers that accept user input run Params.Validate first.
func (t *Train) AddGear(name string, p geometry.Params, mat *Material, pos v3.Vec) (NodeID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name == "" {
		return 0, fmt.Errorf("train: gear name is empty")
	}
	if _, exists := t.names[name]; exists {
		return 0, fmt.Errorf("train: gear %q already defined", name)
	}
	if mat == nil {
		mat = DefaultMaterial
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &Node{
		ID:       id,
		Name:     name,
		Params:   p,
		Mesh:     gearmesh.Build(p),
		Material: mat,
		Position: pos,
	})
	t.names[name] = id
	return id, nil
}

// Lookup finds a gear by name.
func (t *Train) Lookup(name string) (NodeID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.names[name]
	return id, ok
}

// Node returns a copy of the gear's current state.
func (t *Train) Node(id NodeID) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return Node{}, err
	}
	return n.snapshot(), nil
}

// Nodes returns copies of every gear in arena order.
func (t *Train) Nodes() []Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.snapshot()
	}
	return out
}

// Len returns the number of gears.
func (t *Train) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// Connect adds a drive edge from a to b and reports whether it was
// committed. Rejections are reported to the diagnostics sink and leave the
// train unchanged, apart from a chain created for a. Connecting a gear to
// itself is ignored.
func (t *Train) Connect(a, b NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid(a) || !t.valid(b) {
		t.diag.Warnf("connect %d -> %d: unknown gear", a, b)
		return false
	}
	if a == b {
		return false
	}
	src, dst := t.nodes[a], t.nodes[b]

	chain := t.registry.ChainContaining(a)
	if chain == nil {
		chain = t.registry.CreateChain()
		chain.Add(a)
	}

	if other := t.registry.ChainContaining(b); other != nil && other != chain {
		edgesTotal.WithLabelValues(edgeCrossChain).Inc()
		t.diag.Warnf("could not add gear %q: already in chain %s, %q is in chain %s",
			dst.Name, other.ID, src.Name, chain.ID)
		return false
	}

	if !chain.CanAdd(b) {
		edgesTotal.WithLabelValues(edgeCycle).Inc()
		t.diag.Warnf("could not add gear %q to chain %s: %q -> %q would form a cycle",
			dst.Name, chain.ID, src.Name, dst.Name)
		return false
	}

	src.adjacent = append(src.adjacent, b)
	chain.Add(b)
	edgesTotal.WithLabelValues(edgeAccepted).Inc()
	return true
}

// Edge is one drive relation.
type Edge struct {
	From, To NodeID
}

// Edges returns every drive edge, grouped by source in arena order.
func (t *Train) Edges() []Edge {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Edge
	for _, n := range t.nodes {
		for _, target := range n.adjacent {
			out = append(out, Edge{From: n.ID, To: target})
		}
	}
	return out
}

// ChainInfo is a read-only view of a chain.
type ChainInfo struct {
	ID      uuid.UUID
	Members []NodeID
	Valid   bool
}

// Chains describes every chain in creation order.
func (t *Train) Chains() []ChainInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	chains := t.registry.Chains()
	out := make([]ChainInfo, len(chains))
	for i, c := range chains {
		out[i] = ChainInfo{ID: c.ID, Members: c.Members(), Valid: c.Validate()}
	}
	return out
}

// ChainOf returns the chain id belongs to.
func (t *Train) ChainOf(id NodeID) (ChainInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.registry.ChainContaining(id)
	if c == nil {
		return ChainInfo{}, false
	}
	return ChainInfo{ID: c.ID, Members: c.Members(), Valid: c.Validate()}, true
}

// SetParams stores new parameters without rebuilding the mesh. The owner
// decides when to call Regenerate.
func (t *Train) SetParams(id NodeID, p geometry.Params) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return err
	}
	n.Params = p
	return nil
}

// Regenerate replaces the gear's mesh with one built from its current
// parameters.
func (t *Train) Regenerate(id NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return err
	}
	n.Mesh = gearmesh.Regenerate(n.Params)
	regenerations.Inc()
	return nil
}

// SetMaterial swaps the gear's material reference.
func (t *Train) SetMaterial(id NodeID, mat *Material) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return err
	}
	if mat == nil {
		mat = DefaultMaterial
	}
	n.Material = mat
	return nil
}

// SetPosition moves the gear.
func (t *Train) SetPosition(id NodeID, pos v3.Vec) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return err
	}
	n.Position = pos
	return nil
}

// SetDriven marks the gear as a rotation source.
func (t *Train) SetDriven(id NodeID, driven bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return err
	}
	n.Driven = driven
	return nil
}

// SetSpeed sets the input speed in degrees per second.
func (t *Train) SetSpeed(id NodeID, speed float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return err
	}
	n.InputSpeed = speed
	return nil
}

// AddSpeed adjusts the input speed by delta and returns the new value.
func (t *Train) AddSpeed(id NodeID, delta float64) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(id)
	if err != nil {
		return 0, err
	}
	n.InputSpeed += delta
	return n.InputSpeed, nil
}
