package train

// Registry tracks every chain of one Train. Chains are only ever appended.
type Registry struct {
	chains []*Chain
	graph  adjacency
	diag   Diagnostics
}

func newRegistry(graph adjacency, diag Diagnostics) *Registry {
	return &Registry{graph: graph, diag: diag}
}

// ChainContaining returns the first chain with id as a member, or nil.
func (r *Registry) ChainContaining(id NodeID) *Chain {
	for _, c := range r.chains {
		if c.Contains(id) {
			return c
		}
	}
	return nil
}

// CreateChain appends a new empty chain.
func (r *Registry) CreateChain() *Chain {
	c := newChain(r.graph, r.diag)
	r.chains = append(r.chains, c)
	chainsCreated.Inc()
	r.diag.Infof("chain %s created", c.ID)
	return c
}

// Chains returns the registered chains in creation order.
func (r *Registry) Chains() []*Chain {
	out := make([]*Chain, len(r.chains))
	copy(out, r.chains)
	return out
}

// Len returns the number of chains.
func (r *Registry) Len() int {
	return len(r.chains)
}
