package train

import "github.com/google/uuid"

// adjacency resolves a gear's drive list. Train implements it over its
// arena; tests use a plain map.
type adjacency interface {
	adjacent(id NodeID) []NodeID
}

// Chain is the ordered list of gears connected by drive edges. A gear
// driven by several edges is listed once per edge.
type Chain struct {
	ID uuid.UUID

	members []NodeID
	graph   adjacency
	diag    Diagnostics
}

func newChain(graph adjacency, diag Diagnostics) *Chain {
	return &Chain{ID: uuid.New(), graph: graph, diag: diag}
}

// Members returns the chain's gears in insertion order.
func (c *Chain) Members() []NodeID {
	out := make([]NodeID, len(c.members))
	copy(out, c.members)
	return out
}

// Len returns the number of member entries.
func (c *Chain) Len() int {
	return len(c.members)
}

// Contains reports whether id is a member.
func (c *Chain) Contains(id NodeID) bool {
	for _, m := range c.members {
		if m == id {
			return true
		}
	}
	return false
}

// Validate walks members in insertion order, marking each visited, and
// fails as soon as a member drives a gear already visited.
//
// The scan is order dependent and is not a general cycle detector: an edge
// from an earlier member to a later one passes, the reverse does not.
func (c *Chain) Validate() bool {
	visited := make(map[NodeID]bool, len(c.members))
	for _, m := range c.members {
		visited[m] = true
		for _, target := range c.graph.adjacent(m) {
			if visited[target] {
				return false
			}
		}
	}
	return true
}

// CanAdd reports whether id could join the chain. It appends id, validates
// and removes the probe again, so the chain is unchanged on return even
// when id is already a member.
func (c *Chain) CanAdd(id NodeID) bool {
	c.members = append(c.members, id)
	ok := c.Validate()
	c.members = c.members[:len(c.members)-1]
	return ok
}

// TryAdd commits id if CanAdd allows it.
func (c *Chain) TryAdd(id NodeID) bool {
	if !c.CanAdd(id) {
		return false
	}
	c.commit(id)
	return true
}

// Add appends id without asking first and warns if the chain no longer
// validates. Connect uses it to seed new chains and to commit accepted
// targets.
func (c *Chain) Add(id NodeID) {
	c.commit(id)
	if !c.Validate() {
		c.diag.Warnf("chain %s: cycle after adding gear %d", c.ID, id)
	}
}

// commit always appends. A gear reached by a second edge appears again
// later in the scan order.
func (c *Chain) commit(id NodeID) {
	c.members = append(c.members, id)
}
