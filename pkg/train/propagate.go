package train

import (
	"fmt"
	"strings"
)

// PropagationMode selects how a tick spreads rotation from driven gears.
type PropagationMode int

const (
	// Recursive descends every drive edge depth first. A gear reachable
	// along two paths is rotated once per path.
	Recursive PropagationMode = iota
	// Worklist walks drive edges breadth first and rotates each gear at
	// most once per tick; the first path to reach a gear sets its speed.
	Worklist
)

func (m PropagationMode) String() string {
	switch m {
	case Recursive:
		return "recursive"
	case Worklist:
		return "worklist"
	default:
		return fmt.Sprintf("PropagationMode(%d)", int(m))
	}
}

// ParsePropagationMode accepts "recursive" or "worklist".
func ParsePropagationMode(s string) (PropagationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recursive":
		return Recursive, nil
	case "worklist":
		return Worklist, nil
	default:
		return Recursive, fmt.Errorf("train: unknown propagation mode %q", s)
	}
}

// Tick advances the simulation by dt seconds. Driven gears push their
// input speed into their chains; every other gear has its input speed
// cleared.
func (t *Train) Tick(dt float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, n := range t.nodes {
		n.LastDelta = 0
	}

	var visited map[NodeID]bool
	if t.mode == Worklist {
		visited = make(map[NodeID]bool, len(t.nodes))
	}

	for _, n := range t.nodes {
		if !n.Driven {
			n.InputSpeed = 0
			continue
		}
		switch t.mode {
		case Worklist:
			t.rotateWorklist(n.ID, n.InputSpeed, dt, visited)
		default:
			t.rotateIn(n.ID, n.InputSpeed, dt)
		}
	}
}

// rotateIn turns id by speed×dt and recurses into every gear it drives at
// the speed implied by the teeth ratio, with the direction reversed.
func (t *Train) rotateIn(id NodeID, speed, dt float64) {
	n := t.nodes[id]
	delta := speed * dt
	n.Angle += delta
	n.LastDelta += delta

	for _, target := range n.adjacent {
		t.rotateIn(target, meshedSpeed(speed, n, t.nodes[target]), dt)
	}
}

type pending struct {
	id    NodeID
	speed float64
}

func (t *Train) rotateWorklist(root NodeID, speed, dt float64, visited map[NodeID]bool) {
	if visited[root] {
		return
	}
	visited[root] = true
	queue := []pending{{id: root, speed: speed}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		n := t.nodes[cur.id]
		delta := cur.speed * dt
		n.Angle += delta
		n.LastDelta += delta

		for _, target := range n.adjacent {
			if visited[target] {
				continue
			}
			visited[target] = true
			queue = append(queue, pending{id: target, speed: meshedSpeed(cur.speed, n, t.nodes[target])})
		}
	}
}

// meshedSpeed is the speed of a driven gear meshing with a driver turning
// at speed.
func meshedSpeed(speed float64, driver, driven *Node) float64 {
	ratio := float64(driven.Params.TeethCount) / float64(driver.Params.TeethCount)
	return -speed / ratio
}
