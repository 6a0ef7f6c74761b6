package train

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/gearwright/pkg/geometry"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func gearParams(teeth int) geometry.Params {
	return geometry.Params{TeethCount: teeth, Resolution: 4, Module: 1, Thickness: 0.5}
}

// newTestTrain builds a train with one gear per entry in teeth, named a, b,
// c and so on.
func newTestTrain(t *testing.T, teeth []int, opts ...Option) (*Train, *Recorder, []NodeID) {
	t.Helper()
	rec := NewRecorder(nil)
	tr := New(append([]Option{WithDiagnostics(rec)}, opts...)...)
	ids := make([]NodeID, len(teeth))
	for i, n := range teeth {
		id, err := tr.AddGear(string(rune('a'+i)), gearParams(n), nil, v3.Vec{X: float64(i) * 20})
		if err != nil {
			t.Fatalf("AddGear: %v", err)
		}
		ids[i] = id
	}
	return tr, rec, ids
}

func TestAddGear(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10, 20})

	n, err := tr.Node(ids[1])
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if n.Name != "b" || n.Params.TeethCount != 20 {
		t.Errorf("Node(1) = %s %v", n.Name, n.Params)
	}
	if n.Mesh == nil || n.Mesh.VertexCount() != 2*(20*4+1) {
		t.Error("AddGear should build the gear mesh")
	}
	if n.Material != DefaultMaterial {
		t.Error("gear without material should get DefaultMaterial")
	}

	if _, err := tr.AddGear("a", gearParams(12), nil, v3.Vec{}); err == nil {
		t.Error("duplicate name should be rejected")
	}
	if _, err := tr.AddGear("", gearParams(12), nil, v3.Vec{}); err == nil {
		t.Error("empty name should be rejected")
	}
	if id, ok := tr.Lookup("b"); !ok || id != ids[1] {
		t.Errorf("Lookup(b) = %d, %v", id, ok)
	}
	if _, ok := tr.Lookup("zz"); ok {
		t.Error("Lookup of unknown name should fail")
	}
	if _, err := tr.Node(99); err == nil {
		t.Error("Node(99) should fail")
	}
}

func TestConnectRejectsReverseEdge(t *testing.T) {
	tr, rec, ids := newTestTrain(t, []int{10, 20})
	a, b := ids[0], ids[1]

	if !tr.Connect(a, b) {
		t.Fatal("Connect(a, b) = false, want true")
	}
	if tr.Connect(b, a) {
		t.Fatal("Connect(b, a) = true, want false")
	}

	nb, _ := tr.Node(b)
	if len(nb.Adjacent()) != 0 {
		t.Errorf("b.Adjacent() = %v, want empty", nb.Adjacent())
	}
	chains := tr.Chains()
	if len(chains) != 1 || len(chains[0].Members) != 2 || !chains[0].Valid {
		t.Errorf("Chains() = %+v, want one valid chain of two", chains)
	}
	if w := rec.Warnings(); len(w) != 1 || !strings.Contains(w[0], "cycle") {
		t.Errorf("warnings = %v, want one cycle warning", w)
	}
}

func TestConnectAcceptsSkipEdge(t *testing.T) {
	tr, rec, ids := newTestTrain(t, []int{10, 20, 30})
	a, b, c := ids[0], ids[1], ids[2]

	for _, e := range []Edge{{a, b}, {b, c}, {a, c}} {
		if !tr.Connect(e.From, e.To) {
			t.Fatalf("Connect(%d, %d) = false, want true", e.From, e.To)
		}
	}

	na, _ := tr.Node(a)
	if got := na.Adjacent(); len(got) != 2 || got[0] != b || got[1] != c {
		t.Errorf("a.Adjacent() = %v, want [b c]", got)
	}
	chain, ok := tr.ChainOf(c)
	want := []NodeID{a, b, c, c}
	if !ok || !chain.Valid || len(chain.Members) != len(want) {
		t.Fatalf("ChainOf(c) = %+v, want valid members %v", chain, want)
	}
	for i := range want {
		if chain.Members[i] != want[i] {
			t.Errorf("Members = %v, want %v", chain.Members, want)
			break
		}
	}
	if len(rec.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings())
	}
	if got := len(tr.Edges()); got != 3 {
		t.Errorf("len(Edges()) = %d, want 3", got)
	}
}

func TestConnectSecondEdgeIntoMemberInvalidatesChain(t *testing.T) {
	tr, rec, ids := newTestTrain(t, []int{10, 20, 30, 40, 50})
	a, b, c, d, e := ids[0], ids[1], ids[2], ids[3], ids[4]

	for _, edge := range []Edge{{a, b}, {b, c}, {b, d}, {a, c}, {c, d}} {
		if !tr.Connect(edge.From, edge.To) {
			t.Fatalf("Connect(%d, %d) = false, want true", edge.From, edge.To)
		}
	}

	// c and d are each listed twice; the repeated c drives d, which the
	// scan has already visited.
	chain, _ := tr.ChainOf(a)
	want := []NodeID{a, b, c, d, c, d}
	if len(chain.Members) != len(want) {
		t.Fatalf("Members = %v, want %v", chain.Members, want)
	}
	for i := range want {
		if chain.Members[i] != want[i] {
			t.Fatalf("Members = %v, want %v", chain.Members, want)
		}
	}
	if chain.Valid {
		t.Error("chain should no longer validate")
	}
	if w := rec.Warnings(); len(w) != 1 || !strings.Contains(w[0], "cycle after adding gear") {
		t.Errorf("warnings = %v, want one post-commit cycle warning", w)
	}

	// Every later edge into the broken chain is refused.
	if tr.Connect(d, e) {
		t.Error("Connect(d, e) = true, want false")
	}
	if _, ok := tr.ChainOf(e); ok {
		t.Error("e should not join the chain")
	}
	if got := len(tr.Edges()); got != 5 {
		t.Errorf("len(Edges()) = %d, want 5", got)
	}
}

func TestConnectRejectsThreeCycle(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10, 20, 30})
	a, b, c := ids[0], ids[1], ids[2]

	tr.Connect(a, b)
	tr.Connect(b, c)
	if tr.Connect(c, a) {
		t.Error("Connect(c, a) = true, want false")
	}
}

func TestConnectSelfLoopIsSilent(t *testing.T) {
	tr, rec, ids := newTestTrain(t, []int{10})

	if tr.Connect(ids[0], ids[0]) {
		t.Error("self loop should not be committed")
	}
	if len(rec.Entries()) != 0 {
		t.Errorf("self loop should not be reported, got %v", rec.Entries())
	}
	if len(tr.Chains()) != 0 {
		t.Error("self loop should not create a chain")
	}
}

func TestConnectRejectsCrossChain(t *testing.T) {
	tr, rec, ids := newTestTrain(t, []int{10, 20, 30, 40})
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	tr.Connect(a, b)
	tr.Connect(c, d)
	rec.Reset()

	if tr.Connect(a, d) {
		t.Fatal("Connect across chains = true, want false")
	}
	if w := rec.Warnings(); len(w) != 1 || !strings.Contains(w[0], "already in chain") {
		t.Errorf("warnings = %v, want one cross-chain warning", w)
	}
	if got := len(tr.Chains()); got != 2 {
		t.Errorf("len(Chains()) = %d, want 2", got)
	}
}

func TestConnectUnknownGear(t *testing.T) {
	tr, rec, ids := newTestTrain(t, []int{10})
	if tr.Connect(ids[0], 7) {
		t.Error("Connect to unknown gear should fail")
	}
	if len(rec.Warnings()) != 1 {
		t.Errorf("warnings = %v, want one", rec.Warnings())
	}
}

func TestTickRatio(t *testing.T) {
	tests := []struct {
		name  string
		teeth []int
		speed float64
		dt    float64
		want  []float64
	}{
		{"double teeth halves and reverses", []int{10, 20}, 60, 0.1, []float64{6, -3}},
		{"half teeth doubles", []int{20, 10}, 60, 1, []float64{60, -120}},
		{"three in line", []int{10, 20, 10}, 30, 1, []float64{30, -15, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, ids := newTestTrain(t, tt.teeth)
			for i := 0; i+1 < len(ids); i++ {
				tr.Connect(ids[i], ids[i+1])
			}
			tr.SetDriven(ids[0], true)
			tr.SetSpeed(ids[0], tt.speed)

			tr.Tick(tt.dt)

			for i, id := range ids {
				n, _ := tr.Node(id)
				if !almostEqual(n.Angle, tt.want[i]) {
					t.Errorf("gear %s angle = %f, want %f", n.Name, n.Angle, tt.want[i])
				}
				if !almostEqual(n.LastDelta, tt.want[i]) {
					t.Errorf("gear %s LastDelta = %f, want %f", n.Name, n.LastDelta, tt.want[i])
				}
			}
		})
	}
}

func TestTickAccumulates(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10, 20})
	tr.Connect(ids[0], ids[1])
	tr.SetDriven(ids[0], true)
	tr.SetSpeed(ids[0], 60)

	for i := 0; i < 10; i++ {
		tr.Tick(0.1)
	}
	n, _ := tr.Node(ids[1])
	if !almostEqual(n.Angle, -30) {
		t.Errorf("angle after 1s = %f, want -30", n.Angle)
	}
	if !almostEqual(n.LastDelta, -3) {
		t.Errorf("LastDelta = %f, want -3", n.LastDelta)
	}
}

func TestTickClearsSpeedOfUndrivenGears(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10, 20})
	tr.Connect(ids[0], ids[1])
	tr.SetSpeed(ids[0], 60)
	tr.SetSpeed(ids[1], 45)

	tr.Tick(1)

	for _, id := range ids {
		n, _ := tr.Node(id)
		if n.InputSpeed != 0 {
			t.Errorf("gear %s InputSpeed = %f, want 0", n.Name, n.InputSpeed)
		}
		if n.Angle != 0 {
			t.Errorf("gear %s angle = %f, want 0", n.Name, n.Angle)
		}
	}
}

// diamond connects a -> b, a -> c, b -> d, c -> d.
func diamond(t *testing.T, mode PropagationMode) (*Train, []NodeID) {
	t.Helper()
	tr, _, ids := newTestTrain(t, []int{10, 10, 10, 10}, WithPropagation(mode))
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]
	for _, e := range []Edge{{a, b}, {a, c}, {b, d}, {c, d}} {
		if !tr.Connect(e.From, e.To) {
			t.Fatalf("Connect(%d, %d) rejected", e.From, e.To)
		}
	}
	tr.SetDriven(a, true)
	tr.SetSpeed(a, 10)
	return tr, ids
}

func TestTickDiamond(t *testing.T) {
	tests := []struct {
		mode PropagationMode
		d    float64
	}{
		{Recursive, 20},
		{Worklist, 10},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			tr, ids := diamond(t, tt.mode)
			tr.Tick(1)

			want := []float64{10, -10, -10, tt.d}
			for i, id := range ids {
				n, _ := tr.Node(id)
				if !almostEqual(n.Angle, want[i]) {
					t.Errorf("gear %s angle = %f, want %f", n.Name, n.Angle, want[i])
				}
			}
		})
	}
}

func TestParsePropagationMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PropagationMode
		wantErr bool
	}{
		{"", Recursive, false},
		{"recursive", Recursive, false},
		{"Worklist", Worklist, false},
		{"bfs", Recursive, true},
	}
	for _, tt := range tests {
		got, err := ParsePropagationMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePropagationMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePropagationMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRegenerate(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10})
	id := ids[0]

	before, _ := tr.Node(id)
	if err := tr.SetParams(id, gearParams(16)); err != nil {
		t.Fatal(err)
	}
	mid, _ := tr.Node(id)
	if mid.Mesh != before.Mesh {
		t.Error("SetParams should not rebuild the mesh")
	}
	if err := tr.Regenerate(id); err != nil {
		t.Fatal(err)
	}
	after, _ := tr.Node(id)
	if after.Mesh.VertexCount() != 2*(16*4+1) {
		t.Errorf("VertexCount() = %d after regenerate", after.Mesh.VertexCount())
	}
	if err := tr.Regenerate(42); err == nil {
		t.Error("Regenerate of unknown gear should fail")
	}
}

func TestNodeTransform(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10})
	id := ids[0]
	tr.SetPosition(id, v3.Vec{X: 5, Y: 5})
	n, _ := tr.Node(id)
	n.Angle = 90

	got := n.Transform().MulPosition(v3.Vec{X: 1})
	if !almostEqual(got.X, 5) || !almostEqual(got.Y, 6) {
		t.Errorf("Transform() maps (1,0,0) to %v, want (5,6,0)", got)
	}
}

func TestAddSpeedAndMaterial(t *testing.T) {
	tr, _, ids := newTestTrain(t, []int{10})
	id := ids[0]
	if v, _ := tr.AddSpeed(id, 1); v != 1 {
		t.Errorf("AddSpeed = %f, want 1", v)
	}
	if v, _ := tr.AddSpeed(id, -3); v != -2 {
		t.Errorf("AddSpeed = %f, want -2", v)
	}

	brass := &Material{Name: "brass", Color: "#B5A642"}
	tr.SetMaterial(id, brass)
	n, _ := tr.Node(id)
	if n.Material != brass {
		t.Error("SetMaterial did not store the shared reference")
	}
}

func TestMaterialRGB(t *testing.T) {
	r, g, b, err := (&Material{Name: "m", Color: "#FF8000"}).RGB()
	if err != nil {
		t.Fatal(err)
	}
	if r != 1 || !almostEqual(g, 128.0/255) || b != 0 {
		t.Errorf("RGB() = %f %f %f", r, g, b)
	}
	if _, _, _, err := (&Material{Color: "red"}).RGB(); err == nil {
		t.Error("RGB() of a non-hex colour should fail")
	}
}
