package inspect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/chazu/gearwright/pkg/train"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var baseParams = geometry.Params{TeethCount: 12, Resolution: 4, Module: 1, Thickness: 0.5}

func newInspector(t *testing.T, opts ...Option) (*train.Train, train.NodeID, *Inspector) {
	t.Helper()
	tr := train.New()
	id, err := tr.AddGear("driver", baseParams, nil, v3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	i, err := New(tr, id, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return tr, id, i
}

func TestNewUnknownGear(t *testing.T) {
	if _, err := New(train.New(), 3); err == nil {
		t.Error("New with unknown gear should fail")
	}
}

func TestChanged(t *testing.T) {
	tr, id, i := newInspector(t)

	if changed, _ := i.Changed(); changed {
		t.Error("fresh inspector should see no change")
	}

	p := baseParams
	p.Thickness = 1
	tr.SetParams(id, p)

	if changed, _ := i.Changed(); !changed {
		t.Error("Changed() = false after thickness edit")
	}
	if changed, _ := i.Changed(); changed {
		t.Error("Changed() should consume the diff")
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name      string
		auto      bool
		wantRegen bool
	}{
		{"auto on", true, true},
		{"auto off", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, id, i := newInspector(t, WithAutoRegenerate(tt.auto))
			before, _ := tr.Node(id)

			p := baseParams
			p.TeethCount = 20
			tr.SetParams(id, p)

			regen, err := i.Refresh()
			if err != nil {
				t.Fatal(err)
			}
			if regen != tt.wantRegen {
				t.Errorf("Refresh() = %v, want %v", regen, tt.wantRegen)
			}
			after, _ := tr.Node(id)
			if (after.Mesh != before.Mesh) != tt.wantRegen {
				t.Errorf("mesh replaced = %v, want %v", after.Mesh != before.Mesh, tt.wantRegen)
			}
		})
	}
}

func TestChangeSeenWhileAutoOffIsConsumed(t *testing.T) {
	tr, id, i := newInspector(t)

	p := baseParams
	p.Module = 2
	tr.SetParams(id, p)
	i.Refresh()

	i.ToggleAutoRegenerate()
	if regen, _ := i.Refresh(); regen {
		t.Error("turning auto on should not replay an old change")
	}
	if err := i.Regenerate(); err != nil {
		t.Fatal(err)
	}
	n, _ := tr.Node(id)
	if _, max := n.Mesh.Bounds(); max.X < 20 {
		t.Errorf("manual regenerate did not pick up module 2: max.X = %f", max.X)
	}
}

func TestSetParams(t *testing.T) {
	tr, id, i := newInspector(t, WithAutoRegenerate(true))

	p := baseParams
	p.Resolution = 5
	if _, err := i.SetParams(p); err == nil {
		t.Fatal("SetParams with odd resolution should fail")
	}
	n, _ := tr.Node(id)
	if n.Params != baseParams {
		t.Error("rejected params should not be stored")
	}

	p.Resolution = 6
	regen, err := i.SetParams(p)
	if err != nil || !regen {
		t.Fatalf("SetParams() = %v, %v; want true, nil", regen, err)
	}
	n, _ = tr.Node(id)
	if n.Mesh.VertexCount() != 2*(12*6+1) {
		t.Errorf("VertexCount() = %d", n.Mesh.VertexCount())
	}
}

func TestRotateAndSpeed(t *testing.T) {
	tr, id, i := newInspector(t)

	if on, _ := i.ToggleRotate(); !on {
		t.Error("first ToggleRotate should turn rotation on")
	}
	i.AddSpeed()
	i.AddSpeed()
	if v, _ := i.RemoveSpeed(); v != 1 {
		t.Errorf("speed = %f, want 1", v)
	}

	tr.Tick(2)
	n, _ := tr.Node(id)
	if n.Angle != 2 {
		t.Errorf("angle = %f, want 2", n.Angle)
	}

	if on, _ := i.ToggleRotate(); on {
		t.Error("second ToggleRotate should turn rotation off")
	}
	tr.Tick(1)
	n, _ = tr.Node(id)
	if n.InputSpeed != 0 {
		t.Errorf("speed = %f after stopping, want 0", n.InputSpeed)
	}
}

func TestSetMaterial(t *testing.T) {
	tr, id, i := newInspector(t)
	steel := &train.Material{Name: "steel", Color: "#8899AA"}
	if err := i.SetMaterial(steel); err != nil {
		t.Fatal(err)
	}
	n, _ := tr.Node(id)
	if n.Material != steel {
		t.Error("material not applied")
	}
}

func TestStatus(t *testing.T) {
	_, _, i := newInspector(t)
	s, err := i.Status()
	if err != nil {
		t.Fatal(err)
	}
	if s.TipDiameter != 14 || s.RootDiameter != 9.5 || s.Vertices != 98 {
		t.Errorf("Status() = %+v", s)
	}

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo returned %d, wrote %d", n, buf.Len())
	}
	for _, want := range []string{"driver", "tip diameter", "9.5", "auto-generate"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}
