package geometry

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDerivedDimensions(t *testing.T) {
	p := Params{TeethCount: 12, Resolution: 4, Module: 1.0, Thickness: 0.5}

	if got := p.ReferenceDiameter(); !almostEqual(got, 12) {
		t.Errorf("ReferenceDiameter() = %f, want 12", got)
	}
	if got := p.TipDiameter(); !almostEqual(got, 14) {
		t.Errorf("TipDiameter() = %f, want 14", got)
	}
	if got := p.RootDiameter(); !almostEqual(got, 9.5) {
		t.Errorf("RootDiameter() = %f, want 9.5", got)
	}
	if got := p.ToothDepth(); !almostEqual(got, 2.25) {
		t.Errorf("ToothDepth() = %f, want 2.25", got)
	}
	if got := p.FanVertexCount(); got != 49 {
		t.Errorf("FanVertexCount() = %d, want 49", got)
	}
}

func TestDerivedDimensionsFollowModule(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		ref    float64
		tip    float64
		root   float64
		depth  float64
	}{
		{"module 2", Params{TeethCount: 20, Resolution: 2, Module: 2, Thickness: 1}, 40, 44, 35, 4.5},
		{"module 0.5", Params{TeethCount: 30, Resolution: 6, Module: 0.5, Thickness: 1}, 15, 16, 13.75, 1.125},
		{"degenerate root", Params{TeethCount: 2, Resolution: 2, Module: 1, Thickness: 1}, 2, 4, -0.5, 2.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.params
			if !almostEqual(p.ReferenceDiameter(), tt.ref) {
				t.Errorf("ReferenceDiameter() = %f, want %f", p.ReferenceDiameter(), tt.ref)
			}
			if !almostEqual(p.TipDiameter(), tt.tip) {
				t.Errorf("TipDiameter() = %f, want %f", p.TipDiameter(), tt.tip)
			}
			if !almostEqual(p.RootDiameter(), tt.root) {
				t.Errorf("RootDiameter() = %f, want %f", p.RootDiameter(), tt.root)
			}
			if !almostEqual(p.ToothDepth(), tt.depth) {
				t.Errorf("ToothDepth() = %f, want %f", p.ToothDepth(), tt.depth)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := Params{TeethCount: 12, Resolution: 4, Module: 1, Thickness: 0.5}
	b := a
	if !a.Equal(b) {
		t.Error("identical params should be equal")
	}
	b.Thickness = 0.75
	if a.Equal(b) {
		t.Error("params differing in thickness should not be equal")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr []string
	}{
		{
			name:   "valid",
			params: Params{TeethCount: 12, Resolution: 4, Module: 1, Thickness: 0.5},
		},
		{
			name:    "too few teeth",
			params:  Params{TeethCount: 2, Resolution: 4, Module: 1, Thickness: 0.5},
			wantErr: []string{"TeethCount"},
		},
		{
			name:    "odd resolution",
			params:  Params{TeethCount: 12, Resolution: 5, Module: 1, Thickness: 0.5},
			wantErr: []string{"Resolution", "even"},
		},
		{
			name:    "non-positive module and thickness",
			params:  Params{TeethCount: 12, Resolution: 4, Module: 0, Thickness: -1},
			wantErr: []string{"Module", "Thickness"},
		},
		{
			name:   "smallest valid gear",
			params: Params{TeethCount: 3, Resolution: 2, Module: 1, Thickness: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}
