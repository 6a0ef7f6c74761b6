package main

import (
	"context"
	"os"
	"testing"

	"github.com/chazu/gearwright/pkg/config"
)

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *App {
	t.Helper()
	c := config.Default()
	for _, m := range mutate {
		m(c)
	}
	app, err := NewApp(c, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return app
}

// TestE2ETrainExample exercises the full pipeline: script, engine, train,
// tessellate, meshes.
func TestE2ETrainExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/train.gear")
	if err != nil {
		t.Fatalf("failed to read train.gear: %v", err)
	}

	result := app.Evaluate(context.Background(), string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	// The closing edge output -> driver is rejected.
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
	if got := len(result.Train.Edges()); got != 3 {
		t.Errorf("expected 3 edges, got %d", got)
	}

	expected := map[string]string{
		"driver": "#8899AA",
		"idler":  "#B5A642",
		"output": "#8899AA",
		"side":   "#B5A642",
	}
	if len(result.Meshes) != len(expected) {
		t.Fatalf("expected %d meshes, got %d", len(expected), len(result.Meshes))
	}
	for _, m := range result.Meshes {
		color, ok := expected[m.PartName]
		if !ok {
			t.Errorf("unexpected part name: %q", m.PartName)
			continue
		}
		if m.Color != color {
			t.Errorf("part %q: color %s, want %s", m.PartName, m.Color, color)
		}
		if len(m.Vertices) == 0 || len(m.Normals) != len(m.Vertices) || len(m.Indices) == 0 {
			t.Errorf("part %q: vertices=%d normals=%d indices=%d",
				m.PartName, len(m.Vertices), len(m.Normals), len(m.Indices))
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), "")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if result.Meshes == nil || result.Errors == nil || result.Warnings == nil {
		t.Error("result slices should be non-nil so JSON encodes []")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(gear "a"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
	if result.Train != nil {
		t.Error("Train should be nil on error")
	}
}

// TestE2ESingleGear ensures a one-gear script renders one mesh of the
// expected size.
func TestE2ESingleGear(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(gear "pinion" :teeth 12 :resolution 4)`)

	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	m := result.Meshes[0]
	if m.PartName != "pinion" {
		t.Errorf("expected part name 'pinion', got %q", m.PartName)
	}
	if len(m.Vertices) != 98*3 {
		t.Errorf("expected %d floats, got %d", 98*3, len(m.Vertices))
	}
	if len(m.Indices) != 192*3 {
		t.Errorf("expected %d indices, got %d", 192*3, len(m.Indices))
	}
}

func TestNewAppRejectsBadModes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"propagation", func(c *config.Config) { c.Simulation.Propagation = "sideways" }},
		{"export mode", func(c *config.Config) { c.Export.Mode = "raytraced" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.mutate(c)
			if _, err := NewApp(c, nil); err == nil {
				t.Error("NewApp() error = nil, want error")
			}
		})
	}
}
