package main

import (
	"context"

	"github.com/chazu/gearwright/pkg/config"
	"github.com/chazu/gearwright/pkg/engine"
	"github.com/chazu/gearwright/pkg/kernel/sdfx"
	"github.com/chazu/gearwright/pkg/tessellate"
	"github.com/chazu/gearwright/pkg/train"
	"go.uber.org/zap"
)

// App runs gear scripts end to end: evaluate, then tessellate.
type App struct {
	engine *engine.Engine
	opts   tessellate.Options
	log    *zap.Logger
}

// MeshData is the JSON-serializable mesh format written by the build
// command.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one script run. Train is nil whenever
// Errors is non-empty.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Train    *train.Train    `json:"-"`
}

// NewApp creates an App from configuration. Train warnings are forwarded to
// log.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mode, err := train.ParsePropagationMode(cfg.Simulation.Propagation)
	if err != nil {
		return nil, err
	}
	tmode, err := tessellate.ParseMode(cfg.Export.Mode)
	if err != nil {
		return nil, err
	}

	opts := tessellate.Options{Mode: tmode, Parallelism: cfg.Export.Parallelism}
	if tmode == tessellate.Reference {
		opts.Kernel = sdfx.NewWithCells(cfg.Export.Cells)
	}

	return &App{
		engine: engine.NewEngine(
			engine.WithDefaults(cfg.Defaults),
			engine.WithPropagation(mode),
			engine.WithDiagnostics(log.Sugar()),
		),
		opts: opts,
		log:  log,
	}, nil
}

// Evaluate takes gear script source and returns mesh data and diagnostics.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a gear train.
	res, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	result.Train = res.Train

	// Step 2: Tessellate every gear at its pose.
	meshes, err := tessellate.Tessellate(ctx, res.Train, a.opts)
	if err != nil {
		a.log.Error("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		result.Train = nil
		return result
	}

	// Step 3: Colour each mesh from its gear's material.
	nodes := res.Train.Nodes()
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    nodes[i].Material.Color,
		})
	}

	return result
}
