package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/chazu/gearwright/pkg/inspect"
	"github.com/chazu/gearwright/pkg/kernel"
	"github.com/chazu/gearwright/pkg/logger"
	"github.com/chazu/gearwright/pkg/preview"
	"github.com/chazu/gearwright/pkg/train"
	"github.com/chazu/gearwright/pkg/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outDir       string
	outFormat    string
	previewOut   string
	simTicks     int
	inspectGear  string
	inspectTeeth int
	inspectRes   int
	inspectMod   float64
	inspectThick float64

	buildCmd = &cobra.Command{
		Use:   "build [script]",
		Short: "Evaluate a gear script and export one mesh per gear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cfg, logger.Log)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), app, args[0], cmd.OutOrStdout())
		},
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate [script]",
		Short: "Run the drive simulation and print gear angles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cfg, logger.Log)
			if err != nil {
				return err
			}
			t, err := evaluateFile(cmd.Context(), app, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ticks := cfg.Simulation.Ticks
			if cmd.Flags().Changed("ticks") {
				ticks = simTicks
			}
			return simulate(t, ticks, cfg.Simulation.TickStep(), cmd.OutOrStdout())
		},
	}

	previewCmd = &cobra.Command{
		Use:   "preview [script]",
		Short: "Render a top-down PNG of the gear train",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cfg, logger.Log)
			if err != nil {
				return err
			}
			t, err := evaluateFile(cmd.Context(), app, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := previewOut
			if out == "" {
				out = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + ".png"
			}
			opts := preview.Options{Width: cfg.Preview.Width, Height: cfg.Preview.Height, Margin: cfg.Preview.Margin}
			if err := preview.SavePNG(out, t, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch [script]",
		Short: "Rebuild whenever the gear script changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect [script]",
		Short: "Show one gear's parameters, dimensions and chain",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	buildCmd.Flags().StringVar(&outFormat, "format", "", "export format: stl or json (default from config)")
	simulateCmd.Flags().IntVarP(&simTicks, "ticks", "n", 0, "number of ticks to simulate")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "PNG path (default: script name with .png)")

	f := inspectCmd.Flags()
	f.StringVarP(&inspectGear, "gear", "g", "", "gear name (required)")
	f.IntVar(&inspectTeeth, "teeth", 0, "override tooth count")
	f.IntVar(&inspectRes, "resolution", 0, "override resolution")
	f.Float64Var(&inspectMod, "module", 0, "override module")
	f.Float64Var(&inspectThick, "thickness", 0, "override thickness")
	_ = inspectCmd.MarkFlagRequired("gear")
}

// evaluateFile runs a script and returns its train. Warnings go to w;
// script errors fail the call.
func evaluateFile(ctx context.Context, app *App, path string, w io.Writer) (*train.Train, error) {
	res, err := evaluatePath(ctx, app, path, w)
	if err != nil {
		return nil, err
	}
	return res.Train, nil
}

func evaluatePath(ctx context.Context, app *App, path string, w io.Writer) (EvalResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return EvalResult{}, fmt.Errorf("read script: %w", err)
	}
	res := app.Evaluate(ctx, string(source))
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", path, warn.Message)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			if e.Line > 0 {
				fmt.Fprintf(w, "%s:%d: %s\n", path, e.Line, e.Message)
			} else {
				fmt.Fprintf(w, "%s: %s\n", path, e.Message)
			}
		}
		return res, fmt.Errorf("%s: %d error(s)", path, len(res.Errors))
	}
	return res, nil
}

// runBuild evaluates path and writes the meshes to the export directory.
func runBuild(ctx context.Context, app *App, path string, w io.Writer) error {
	res, err := evaluatePath(ctx, app, path, w)
	if err != nil {
		return err
	}

	dir := cfg.Export.Dir
	if outDir != "" {
		dir = outDir
	}
	format := cfg.Export.Format
	if outFormat != "" {
		format = outFormat
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	switch format {
	case "json":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
		out := filepath.Join(dir, name)
		if err := writeJSON(out, res.Meshes); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s (%d gears)\n", out, len(res.Meshes))
	case "stl":
		for _, m := range res.Meshes {
			out := filepath.Join(dir, m.PartName+".stl")
			if err := writeSTL(out, m); err != nil {
				return err
			}
			fmt.Fprintf(w, "wrote %s (%d triangles)\n", out, len(m.Indices)/3)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	logger.Log.Info("build complete", zap.String("script", path), zap.Int("gears", len(res.Meshes)))
	return nil
}

func writeJSON(path string, meshes []MeshData) error {
	data, err := json.MarshalIndent(meshes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meshes: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeSTL saves one gear's mesh as binary STL.
func writeSTL(path string, m MeshData) error {
	km := &kernel.Mesh{Vertices: m.Vertices, Normals: m.Normals, Indices: m.Indices, PartName: m.PartName}
	return km.SaveSTL(path)
}

// simulate advances t by ticks steps of dt seconds and prints the final
// pose of every gear.
func simulate(t *train.Train, ticks int, dt float64, w io.Writer) error {
	for i := 0; i < ticks; i++ {
		t.Tick(dt)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GEAR\tTEETH\tDRIVEN\tANGLE\tSPEED")
	for _, n := range t.Nodes() {
		speed := 0.0
		if dt > 0 {
			speed = n.LastDelta / dt
		}
		fmt.Fprintf(tw, "%s\t%d\t%v\t%.3f\t%.3f\n", n.Name, n.Params.TeethCount, n.Driven, n.Angle, speed)
	}
	return tw.Flush()
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := NewApp(cfg, logger.Log)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	rebuild := func(path string) {
		if err := runBuild(ctx, app, path, out); err != nil {
			logger.Log.Warn("rebuild failed", zap.String("script", path), zap.Error(err))
		}
	}

	w, err := watch.New(args[0], rebuild, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger.Log))
	if err != nil {
		return err
	}
	defer w.Stop()

	rebuild(w.Path())
	if err := w.Start(ctx); err != nil {
		return err
	}
	logger.Log.Info("watching", zap.String("script", w.Path()))
	<-ctx.Done()
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	app, err := NewApp(cfg, logger.Log)
	if err != nil {
		return err
	}
	t, err := evaluateFile(cmd.Context(), app, args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return inspectGearIn(t, inspectGear, cmd.OutOrStdout())
}

// inspectGearIn applies any parameter overrides to the named gear, then
// prints its status, its chain and the train's edges.
func inspectGearIn(t *train.Train, name string, w io.Writer) error {
	id, ok := t.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown gear %q", name)
	}
	insp, err := inspect.New(t, id, inspect.WithLogger(logger.Log), inspect.WithAutoRegenerate(true))
	if err != nil {
		return err
	}

	n, err := insp.Gear()
	if err != nil {
		return err
	}
	p := n.Params
	if inspectTeeth > 0 {
		p.TeethCount = inspectTeeth
	}
	if inspectRes > 0 {
		p.Resolution = inspectRes
	}
	if inspectMod > 0 {
		p.Module = inspectMod
	}
	if inspectThick > 0 {
		p.Thickness = inspectThick
	}
	if _, err := insp.SetParams(p); err != nil {
		return err
	}

	st, err := insp.Status()
	if err != nil {
		return err
	}
	if _, err := st.WriteTo(w); err != nil {
		return err
	}

	names := make(map[train.NodeID]string)
	for _, n := range t.Nodes() {
		names[n.ID] = n.Name
	}
	if c, ok := t.ChainOf(id); ok {
		members := make([]string, len(c.Members))
		for i, m := range c.Members {
			members[i] = names[m]
		}
		fmt.Fprintf(w, "\nchain %s (valid=%v): %s\n", c.ID, c.Valid, strings.Join(members, ", "))
	} else {
		fmt.Fprintln(w, "\nnot in a chain")
	}
	for _, e := range t.Edges() {
		if e.From == id || e.To == id {
			fmt.Fprintf(w, "  %s -> %s\n", names[e.From], names[e.To])
		}
	}
	return nil
}
