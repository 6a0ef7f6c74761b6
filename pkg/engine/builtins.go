package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/gearwright/pkg/gearmesh"
	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/chazu/gearwright/pkg/train"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values between builtins
// ---------------------------------------------------------------------------

// sexpMaterial wraps a shared material reference.
type sexpMaterial struct {
	mat *train.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :name %q :color %q)", m.mat.Name, m.mat.Color)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpGear refers to a gear placed in the train.
type sexpGear struct {
	id   train.NodeID
	name string
}

func (g *sexpGear) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(gear-ref %q)", g.name)
}
func (g *sexpGear) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a position.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a keyword string and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs splits an argument list into keyword and positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt accepts integers and floats with no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toMaterial(s zygo.Sexp) (*train.Material, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.mat, nil
	}
	return nil, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// builder is the state the builtins of one evaluation share.
type builder struct {
	train     *train.Train
	defaults  geometry.Params
	materials map[string]*train.Material
}

// gearID resolves a gear reference or a gear name.
func (b *builder) gearID(s zygo.Sexp) (train.NodeID, string, error) {
	switch v := s.(type) {
	case *sexpGear:
		return v.id, v.name, nil
	case *zygo.SexpStr:
		id, ok := b.train.Lookup(v.S)
		if !ok {
			return 0, "", fmt.Errorf("no gear named %q", v.S)
		}
		return id, v.S, nil
	}
	return 0, "", fmt.Errorf("expected gear reference or name, got %T (%s)", s, s.SexpString(nil))
}

// gearParams reads the sizing keywords, falling back to the defaults.
func (b *builder) gearParams(pa kwArgs) (geometry.Params, error) {
	p := b.defaults
	ints := []struct {
		kw  string
		dst *int
	}{
		{"teeth", &p.TeethCount},
		{"resolution", &p.Resolution},
	}
	for _, f := range ints {
		if v, ok := pa.kw[f.kw]; ok {
			n, err := toInt(v)
			if err != nil {
				return p, fmt.Errorf("%s: %w", f.kw, err)
			}
			*f.dst = n
		}
	}
	floats := []struct {
		kw  string
		dst *float64
	}{
		{"module", &p.Module},
		{"thickness", &p.Thickness},
	}
	for _, f := range floats {
		if v, ok := pa.kw[f.kw]; ok {
			x, err := toFloat64(v)
			if err != nil {
				return p, fmt.Errorf("%s: %w", f.kw, err)
			}
			*f.dst = x
		}
	}
	return p, p.Validate()
}

// registerBuiltins installs the gear DSL into env. Source must go through
// preprocessSource first so keywords arrive as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (material :name "steel" :color "#8899AA")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		mat := &train.Material{Name: "unnamed", Color: train.DefaultMaterial.Color}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
			}
			mat.Name = s
		}
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: color: %w", err)
			}
			mat.Color = s
		}
		if _, _, _, err := mat.RGB(); err != nil {
			return zygo.SexpNull, err
		}

		// Materials with the same name are one shared reference.
		if existing, ok := b.materials[mat.Name]; ok {
			if existing.Color != mat.Color {
				return zygo.SexpNull, fmt.Errorf("material: %q already defined with color %s", mat.Name, existing.Color)
			}
			return &sexpMaterial{mat: existing}, nil
		}
		b.materials[mat.Name] = mat
		return &sexpMaterial{mat: mat}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (gear "name" :teeth 12 :resolution 4 :module 1 :thickness 0.5
	//       :material steel :at (vec3 0 0 0))
	// (gear "name" :teeth 24 :beside "other" :angle 90)
	// -----------------------------------------------------------------------
	env.AddFunction("gear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("gear requires a name argument")
		}
		gearName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gear: name: %w", err)
		}

		p, err := b.gearParams(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gear %q: %w", gearName, err)
		}

		mat := train.DefaultMaterial
		if v, ok := pa.kw["material"]; ok {
			if mat, err = toMaterial(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("gear %q: material: %w", gearName, err)
			}
		}

		pos, err := b.position(pa, p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gear %q: %w", gearName, err)
		}

		id, err := b.train.AddGear(gearName, p, mat, pos)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpGear{id: id, name: gearName}, nil
	})

	// -----------------------------------------------------------------------
	// (gear-ref "name")
	// -----------------------------------------------------------------------
	env.AddFunction("gear_ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("gear-ref requires a name argument")
		}
		id, gearName, err := b.gearID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gear-ref: %w", err)
		}
		return &sexpGear{id: id, name: gearName}, nil
	})

	// -----------------------------------------------------------------------
	// (connect driver driven) returns whether the edge was accepted.
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("connect requires a driver and a driven gear, got %d arguments", len(args))
		}
		from, _, err := b.gearID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: driver: %w", err)
		}
		to, _, err := b.gearID(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: driven: %w", err)
		}
		return &zygo.SexpBool{Val: b.train.Connect(from, to)}, nil
	})

	// -----------------------------------------------------------------------
	// (gear-train "a" "b" "c") connects each gear to the next and returns
	// the number of accepted edges.
	// -----------------------------------------------------------------------
	env.AddFunction("gear_train", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("gear-train requires at least two gears")
		}
		ids := make([]train.NodeID, len(args))
		for i, a := range args {
			id, _, err := b.gearID(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("gear-train: gear %d: %w", i+1, err)
			}
			ids[i] = id
		}
		accepted := 0
		for i := 1; i < len(ids); i++ {
			if b.train.Connect(ids[i-1], ids[i]) {
				accepted++
			}
		}
		return &zygo.SexpInt{Val: int64(accepted)}, nil
	})

	// -----------------------------------------------------------------------
	// (drive "a" :speed 60 :on true)
	// -----------------------------------------------------------------------
	env.AddFunction("drive", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("drive requires one gear")
		}
		id, gearName, err := b.gearID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("drive: %w", err)
		}

		on := true
		if v, ok := pa.kw["on"]; ok {
			if on, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("drive: on: %w", err)
			}
		}
		if v, ok := pa.kw["speed"]; ok {
			speed, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("drive: speed: %w", err)
			}
			if err := b.train.SetSpeed(id, speed); err != nil {
				return zygo.SexpNull, err
			}
		}
		if err := b.train.SetDriven(id, on); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpGear{id: id, name: gearName}, nil
	})
}

// position reads :at, or :beside with an optional :angle in degrees, which
// places the gear in mesh with the named neighbour.
func (b *builder) position(pa kwArgs, p geometry.Params) (v3.Vec, error) {
	if v, ok := pa.kw["at"]; ok {
		pos, err := toVec3(v)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("at: %w", err)
		}
		return pos, nil
	}

	v, ok := pa.kw["beside"]
	if !ok {
		return v3.Vec{}, nil
	}
	id, _, err := b.gearID(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("beside: %w", err)
	}
	other, err := b.train.Node(id)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("beside: %w", err)
	}

	angle := 0.0
	if a, ok := pa.kw["angle"]; ok {
		if angle, err = toFloat64(a); err != nil {
			return v3.Vec{}, fmt.Errorf("angle: %w", err)
		}
	}
	return meshedPosition(other.Position, other.Params, p, angle), nil
}

// meshedPosition returns where a gear with params p sits when meshed with a
// neighbour at centre, in direction angle (degrees) from it.
func meshedPosition(centre v3.Vec, neighbour, p geometry.Params, angle float64) v3.Vec {
	dist := gearmesh.PitchRadius(neighbour) + gearmesh.PitchRadius(p)
	rad := sdf.DtoR(angle)
	return centre.Add(v3.Vec{X: math.Cos(rad) * dist, Y: math.Sin(rad) * dist})
}
