package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/kernel/eto"
	"github.com/chazu/toroid/pkg/kernel/tor"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// session is the state one evaluation's builtins share.
type session struct {
	engine *Engine
	result *Result
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpRay wraps a kernel.Ray.
type sexpRay struct {
	ray kernel.Ray
}

func (r *sexpRay) SexpString(ps *zygo.PrintState) string {
	o, d := r.ray.Origin, r.ray.Dir
	return fmt.Sprintf("(ray (vec3 %g %g %g) (vec3 %g %g %g))", o.X, o.Y, o.Z, d.X, d.Y, d.Z)
}
func (r *sexpRay) Type() *zygo.RegisteredType { return nil }

// sexpPrim refers to a primitive already added to the scene.
type sexpPrim struct {
	name string
	kind string
}

func (p *sexpPrim) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", p.kind, p.name)
}
func (p *sexpPrim) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A keyword
// with nothing after it is recorded with SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		switch {
		case !ok:
			result.positional = append(result.positional, args[i])
		case i+1 < len(args):
			result.kw[name] = args[i+1]
			i++
		default:
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// arg returns the keyword value for name, falling back to the positional
// argument at index pos (pos < 0 disables the fallback).
func (a kwArgs) arg(name string, pos int) (zygo.Sexp, bool) {
	if v, ok := a.kw[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(a.positional) {
		return a.positional[pos], true
	}
	return nil, false
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

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toRay(s zygo.Sexp) (kernel.Ray, error) {
	if r, ok := s.(*sexpRay); ok {
		return r.ray, nil
	}
	return kernel.Ray{}, fmt.Errorf("expected ray, got %T (%s)", s, s.SexpString(nil))
}

// toBool treats a bare trailing keyword (SexpNull) as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toPrimName accepts either a name string or a primitive reference.
func toPrimName(s zygo.Sexp) (string, error) {
	if p, ok := s.(*sexpPrim); ok {
		return p.name, nil
	}
	name, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected primitive name or reference: %w", err)
	}
	return name, nil
}

// vecArg reads an optional vec3 argument, returning def when absent.
func vecArg(a kwArgs, name string, pos int, def v3.Vec) (v3.Vec, error) {
	s, ok := a.arg(name, pos)
	if !ok {
		return def, nil
	}
	v, err := toVec3(s)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// numArg reads a required numeric argument.
func numArg(a kwArgs, name string, pos int) (float64, error) {
	s, ok := a.arg(name, pos)
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	f, err := toFloat64(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the toroid builtins into env. Every builtin
// writes into sess.result.
//
// Source must go through preprocessSource first so :keyword tokens reach
// the builtins as recognisable strings.
func registerBuiltins(env *zygo.Zlisp, sess *session) {
	sc := sess.result.Scene

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (torus "ring" :at (vec3 0 0 0) :normal (vec3 0 0 1) :r1 10 :r2 2)
	// -----------------------------------------------------------------------
	env.AddFunction("torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("torus requires a name")
		}
		primName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: name: %w", err)
		}

		at, err := vecArg(pa, "at", -1, v3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus %q: %w", primName, err)
		}
		normal, err := vecArg(pa, "normal", -1, v3.Vec{Z: 1})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus %q: %w", primName, err)
		}
		r1, err := numArg(pa, "r1", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus %q: %w", primName, err)
		}
		r2, err := numArg(pa, "r2", 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus %q: %w", primName, err)
		}

		prim, err := tor.Prep(tor.New(at, normal, r1, r2), sess.engine.kopts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus %q: %w", primName, err)
		}
		if err := sc.Add(primName, prim); err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}
		return &sexpPrim{name: primName, kind: "torus"}, nil
	})

	// -----------------------------------------------------------------------
	// (ell-torus "oval" :at v :normal n :c (vec3 2 0 2) :r 10 :rd 1)
	//
	// Registered as ell_torus; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("ell_torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("ell-torus requires a name")
		}
		primName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus: name: %w", err)
		}

		at, err := vecArg(pa, "at", -1, v3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: %w", primName, err)
		}
		normal, err := vecArg(pa, "normal", -1, v3.Vec{Z: 1})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: %w", primName, err)
		}
		if _, ok := pa.kw["c"]; !ok {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: c is required", primName)
		}
		c, err := vecArg(pa, "c", -1, v3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: %w", primName, err)
		}
		r, err := numArg(pa, "r", -1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: %w", primName, err)
		}
		rd, err := numArg(pa, "rd", -1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: %w", primName, err)
		}

		prim, err := eto.Prep(eto.New(at, normal, c, r, rd), sess.engine.kopts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus %q: %w", primName, err)
		}
		if err := sc.Add(primName, prim); err != nil {
			return zygo.SexpNull, fmt.Errorf("ell-torus: %w", err)
		}
		return &sexpPrim{name: primName, kind: "ell-torus"}, nil
	})

	// -----------------------------------------------------------------------
	// (ray (vec3 0 0 50) (vec3 0 0 -1)) or (ray :from v :dir d)
	// -----------------------------------------------------------------------
	env.AddFunction("ray", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if _, ok := pa.arg("dir", 1); !ok {
			return zygo.SexpNull, fmt.Errorf("ray requires an origin and a direction")
		}
		from, err := vecArg(pa, "from", 0, v3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ray: %w", err)
		}
		dir, err := vecArg(pa, "dir", 1, v3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ray: %w", err)
		}
		if dir.Length() < kernel.RadiusEps {
			return zygo.SexpNull, fmt.Errorf("ray: direction has zero length")
		}
		return &sexpRay{ray: kernel.NewRay(from, dir)}, nil
	})

	// -----------------------------------------------------------------------
	// (shoot r) -> number of segments hit
	// -----------------------------------------------------------------------
	env.AddFunction("shoot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shoot requires exactly 1 argument, got %d", len(args))
		}
		r, err := toRay(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shoot: %w", err)
		}
		res := sc.Shoot(r)
		sess.result.Shots = append(sess.result.Shots, res)
		return &zygo.SexpInt{Val: int64(len(res.Hits))}, nil
	})

	// -----------------------------------------------------------------------
	// (describe "ring") or (describe ring-ref :verbose true)
	// -----------------------------------------------------------------------
	env.AddFunction("describe", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("describe requires a primitive")
		}
		primName, err := toPrimName(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("describe: %w", err)
		}
		verbose := false
		if v, ok := pa.kw["verbose"]; ok {
			if verbose, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("describe: verbose: %w", err)
			}
		}

		e := sc.Lookup(primName)
		if e == nil {
			return zygo.SexpNull, fmt.Errorf("describe: no primitive named %q", primName)
		}
		text, err := sess.engine.Describe(e.Prim, verbose)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("describe %q: %w", primName, err)
		}
		sess.result.Descriptions = append(sess.result.Descriptions, text)
		return &zygo.SexpStr{S: text}, nil
	})
}

// Describe renders p with the engine's locale and display units.
func (e *Engine) Describe(p kernel.Primitive, verbose bool) (string, error) {
	switch prim := p.(type) {
	case *tor.Torus:
		return tor.Describe(prim.Params(), verbose, e.mm2local, e.locale), nil
	case *eto.EllTorus:
		return eto.Describe(prim.Params(), verbose, e.mm2local, e.locale), nil
	}
	return "", fmt.Errorf("no description for kind %q", p.Kind())
}
