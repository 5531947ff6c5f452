package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/linea/pkg/geom"
	"github.com/chazu/linea/pkg/sketch"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Linea Lisp source code before passing it
// to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: join-curves -> join_curves
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpGeoRef wraps a geometry id so builtins can hand elements to each
// other without the script knowing the numbering.
type sexpGeoRef struct {
	geoId int
}

func (r *sexpGeoRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(geo %d)", r.geoId)
}
func (r *sexpGeoRef) Type() *zygo.RegisteredType { return nil }

// sexpConstraintRef wraps a constraint index.
type sexpConstraintRef struct {
	index int
}

func (r *sexpConstraintRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(constraint %d)", r.index)
}
func (r *sexpConstraintRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_start) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toPointPos converts a keyword to a vertex position.
func toPointPos(s zygo.Sexp) (sketch.PointPos, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return sketch.PosNone, fmt.Errorf("expected position keyword (:start, :end, :mid, :none): %w", err)
	}
	switch name {
	case "start":
		return sketch.PosStart, nil
	case "end":
		return sketch.PosEnd, nil
	case "mid":
		return sketch.PosMid, nil
	case "none":
		return sketch.PosNone, nil
	}
	return sketch.PosNone, fmt.Errorf("invalid position %q, expected start, end, mid, or none", name)
}

// toGeoId extracts a geometry id from a sexpGeoRef or a plain integer,
// so scripts can also address the frame ids (-1, -2) directly.
func toGeoId(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *sexpGeoRef:
		return v.geoId, nil
	case *zygo.SexpInt:
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected geometry reference, got %T (%s)", s, s.SexpString(nil))
}

// toConstraintIndex extracts a constraint index from a sexpConstraintRef
// or a plain integer.
func toConstraintIndex(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *sexpConstraintRef:
		return v.index, nil
	case *zygo.SexpInt:
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected constraint reference, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPole reads a 2-element number list as a control point.
func toPole(s zygo.Sexp) (v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return v3.Vec{}, err
	}
	if len(items) != 2 {
		return v3.Vec{}, fmt.Errorf("expected (x y) pair, got %d elements", len(items))
	}
	x, err := toFloat64(items[0])
	if err != nil {
		return v3.Vec{}, err
	}
	y, err := toFloat64(items[1])
	if err != nil {
		return v3.Vec{}, err
	}
	return v3.Vec{X: x, Y: y}, nil
}

// floats pulls n leading numeric arguments.
func floats(op string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%s requires %d numeric arguments, got %d", op, n, len(args))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := toFloat64(args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", op, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// uniformKnots builds a uniform knot vector for n poles of the given
// degree: clamped ends for open curves, all-simple knots for periodic.
func uniformKnots(n, degree int, periodic bool) (knots []float64, mults []int, err error) {
	if periodic {
		for i := 0; i <= n; i++ {
			knots = append(knots, float64(i))
			mults = append(mults, 1)
		}
		return knots, mults, nil
	}
	if n < degree+1 {
		return nil, nil, fmt.Errorf("need at least %d poles for degree %d, got %d", degree+1, degree, n)
	}
	spans := n - degree
	for i := 0; i <= spans; i++ {
		knots = append(knots, float64(i))
		m := 1
		if i == 0 || i == spans {
			m = degree + 1
		}
		mults = append(mults, m)
	}
	return knots, mults, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// applyCommon handles the keyword flags shared by the geometry builtins.
func applyCommon(op string, e geom.Element, pa kwArgs) error {
	if v, ok := pa.kw["construction"]; ok {
		c, err := toBool(v)
		if err != nil {
			return fmt.Errorf("%s: construction: %w", op, err)
		}
		e.Common().Construction = c
	}
	return nil
}

// registerBuiltins installs the Linea DSL builtins into a zygomys
// environment. The builtins operate on the provided sketch, populating
// it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, sk *sketch.Sketch) {

	addElement := func(op string, e geom.Element, pa kwArgs, external bool) (zygo.Sexp, error) {
		if err := applyCommon(op, e, pa); err != nil {
			return zygo.SexpNull, err
		}
		if external {
			return &sexpGeoRef{geoId: sk.AddExternal(e)}, nil
		}
		return &sexpGeoRef{geoId: sk.AddGeometry(e)}, nil
	}

	// -----------------------------------------------------------------------
	// (point 10 20)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("point", pa.positional, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return addElement("point", geom.NewPoint(f[0], f[1]), pa, false)
	})

	// -----------------------------------------------------------------------
	// (line 0 0 100 0)  /  (line 0 0 100 0 :construction true)
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("line", pa.positional, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		l := geom.NewLineSegment(v3.Vec{X: f[0], Y: f[1]}, v3.Vec{X: f[2], Y: f[3]})
		return addElement("line", l, pa, false)
	})

	// -----------------------------------------------------------------------
	// (external-line 0 0 100 0): a fixed reference edge from outside the
	// sketch, addressed by a negative id.
	// -----------------------------------------------------------------------
	env.AddFunction("external_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("external-line", pa.positional, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		l := geom.NewLineSegment(v3.Vec{X: f[0], Y: f[1]}, v3.Vec{X: f[2], Y: f[3]})
		l.Construction = true
		return addElement("external-line", l, pa, true)
	})

	// -----------------------------------------------------------------------
	// (circle 50 50 20)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("circle", pa.positional, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return addElement("circle", geom.NewCircle(v3.Vec{X: f[0], Y: f[1]}, f[2]), pa, false)
	})

	// -----------------------------------------------------------------------
	// (arc 0 0 20 0.0 1.57): center, radius, start and end angle.
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("arc", pa.positional, 5)
		if err != nil {
			return zygo.SexpNull, err
		}
		a := geom.NewArcOfCircle(v3.Vec{X: f[0], Y: f[1]}, f[2], f[3], f[4])
		return addElement("arc", a, pa, false)
	})

	// -----------------------------------------------------------------------
	// (ellipse 0 0 30 20 :rotation 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("ellipse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("ellipse", pa.positional, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		e := geom.NewEllipse(v3.Vec{X: f[0], Y: f[1]}, f[2], f[3])
		if v, ok := pa.kw["rotation"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipse: rotation: %w", err)
			}
			e.AngleXU = r
		}
		return addElement("ellipse", e, pa, false)
	})

	// -----------------------------------------------------------------------
	// (arc-of-ellipse 0 0 30 20 0.0 2.0 :rotation 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("arc_of_ellipse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := floats("arc-of-ellipse", pa.positional, 6)
		if err != nil {
			return zygo.SexpNull, err
		}
		a := geom.NewArcOfEllipse(v3.Vec{X: f[0], Y: f[1]}, f[2], f[3], f[4], f[5])
		if v, ok := pa.kw["rotation"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("arc-of-ellipse: rotation: %w", err)
			}
			a.AngleXU = r
		}
		return addElement("arc-of-ellipse", a, pa, false)
	})

	// -----------------------------------------------------------------------
	// (bspline [0 0] [10 20] [20 20] [30 0] :degree 3 :periodic false)
	// Control points as [x y] pairs; a uniform knot vector is generated.
	// -----------------------------------------------------------------------
	env.AddFunction("bspline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		degree := 3
		periodic := false
		if v, ok := pa.kw["degree"]; ok {
			d, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: degree: %w", err)
			}
			degree = d
		}
		if v, ok := pa.kw["periodic"]; ok {
			p, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: periodic: %w", err)
			}
			periodic = p
		}

		var poles []v3.Vec
		for i, arg := range pa.positional {
			p, err := toPole(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: pole %d: %w", i+1, err)
			}
			poles = append(poles, p)
		}
		weights := make([]float64, len(poles))
		for i := range weights {
			weights[i] = 1
		}

		knots, mults, err := uniformKnots(len(poles), degree, periodic)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bspline: %w", err)
		}
		b, err := geom.NewBSplineCurve(poles, weights, knots, mults, degree, periodic)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bspline: %w", err)
		}
		return addElement("bspline", b, pa, false)
	})

	// -----------------------------------------------------------------------
	// Constraints.
	// (coincident a :end b :start)
	// -----------------------------------------------------------------------
	addPointPair := func(op string, t sketch.ConstraintType) {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 4 {
				return zygo.SexpNull, fmt.Errorf("%s requires geo, pos, geo, pos", op)
			}
			g1, err := toGeoId(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			p1, err := toPointPos(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			g2, err := toGeoId(args[2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			p2, err := toPointPos(args[3])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			c := sketch.NewConstraint(t)
			c.First = g1
			c.FirstPos = p1
			c.Second = g2
			c.SecondPos = p2
			idx, err := sk.AddConstraint(c)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpConstraintRef{index: idx}, nil
		})
	}
	addPointPair("coincident", sketch.Coincident)
	addPointPair("symmetric", sketch.Symmetric)

	// (point-on-object a :start b)
	env.AddFunction("point_on_object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("point-on-object requires geo, pos, geo")
		}
		g1, err := toGeoId(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point-on-object: %w", err)
		}
		p1, err := toPointPos(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point-on-object: %w", err)
		}
		g2, err := toGeoId(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point-on-object: %w", err)
		}
		c := sketch.NewConstraint(sketch.PointOnObject)
		c.First = g1
		c.FirstPos = p1
		c.Second = g2
		idx, err := sk.AddConstraint(c)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point-on-object: %w", err)
		}
		return &sexpConstraintRef{index: idx}, nil
	})

	// Edge pair constraints: (tangent a b), (parallel a b), ...
	addEdgePair := func(op string, t sketch.ConstraintType) {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires two geometry references", op)
			}
			g1, err := toGeoId(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			g2, err := toGeoId(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			c := sketch.NewConstraint(t)
			c.First = g1
			c.Second = g2
			idx, err := sk.AddConstraint(c)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpConstraintRef{index: idx}, nil
		})
	}
	addEdgePair("tangent", sketch.Tangent)
	addEdgePair("parallel", sketch.Parallel)
	addEdgePair("perpendicular", sketch.Perpendicular)
	addEdgePair("equal", sketch.Equal)

	// Single edge constraints: (horizontal a), (vertical a), (block a).
	addSingle := func(op string, t sketch.ConstraintType) {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a geometry reference", op)
			}
			g, err := toGeoId(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			c := sketch.NewConstraint(t)
			c.First = g
			idx, err := sk.AddConstraint(c)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpConstraintRef{index: idx}, nil
		})
	}
	addSingle("horizontal", sketch.Horizontal)
	addSingle("vertical", sketch.Vertical)
	addSingle("block", sketch.Block)

	// Dimensional constraints: (angle a b 45), (radius a 20 :name "r1"),
	// (angle a b :expression "180 - (60)").
	addDimension := func(op string, t sketch.ConstraintType, refs int) {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) < refs {
				return zygo.SexpNull, fmt.Errorf("%s requires %d geometry references", op, refs)
			}
			c := sketch.NewConstraint(t)
			g, err := toGeoId(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			c.First = g
			if refs > 1 {
				g2, err := toGeoId(pa.positional[1])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
				}
				c.Second = g2
			}
			if len(pa.positional) > refs {
				v, err := toFloat64(pa.positional[refs])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: value: %w", op, err)
				}
				c.Value = v
			}
			if v, ok := pa.kw["name"]; ok {
				n, err := toString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: name: %w", op, err)
				}
				c.Name = n
			}
			idx, err := sk.AddConstraint(c)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			if v, ok := pa.kw["expression"]; ok {
				e, err := toString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: expression: %w", op, err)
				}
				if err := sk.SetConstraintExpression(idx, e); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
				}
			}
			return &sexpConstraintRef{index: idx}, nil
		})
	}
	addDimension("angle", sketch.Angle, 2)
	addDimension("distance", sketch.Distance, 2)
	addDimension("radius", sketch.Radius, 1)
	addDimension("diameter", sketch.Diameter, 1)

	// -----------------------------------------------------------------------
	// Curve edits.
	// (split g 10 0), (trim g 10 0)
	// -----------------------------------------------------------------------
	addCurveEdit := func(op string, do func(geoId int, p v3.Vec) error) {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("%s requires geo, x, y", op)
			}
			g, err := toGeoId(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			f, err := floats(op, args[1:], 2)
			if err != nil {
				return zygo.SexpNull, err
			}
			if err := do(g, v3.Vec{X: f[0], Y: f[1]}); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return zygo.SexpNull, nil
		})
	}
	addCurveEdit("split", sk.Split)
	addCurveEdit("trim", sk.Trim)

	// (join-curves a :end b :start :continuity 1)
	env.AddFunction("join_curves", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 4 {
			return zygo.SexpNull, fmt.Errorf("join-curves requires geo, pos, geo, pos")
		}
		g1, err := toGeoId(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join-curves: %w", err)
		}
		p1, err := toPointPos(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join-curves: %w", err)
		}
		g2, err := toGeoId(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join-curves: %w", err)
		}
		p2, err := toPointPos(pa.positional[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join-curves: %w", err)
		}
		continuity := 1
		if v, ok := pa.kw["continuity"]; ok {
			c, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("join-curves: continuity: %w", err)
			}
			continuity = c
		}
		if err := sk.JoinCurves(g1, p1, g2, p2, continuity); err != nil {
			return zygo.SexpNull, fmt.Errorf("join-curves: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (expose g) -> number of helper elements added
	env.AddFunction("expose", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("expose requires a geometry reference")
		}
		g, err := toGeoId(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("expose: %w", err)
		}
		n, err := sk.ExposeInternalGeometry(g)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("expose: %w", err)
		}
		return &zygo.SexpInt{Val: int64(n)}, nil
	})

	// (cleanup g) removes the unused helpers of g.
	env.AddFunction("cleanup", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cleanup requires a geometry reference")
		}
		g, err := toGeoId(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cleanup: %w", err)
		}
		if err := sk.DeleteUnusedInternalGeometry(g); err != nil {
			return zygo.SexpNull, fmt.Errorf("cleanup: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (delete g)
	env.AddFunction("delete", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("delete requires a geometry reference")
		}
		g, err := toGeoId(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		if err := sk.DelGeometry(g); err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (modify-knot g 2 1) changes a knot's multiplicity by a delta.
	env.AddFunction("modify_knot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("modify-knot requires geo, knot index, delta")
		}
		g, err := toGeoId(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("modify-knot: %w", err)
		}
		idx, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("modify-knot: %w", err)
		}
		delta, err := toInt(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("modify-knot: %w", err)
		}
		if err := sk.ModifyBSplineKnotMultiplicity(g, idx, delta); err != nil {
			return zygo.SexpNull, fmt.Errorf("modify-knot: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (insert-knot g 0.5 1)
	env.AddFunction("insert_knot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("insert-knot requires geo, parameter, multiplicity")
		}
		g, err := toGeoId(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-knot: %w", err)
		}
		param, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-knot: %w", err)
		}
		mult, err := toInt(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-knot: %w", err)
		}
		if err := sk.InsertBSplineKnot(g, param, mult); err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-knot: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (set-expression c "180 - (60)")
	env.AddFunction("set_expression", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("set-expression requires a constraint and a string")
		}
		idx, err := toConstraintIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-expression: %w", err)
		}
		e, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-expression: %w", err)
		}
		if err := sk.SetConstraintExpression(idx, e); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-expression: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (reverse-angle c)
	env.AddFunction("reverse_angle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("reverse-angle requires a constraint reference")
		}
		idx, err := toConstraintIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reverse-angle: %w", err)
		}
		if err := sk.ReverseAngleConstraintToSupplementary(idx); err != nil {
			return zygo.SexpNull, fmt.Errorf("reverse-angle: %w", err)
		}
		return zygo.SexpNull, nil
	})
}
