// Package expr handles the dimensional expression strings attached to
// driving constraints: the supplementary-angle rewrite used when a
// curve edit flips an angle's orientation, and numeric evaluation.
package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"
)

const degPerRad = 57.29577951308232

var (
	// "180 - rest", optionally with a degree unit on the 180.
	supplementRe = regexp.MustCompile(`^180\s*(?:°|deg)?\s*-\s*(.+)$`)
	unitRe       = regexp.MustCompile(`°|\bdeg\b|\brad\b`)
	radRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*rad\b`)
	degRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:°|deg\b)`)
	numberRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ReverseAngleExpression maps an angle expression to its supplementary
// angle. An expression already of the form "180 - rest" unwraps to rest;
// anything else is wrapped as "180 - (expr)", keeping a degree unit on
// the 180 when the expression carries units.
func ReverseAngleExpression(e string) string {
	trimmed := strings.TrimSpace(e)
	if m := supplementRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	if unitRe.MatchString(e) {
		return "180 ° - (" + e + ")"
	}
	return "180 - (" + e + ")"
}

// StripOuterParens removes redundant whole-expression parentheses.
func StripOuterParens(e string) string {
	s := strings.TrimSpace(e)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		depth := 0
		wraps := true
		for i, r := range s {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(s)-1 {
					wraps = false
				}
			}
		}
		if !wraps {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// Evaluate computes the numeric value of an angle expression in
// degrees. Degree units are dropped, radian quantities converted, and
// the remaining arithmetic is handed to CEL.
func Evaluate(e string) (float64, error) {
	src := radRe.ReplaceAllString(e, "($1 * "+fmt.Sprint(degPerRad)+")")
	src = degRe.ReplaceAllString(src, "$1")
	src = strings.ReplaceAll(src, "°", "")
	// CEL refuses mixed int/double arithmetic; promote every literal.
	src = numberRe.ReplaceAllStringFunc(src, func(n string) string {
		if strings.Contains(n, ".") {
			return n
		}
		return n + ".0"
	})
	src = strings.TrimSpace(src)
	if src == "" {
		return 0, fmt.Errorf("empty expression")
	}

	env, err := cel.NewEnv()
	if err != nil {
		return 0, fmt.Errorf("expression environment: %w", err)
	}
	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return 0, fmt.Errorf("parse %q: %w", e, iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", e, err)
	}
	out, _, err := prg.Eval(cel.NoVars())
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", e, err)
	}
	switch v := out.Value().(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expression %q is not numeric (got %T)", e, out.Value())
	}
}
