package sketch

import (
	"github.com/chazu/linea/pkg/expr"
)

// Dimensional expressions. A constraint's expression, when set, is the
// authoritative source of its value; redundant whole-expression
// parentheses are normalized away on write.

// SetConstraintExpression binds an expression to the constraint at
// index and refreshes its value from it.
func (s *Sketch) SetConstraintExpression(index int, expression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.constraints) {
		return indexErr("set constraint expression", index)
	}
	stripped := expr.StripOuterParens(expression)
	v, err := expr.Evaluate(stripped)
	if err != nil {
		return valueErr("set constraint expression", "%v", err)
	}
	c := s.constraints[index]
	c.Expression = stripped
	c.Value = v
	return nil
}

// ConstraintExpression returns the expression bound to the constraint
// at index, empty when the value was set directly.
func (s *Sketch) ConstraintExpression(index int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.constraints) {
		return "", indexErr("constraint expression", index)
	}
	return s.constraints[index].Expression, nil
}

// ReverseAngleConstraintToSupplementary flips an angle constraint to
// the supplementary angle, used when a curve edit inverts an arc's
// direction. The expression, when present, is rewritten so reversing
// twice recovers the original.
func (s *Sketch) ReverseAngleConstraintToSupplementary(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.constraints) {
		return indexErr("reverse angle constraint", index)
	}
	c := s.constraints[index]
	if c.Type != Angle {
		return valueErr("reverse angle constraint", "constraint %d is %s, not an angle", index, c.Type)
	}
	if c.Expression != "" {
		reversed := expr.StripOuterParens(expr.ReverseAngleExpression(c.Expression))
		if v, err := expr.Evaluate(reversed); err == nil {
			c.Value = v
		} else {
			c.Value = 180 - c.Value
		}
		c.Expression = reversed
		return nil
	}
	c.Value = 180 - c.Value
	return nil
}
