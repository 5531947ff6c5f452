package sketch

import "fmt"

// IndexError reports a geometry or constraint reference that does not
// resolve to an existing slot.
type IndexError struct {
	Op    string
	Index int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range", e.Op, e.Index)
}

// ValueError reports an argument outside its legal range.
type ValueError struct {
	Op     string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func indexErr(op string, idx int) error     { return &IndexError{Op: op, Index: idx} }
func valueErr(op, f string, a ...any) error { return &ValueError{Op: op, Reason: fmt.Sprintf(f, a...)} }
