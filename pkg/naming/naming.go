// Package naming maintains the stable element name map of a sketch.
// Short names (Edge1, Vertex3) are positional and shift when geometry
// is renumbered; stable names key on the element's immutable id
// (g<id>;SKT, g<id>v<j>;SKT) and survive edits. The table translates
// between the two.
package naming

import (
	"fmt"
	"strings"
)

// Suffix tags every stable name produced by the sketch element map.
const Suffix = ";SKT"

// Mode selects the direction of name resolution.
type Mode int

const (
	// ModeNormal attaches the stable history to a positional name.
	ModeNormal Mode = iota
	// ModeExport strips the history, yielding the positional name.
	ModeExport
)

// Entry describes one element for the map rebuild: its immutable id
// and how many vertices it exposes.
type Entry struct {
	Id       int64
	Vertices int
}

// Table is the bidirectional element name map.
type Table struct {
	shortToStable map[string]string
	stableToShort map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		shortToStable: map[string]string{},
		stableToShort: map[string]string{},
	}
}

// Rebuild regenerates both directions from the current element list.
// Edges number from 1 in list order; vertices number consecutively
// across all elements.
func (t *Table) Rebuild(entries []Entry) {
	t.shortToStable = make(map[string]string, len(entries)*2)
	t.stableToShort = make(map[string]string, len(entries)*2)
	vertex := 0
	for i, e := range entries {
		short := fmt.Sprintf("Edge%d", i+1)
		stable := fmt.Sprintf("g%d%s", e.Id, Suffix)
		t.shortToStable[short] = stable
		t.stableToShort[stable] = short
		for j := 0; j < e.Vertices; j++ {
			vertex++
			vshort := fmt.Sprintf("Vertex%d", vertex)
			vstable := fmt.Sprintf("g%dv%d%s", e.Id, j+1, Suffix)
			t.shortToStable[vshort] = vstable
			t.stableToShort[vstable] = vshort
		}
	}
}

// GetElementName resolves name in either form. ModeNormal returns the
// full stable name (";g<id>;SKT.Edge1") plus the positional name;
// ModeExport returns the positional name twice. Unknown names come
// back empty with the input as the old name.
func (t *Table) GetElementName(name string, mode Mode) (newName, oldName string) {
	short, stable := t.resolve(name)
	if short == "" {
		return "", name
	}
	if mode == ModeExport {
		return short, short
	}
	return ";" + stable + "." + short, short
}

// resolve accepts a positional name, a bare stable name, or a full
// stable name with the positional part appended.
func (t *Table) resolve(name string) (short, stable string) {
	if s, ok := t.shortToStable[name]; ok {
		return name, s
	}
	trimmed := strings.TrimPrefix(name, ";")
	if i := strings.Index(trimmed, "."); i >= 0 {
		trimmed = trimmed[:i]
	}
	if s, ok := t.stableToShort[trimmed]; ok {
		return s, trimmed
	}
	return "", ""
}
