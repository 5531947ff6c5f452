package sketch

import (
	"github.com/chazu/linea/pkg/naming"
)

// ElementName resolves an element name through the stable name map,
// rebuilt from the current geometry. Construction geometry (internal
// alignment helpers included) is absent from the exported shape and so
// carries no element name. See the naming package for the name forms.
func (s *Sketch) ElementName(name string, mode naming.Mode) (newName, oldName string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namesLocked().GetElementName(name, mode)
}

func (s *Sketch) namesLocked() *naming.Table {
	entries := make([]naming.Entry, 0, len(s.geometry))
	for _, e := range s.geometry {
		if e.Common().Construction {
			continue
		}
		entries = append(entries, naming.Entry{Id: e.Common().Id, Vertices: VertexCount(e)})
	}
	t := naming.NewTable()
	t.Rebuild(entries)
	return t
}
