package pantry

import (
	"strconv"
	"strings"
)

// CodingKey identifies a field by name, or an element by index.
type CodingKey struct {
	Name    string
	Index   int
	indexed bool
}

// NameKey returns a key addressing a named field.
func NameKey(name string) CodingKey {
	return CodingKey{Name: name}
}

// IndexKey returns a key addressing a sequence element.
func IndexKey(i int) CodingKey {
	return CodingKey{Index: i, indexed: true}
}

// IsIndex reports whether k addresses an element by index.
func (k CodingKey) IsIndex() bool { return k.indexed }

func (k CodingKey) String() string {
	if k.indexed {
		return "[" + strconv.Itoa(k.Index) + "]"
	}
	return k.Name
}

// Path is the ordered list of keys from the encoding root to the current
// position, outermost first.
type Path []CodingKey

// Last returns the innermost key.
func (p Path) Last() (CodingKey, bool) {
	if len(p) == 0 {
		return CodingKey{}, false
	}
	return p[len(p)-1], true
}

// Names returns the path rendered key by key.
func (p Path) Names() []string {
	names := make([]string, len(p))
	for i, k := range p {
		names[i] = k.String()
	}
	return names
}

func (p Path) String() string {
	var b strings.Builder
	for i, k := range p {
		if i > 0 && !k.indexed {
			b.WriteByte('.')
		}
		b.WriteString(k.String())
	}
	return b.String()
}
