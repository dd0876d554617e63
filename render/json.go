package render

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/wkalt/elfsize/symtree"
)

// Map is a JSON object whose keys keep their insertion order.
type Map struct {
	keys    []string
	entries map[string]*Entry
}

// Entry is the JSON form of a tree node. Children is nil for symbols.
type Entry struct {
	Name           string  `json:"name"`
	CumulativeSize *uint64 `json:"cumulative_size"`
	Children       *Map    `json:"children,omitempty"`
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]*Entry)}
}

// Set stores entry under key. Setting an existing key replaces its entry and
// keeps its position.
func (m *Map) Set(key string, entry *Entry) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = entry
}

// Get returns the entry stored under key.
func (m *Map) Get(key string) (*Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// MarshalJSON encodes the map as an object with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key: %w", err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.entries[key])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Tree projects the tree onto nested ordered maps keyed by node label, in the
// tree's current order. Symbols smaller than minSize are omitted.
func Tree(t *symtree.SymbolTree, minSize float64) (*Map, error) {
	m := NewMap()
	if err := project(m, t.Root(), minSize); err != nil {
		return nil, err
	}
	return m, nil
}

func project(m *Map, node *symtree.Node, minSize float64) error {
	for _, child := range node.Children() {
		entry := &Entry{Name: child.Value.Label()}
		if size, ok := child.Value.CumulativeSize(); ok {
			entry.CumulativeSize = &size
		}
		switch el := child.Value.Element.(type) {
		case symtree.SymbolLeaf:
			if float64(el.Symbol.Size) < minSize {
				continue
			}
		case *symtree.PathSegment:
			entry.Children = NewMap()
			if err := project(entry.Children, child, minSize); err != nil {
				return err
			}
		default:
			return symtree.NewUnexpectedElementError(child.Value.Element)
		}
		m.Set(entry.Name, entry)
	}
	return nil
}

// JSON renders the tree as a JSON document.
func JSON(t *symtree.SymbolTree, minSize float64) ([]byte, error) {
	m, err := Tree(t, minSize)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree: %w", err)
	}
	return data, nil
}
