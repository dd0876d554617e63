package symtree

import (
	"fmt"

	"github.com/wkalt/elfsize/symbol"
)

// Kind classifies a path segment.
type Kind int

const (
	// Directory is a segment created while resolving a longer path.
	Directory Kind = iota
	// File is a segment at which at least one symbol's path terminates.
	File
	// Bucket is a fixed container that is neither directory nor file, such
	// as the orphans bucket.
	Bucket
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case File:
		return "file"
	case Bucket:
		return "bucket"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Element is the payload of a tree node. It is one of Root, PathSegment or
// SymbolLeaf.
type Element interface {
	isElement()
}

// Root is the payload of the root node. It is never rendered.
type Root struct{}

// PathSegment is one component of a source file path. After merging, Name
// may hold several joined components.
type PathSegment struct {
	Name string
	Kind Kind
}

// SymbolLeaf holds a symbol. It never has children.
type SymbolLeaf struct {
	Symbol *symbol.Symbol
}

func (Root) isElement()         {}
func (*PathSegment) isElement() {}
func (SymbolLeaf) isElement()   {}

// Entry is the value carried by every node of a SymbolTree.
type Entry struct {
	Element Element

	cumulative uint64
	sized      bool
}

// CumulativeSize returns the accumulated size of the entry's subtree and
// whether it has been computed.
func (e *Entry) CumulativeSize() (uint64, bool) {
	return e.cumulative, e.sized
}

func (e *Entry) setSize(size uint64) {
	e.cumulative = size
	e.sized = true
}

func (e *Entry) clearSize() {
	e.cumulative = 0
	e.sized = false
}

// Label returns the displayed name of the entry: the segment name for paths,
// the symbol name for leaves and the empty string for the root.
func (e *Entry) Label() string {
	switch el := e.Element.(type) {
	case *PathSegment:
		return el.Name
	case SymbolLeaf:
		return el.Symbol.Name
	default:
		return ""
	}
}

// Path returns the path segment carried by the entry, if any.
func (e *Entry) Path() (*PathSegment, bool) {
	p, ok := e.Element.(*PathSegment)
	return p, ok
}

// Symbol returns the symbol carried by the entry, if any.
func (e *Entry) Symbol() (*symbol.Symbol, bool) {
	leaf, ok := e.Element.(SymbolLeaf)
	if !ok {
		return nil, false
	}
	return leaf.Symbol, true
}

// IsPath reports whether the entry is a path segment.
func (e *Entry) IsPath() bool {
	_, ok := e.Element.(*PathSegment)
	return ok
}

// IsSymbol reports whether the entry is a symbol leaf.
func (e *Entry) IsSymbol() bool {
	_, ok := e.Element.(SymbolLeaf)
	return ok
}

func (e *Entry) String() string {
	switch el := e.Element.(type) {
	case Root:
		return "Root"
	case *PathSegment:
		return fmt.Sprintf("%s(%s)", el.Kind, el.Name)
	case SymbolLeaf:
		return el.Symbol.String()
	default:
		return fmt.Sprintf("%T", e.Element)
	}
}
