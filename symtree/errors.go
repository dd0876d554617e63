package symtree

import "fmt"

// UnexpectedElementError is returned when a traversal meets a node whose
// payload is not a Root, PathSegment or SymbolLeaf, or a Root below the top
// of the tree. It indicates a bug in tree construction, not bad input.
type UnexpectedElementError struct {
	element any
}

// NewUnexpectedElementError constructs a new UnexpectedElementError.
func NewUnexpectedElementError(element any) UnexpectedElementError {
	return UnexpectedElementError{element: element}
}

// Error returns a string representation of the error.
func (e UnexpectedElementError) Error() string {
	return fmt.Sprintf("unexpected tree element: %T", e.element)
}

// Is returns true if the target error is an UnexpectedElementError.
func (e UnexpectedElementError) Is(target error) bool {
	_, ok := target.(UnexpectedElementError)
	return ok
}
