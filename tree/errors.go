package tree

import "fmt"

/*
Errors that can be returned by the tree package.
*/

////////////////////////////////////////////////////////////////////////////////

// NotChildError is returned when an operation names a node that is not a
// child of the receiver.
type NotChildError struct{}

// Error returns a string representation of the error.
func (e NotChildError) Error() string {
	return "node is not a child of the receiver"
}

// Is returns true if the target error is a NotChildError.
func (e NotChildError) Is(target error) bool {
	_, ok := target.(NotChildError)
	return ok
}

// NotPermutationError is returned when a reorder does not list every child
// exactly once.
type NotPermutationError struct {
	expected int
	found    int
}

// Error returns a string representation of the error.
func (e NotPermutationError) Error() string {
	return fmt.Sprintf("reorder is not a permutation: expected %d children, found %d", e.expected, e.found)
}

// Is returns true if the target error is a NotPermutationError.
func (e NotPermutationError) Is(target error) bool {
	_, ok := target.(NotPermutationError)
	return ok
}
