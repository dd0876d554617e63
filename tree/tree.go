package tree

/*
The tree package implements a small ordered ownership tree. Every node except
the root has exactly one parent, children are kept in insertion order, and the
order is changed only by explicit reordering. Nodes carry an arbitrary payload;
the meaning of the payload belongs to the caller.

Structural changes are not safe while an iterator over the same tree is in
progress. Mutate between traversals, never during one.
*/

////////////////////////////////////////////////////////////////////////////////

// Node is a node in an ordered tree.
type Node[T any] struct {
	Value T

	parent   *Node[T]
	children []*Node[T]
}

// New returns a detached node holding value.
func New[T any](value T) *Node[T] {
	return &Node[T]{Value: value}
}

// Parent returns the owning node, or nil for a root.
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// Children returns the ordered children. The slice is owned by the node and
// must not be modified.
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// Len returns the number of children.
func (n *Node[T]) Len() int {
	return len(n.children)
}

// IsRoot reports whether the node has no parent.
func (n *Node[T]) IsRoot() bool {
	return n.parent == nil
}

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool {
	return len(n.children) == 0
}

// AddChild appends child to the node's children and takes ownership of it. A
// child still owned elsewhere is detached from its previous parent first.
func (n *Node[T]) AddChild(child *Node[T]) *Node[T] {
	if child.parent != nil {
		_ = child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// RemoveChild detaches child from the node.
func (n *Node[T]) RemoveChild(child *Node[T]) error {
	i := n.indexOf(child)
	if i < 0 {
		return NotChildError{}
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return nil
}

// ReplaceChild puts replacement in old's position and detaches old. The
// replacement is detached from its previous parent first.
func (n *Node[T]) ReplaceChild(old, replacement *Node[T]) error {
	if old == replacement {
		return nil
	}
	if n.indexOf(old) < 0 {
		return NotChildError{}
	}
	if replacement.parent != nil {
		if err := replacement.parent.RemoveChild(replacement); err != nil {
			return err
		}
	}
	i := n.indexOf(old)
	n.children[i] = replacement
	replacement.parent = n
	old.parent = nil
	return nil
}

// Reorder replaces the child list with a permutation of itself.
func (n *Node[T]) Reorder(children []*Node[T]) error {
	if len(children) != len(n.children) {
		return NotPermutationError{expected: len(n.children), found: len(children)}
	}
	seen := make(map[*Node[T]]struct{}, len(children))
	for _, child := range children {
		if child.parent != n {
			return NotChildError{}
		}
		if _, ok := seen[child]; ok {
			return NotPermutationError{expected: len(n.children), found: len(seen)}
		}
		seen[child] = struct{}{}
	}
	n.children = append(n.children[:0:0], children...)
	return nil
}

func (n *Node[T]) indexOf(child *Node[T]) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
