package tree

/*
Depth-first iterators over a Node and its descendants. Both yield (node, depth)
pairs with the starting node at depth zero, visit siblings in their current
order, and visit every node exactly once. They are lazy: the stack holds only
the path to the current position plus pending siblings.
*/

////////////////////////////////////////////////////////////////////////////////

type frame[T any] struct {
	node  *Node[T]
	depth int
	next  int
}

// Iterator is a depth-first iterator over a tree.
type Iterator[T any] struct {
	post  bool
	stack []frame[T]
}

// PreOrder returns an iterator visiting each node before its children.
func (n *Node[T]) PreOrder() *Iterator[T] {
	return &Iterator[T]{stack: []frame[T]{{node: n}}}
}

// PostOrder returns an iterator visiting each node after its children.
func (n *Node[T]) PostOrder() *Iterator[T] {
	return &Iterator[T]{post: true, stack: []frame[T]{{node: n}}}
}

// More returns true if there are more elements in the iteration.
func (it *Iterator[T]) More() bool {
	return len(it.stack) > 0
}

// Next returns the next node and its depth. It returns nil once the iteration
// is exhausted.
func (it *Iterator[T]) Next() (*Node[T], int) {
	if it.post {
		return it.nextPost()
	}
	return it.nextPre()
}

func (it *Iterator[T]) nextPre() (*Node[T], int) {
	if len(it.stack) == 0 {
		return nil, 0
	}
	top := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	for i := len(top.node.children) - 1; i >= 0; i-- {
		it.stack = append(it.stack, frame[T]{node: top.node.children[i], depth: top.depth + 1})
	}
	return top.node, top.depth
}

func (it *Iterator[T]) nextPost() (*Node[T], int) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.next < len(top.node.children) {
			child := top.node.children[top.next]
			top.next++
			it.stack = append(it.stack, frame[T]{node: child, depth: top.depth + 1})
			continue
		}
		node, depth := top.node, top.depth
		it.stack = it.stack[:len(it.stack)-1]
		return node, depth
	}
	return nil, 0
}

// Walk calls f for every node in the given order, stopping at the first error.
func Walk[T any](it *Iterator[T], f func(node *Node[T], depth int) error) error {
	for it.More() {
		node, depth := it.Next()
		if err := f(node, depth); err != nil {
			return err
		}
	}
	return nil
}

// Collect drains an iterator into a slice of nodes.
func Collect[T any](it *Iterator[T]) []*Node[T] {
	var nodes []*Node[T]
	for it.More() {
		node, _ := it.Next()
		nodes = append(nodes, node)
	}
	return nodes
}
