package symtree

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/tree"
	"github.com/wkalt/elfsize/util/log"
)

/*
Package symtree aggregates symbol sizes into a hierarchy keyed by source path.

A SymbolTree is built once per report from a flat symbol list and then
refined in place by a fixed sequence of passes:

	build -> MergePaths -> AccumulateSizes -> Sort -> CalculateTotal

The root owns one subtree per top-level path component plus the orphans
bucket, which collects every symbol without file attribution. Path components
become PathSegment nodes and every symbol becomes a SymbolLeaf under the
segment its file path ends in.

MergePaths collapses chains of single-child directories so that "/" -> "home"
-> "src" renders as one "/home/src" node. It never collapses the edge between
a file and its only symbol. AccumulateSizes fills in every node's cumulative
size bottom-up, and Sort orders siblings as directories, files, buckets and
finally symbols, placing larger paths first.

The tree is single-threaded. Passes must not overlap.
*/

////////////////////////////////////////////////////////////////////////////////

// OrphansName is the label of the bucket holding unattributed symbols.
const OrphansName = "?"

// Node is a node of a SymbolTree.
type Node = tree.Node[*Entry]

// SymbolTree is a hierarchy of path segments and symbols.
type SymbolTree struct {
	root    *Node
	orphans *Node

	total    uint64
	hasTotal bool
}

// New builds a tree from symbols.
func New(ctx context.Context, symbols []*symbol.Symbol) *SymbolTree {
	root := tree.New(&Entry{Element: Root{}})
	orphans := root.AddChild(tree.New(&Entry{Element: &PathSegment{Name: OrphansName, Kind: Bucket}}))
	t := &SymbolTree{root: root, orphans: orphans}
	for _, s := range symbols {
		t.Add(ctx, s)
	}
	return t
}

// Root returns the root node.
func (t *SymbolTree) Root() *Node {
	return t.root
}

// Orphans returns the orphans bucket.
func (t *SymbolTree) Orphans() *Node {
	return t.orphans
}

// Add inserts a symbol below the segment its file path ends in, or into the
// orphans bucket if it has no file.
func (t *SymbolTree) Add(ctx context.Context, s *symbol.Symbol) {
	leaf := tree.New(&Entry{Element: SymbolLeaf{Symbol: s}})
	if !s.HasFile() {
		t.orphans.AddChild(leaf)
		return
	}
	parts := splitPath(s.File)
	if !strings.HasPrefix(filepath.ToSlash(s.File), "/") {
		log.Warnw(ctx, "relative symbol path", "symbol", s.Name, "file", s.File)
	}
	node := t.root
	for _, part := range parts {
		node = segment(node, part)
	}
	if p, ok := node.Value.Path(); ok {
		p.Kind = File
	}
	node.AddChild(leaf)
}

// segment returns the path child of node named name, creating a directory
// segment if none exists.
func segment(node *Node, name string) *Node {
	for _, child := range node.Children() {
		if p, ok := child.Value.Path(); ok && p.Kind != Bucket && p.Name == name {
			return child
		}
	}
	return node.AddChild(tree.New(&Entry{Element: &PathSegment{Name: name, Kind: Directory}}))
}

// splitPath splits a file path into components, with "/" as the first
// component of an absolute path.
func splitPath(file string) []string {
	cleaned := path.Clean(filepath.ToSlash(file))
	var parts []string
	if strings.HasPrefix(cleaned, "/") {
		parts = append(parts, "/")
		cleaned = strings.TrimLeft(cleaned, "/")
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

// MergePaths collapses every path segment whose only child is another path
// segment into that child, repeating until no such chain remains. The child
// takes the parent's position and the joined name. With fish set, the last
// component of the parent's name is shortened to its first character.
func (t *SymbolTree) MergePaths(fish bool) error {
	for {
		merged := false
		nodes := tree.Collect(t.root.PreOrder())
		for _, node := range nodes {
			ok, err := t.mergeInto(node, fish)
			if err != nil {
				return err
			}
			merged = merged || ok
		}
		if !merged {
			return nil
		}
	}
}

func (t *SymbolTree) mergeInto(node *Node, fish bool) (bool, error) {
	if node == t.root || node.Parent() == nil {
		return false, nil
	}
	p, ok := node.Value.Path()
	if !ok || p.Kind == Bucket || node.Len() != 1 {
		return false, nil
	}
	child := node.Children()[0]
	cp, ok := child.Value.Path()
	if !ok || cp.Kind == Bucket {
		return false, nil
	}
	name := p.Name
	if fish {
		head, tail := path.Split(name)
		if len(tail) > 0 {
			tail = string([]rune(tail)[:1])
		}
		name = path.Join(head, tail)
	}
	cp.Name = path.Join(name, cp.Name)
	if err := node.Parent().ReplaceChild(node, child); err != nil {
		return false, fmt.Errorf("failed to merge %s: %w", p.Name, err)
	}
	return true, nil
}

// AccumulateSizes computes every node's cumulative size bottom-up. Leaves
// take their symbol's size and path segments the sum of their children. With
// reset set, all existing sizes are cleared first. The orphans bucket always
// ends up sized.
func (t *SymbolTree) AccumulateSizes(reset bool) error {
	if reset {
		it := t.root.PreOrder()
		for it.More() {
			node, _ := it.Next()
			node.Value.clearSize()
		}
	}
	t.orphans.Value.setSize(0)
	it := t.root.PostOrder()
	for it.More() {
		node, _ := it.Next()
		if node == t.root {
			continue
		}
		switch el := node.Value.Element.(type) {
		case SymbolLeaf:
			node.Value.setSize(el.Symbol.Size)
		case *PathSegment:
			if node.IsLeaf() {
				continue
			}
			var sum uint64
			for _, child := range node.Children() {
				size, _ := child.Value.CumulativeSize()
				sum += size
			}
			node.Value.setSize(sum)
		default:
			return NewUnexpectedElementError(node.Value.Element)
		}
	}
	return nil
}

// Sort orders the children of every node as directories, files, buckets and
// symbols. Directories and files go largest first, with unsized segments
// after sized ones in name order. Buckets keep their order. Symbols are
// ordered by cmp, or by name if cmp is nil, and reversed if reverse is set.
// All orderings are stable.
func (t *SymbolTree) Sort(cmp func(a, b *symbol.Symbol) int, reverse bool) error {
	if cmp == nil {
		cmp = symbol.ByName
	}
	symbolOrder := func(a, b *Node) int {
		sa, _ := a.Value.Symbol()
		sb, _ := b.Value.Symbol()
		if reverse {
			return cmp(sb, sa)
		}
		return cmp(sa, sb)
	}
	for _, node := range tree.Collect(t.root.PreOrder()) {
		if node.Len() < 2 {
			continue
		}
		var dirs, files, others, symbols []*Node
		for _, child := range node.Children() {
			switch el := child.Value.Element.(type) {
			case SymbolLeaf:
				symbols = append(symbols, child)
			case *PathSegment:
				switch el.Kind {
				case Directory:
					dirs = append(dirs, child)
				case File:
					files = append(files, child)
				default:
					others = append(others, child)
				}
			default:
				return NewUnexpectedElementError(child.Value.Element)
			}
		}
		slices.SortStableFunc(dirs, pathOrder)
		slices.SortStableFunc(files, pathOrder)
		slices.SortStableFunc(symbols, symbolOrder)
		children := make([]*Node, 0, node.Len())
		children = append(children, dirs...)
		children = append(children, files...)
		children = append(children, others...)
		children = append(children, symbols...)
		if err := node.Reorder(children); err != nil {
			return fmt.Errorf("failed to reorder %s: %w", node.Value, err)
		}
	}
	return nil
}

func pathOrder(a, b *Node) int {
	sa, aok := a.Value.CumulativeSize()
	sb, bok := b.Value.CumulativeSize()
	switch {
	case aok && bok:
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a.Value.Label(), b.Value.Label())
	}
}

// CalculateTotal sums the sizes of every symbol in the tree and records the
// result as the tree's total.
func (t *SymbolTree) CalculateTotal() uint64 {
	var total uint64
	it := t.root.PreOrder()
	for it.More() {
		node, _ := it.Next()
		if s, ok := node.Value.Symbol(); ok {
			total += s.Size
		}
	}
	t.total = total
	t.hasTotal = true
	return total
}

// Total returns the total recorded by CalculateTotal and whether it has been
// computed.
func (t *SymbolTree) Total() (uint64, bool) {
	return t.total, t.hasTotal
}

// Symbols returns the symbols in the tree in traversal order.
func (t *SymbolTree) Symbols() []*symbol.Symbol {
	var symbols []*symbol.Symbol
	it := t.root.PreOrder()
	for it.More() {
		node, _ := it.Next()
		if s, ok := node.Value.Symbol(); ok {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
