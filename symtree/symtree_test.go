package symtree_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/symtree"
	"github.com/wkalt/elfsize/util/log"
)

type row struct {
	Depth int
	Label string
	Kind  string
	Size  int64
}

// snapshot flattens a tree into rows, excluding the root. Unsized nodes get
// size -1.
func snapshot(t *symtree.SymbolTree) []row {
	var rows []row
	it := t.Root().PreOrder()
	for it.More() {
		node, depth := it.Next()
		if node == t.Root() {
			continue
		}
		kind := "symbol"
		if p, ok := node.Value.Path(); ok {
			kind = p.Kind.String()
		}
		size := int64(-1)
		if s, ok := node.Value.CumulativeSize(); ok {
			size = int64(s)
		}
		rows = append(rows, row{depth - 1, node.Value.Label(), kind, size})
	}
	return rows
}

// find follows labels down from node.
func find(t *testing.T, node *symtree.Node, labels ...string) *symtree.Node {
	t.Helper()
	for _, label := range labels {
		var next *symtree.Node
		for _, child := range node.Children() {
			if child.Value.Label() == label {
				next = child
				break
			}
		}
		require.NotNil(t, next, "missing %s", label)
		node = next
	}
	return node
}

func sym(name string, size uint64, file string) *symbol.Symbol {
	return &symbol.Symbol{Name: name, Size: size, File: file}
}

func scenario() []*symbol.Symbol {
	return []*symbol.Symbol{
		sym("a", 10, "/x/y/a.c"),
		sym("b", 20, "/x/y/b.c"),
		sym("c", 5, "/x/z.c"),
	}
}

func prepare(t *testing.T, symbols []*symbol.Symbol, fish bool) *symtree.SymbolTree {
	t.Helper()
	st := symtree.New(context.Background(), symbols)
	require.NoError(t, st.MergePaths(fish))
	require.NoError(t, st.AccumulateSizes(true))
	require.NoError(t, st.Sort(symbol.BySize, true))
	st.CalculateTotal()
	return st
}

func TestScenario(t *testing.T) {
	st := prepare(t, scenario(), false)
	expected := []row{
		{0, "/x", "directory", 35},
		{1, "y", "directory", 30},
		{2, "b.c", "file", 20},
		{3, "b", "symbol", 20},
		{2, "a.c", "file", 10},
		{3, "a", "symbol", 10},
		{1, "z.c", "file", 5},
		{2, "c", "symbol", 5},
		{0, "?", "bucket", 0},
	}
	if diff := cmp.Diff(expected, snapshot(st)); diff != "" {
		t.Errorf("unexpected tree (-want +got):\n%s", diff)
	}
	total, ok := st.Total()
	require.True(t, ok)
	require.Equal(t, uint64(35), total)
}

func TestBuild(t *testing.T) {
	t.Run("unmerged components", func(t *testing.T) {
		st := symtree.New(context.Background(), []*symbol.Symbol{sym("a", 1, "/x/a.c")})
		expected := []row{
			{0, "?", "bucket", -1},
			{0, "/", "directory", -1},
			{1, "x", "directory", -1},
			{2, "a.c", "file", -1},
			{3, "a", "symbol", -1},
		}
		require.Empty(t, cmp.Diff(expected, snapshot(st)))
	})
	t.Run("shared prefixes are reused", func(t *testing.T) {
		st := symtree.New(context.Background(), scenario())
		root := st.Root().Children()
		require.Len(t, root, 2)
		require.Equal(t, "/", root[1].Value.Label())
		require.Equal(t, 1, root[1].Len())
	})
	t.Run("file that is also a directory", func(t *testing.T) {
		st := symtree.New(context.Background(), []*symbol.Symbol{
			sym("inner", 1, "/a/b.c/x.c"),
			sym("outer", 2, "/a/b.c"),
		})
		require.NoError(t, st.MergePaths(false))
		expected := []row{
			{0, "?", "bucket", -1},
			{0, "/a/b.c", "file", -1},
			{1, "x.c", "file", -1},
			{2, "inner", "symbol", -1},
			{1, "outer", "symbol", -1},
		}
		require.Empty(t, cmp.Diff(expected, snapshot(st)))
	})
	t.Run("relative paths warn", func(t *testing.T) {
		buf := &bytes.Buffer{}
		old := slog.Default()
		slog.SetDefault(slog.New(log.NewHandler(buf, slog.LevelWarn)))
		defer slog.SetDefault(old)

		st := symtree.New(context.Background(), []*symbol.Symbol{sym("f", 4, "src/f.c")})
		require.Equal(t, "[WARN] relative symbol path symbol=f file=src/f.c\n", buf.String())
		require.NoError(t, st.MergePaths(false))
		require.Equal(t, "src/f.c", st.Root().Children()[1].Value.Label())
	})
}

func TestMergePaths(t *testing.T) {
	cases := []struct {
		assertion string
		symbols   []*symbol.Symbol
		fish      bool
		expected  []row
	}{
		{
			"deep chain collapses to the file",
			[]*symbol.Symbol{sym("main", 8, "/a/b/c/d/file.c")},
			false,
			[]row{
				{0, "/a/b/c/d/file.c", "file", 8},
				{1, "main", "symbol", 8},
				{0, "?", "bucket", 0},
			},
		},
		{
			"divergence stops the collapse",
			[]*symbol.Symbol{
				sym("x", 1, "/usr/local/bin/x.c"),
				sym("y", 2, "/usr/local/bin/y.c"),
			},
			false,
			[]row{
				{0, "/usr/local/bin", "directory", 3},
				{1, "y.c", "file", 2},
				{2, "y", "symbol", 2},
				{1, "x.c", "file", 1},
				{2, "x", "symbol", 1},
				{0, "?", "bucket", 0},
			},
		},
		{
			"fish style",
			[]*symbol.Symbol{
				sym("x", 1, "/usr/local/bin/x.c"),
				sym("y", 2, "/usr/local/bin/y.c"),
			},
			true,
			[]row{
				{0, "/u/l/bin", "directory", 3},
				{1, "y.c", "file", 2},
				{2, "y", "symbol", 2},
				{1, "x.c", "file", 1},
				{2, "x", "symbol", 1},
				{0, "?", "bucket", 0},
			},
		},
		{
			"orphans never merge",
			[]*symbol.Symbol{sym("lonely", 3, "")},
			false,
			[]row{
				{0, "?", "bucket", 3},
				{1, "lonely", "symbol", 3},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			st := prepare(t, c.symbols, c.fish)
			if diff := cmp.Diff(c.expected, snapshot(st)); diff != "" {
				t.Errorf("unexpected tree (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, fish := range []bool{false, true} {
			st := symtree.New(context.Background(), []*symbol.Symbol{
				sym("x", 1, "/usr/local/bin/x.c"),
				sym("y", 2, "/usr/local/lib/y.c"),
				sym("z", 3, "/opt/z.c"),
			})
			require.NoError(t, st.MergePaths(fish))
			once := snapshot(st)
			require.NoError(t, st.MergePaths(fish))
			require.Empty(t, cmp.Diff(once, snapshot(st)))
		}
	})
}

func TestAccumulateSizes(t *testing.T) {
	symbols := append(scenario(), sym("o1", 7, ""), sym("o2", 3, ""))
	st := symtree.New(context.Background(), symbols)
	require.NoError(t, st.MergePaths(false))
	require.NoError(t, st.AccumulateSizes(false))

	it := st.Root().PostOrder()
	for it.More() {
		node, _ := it.Next()
		if node == st.Root() {
			continue
		}
		size, ok := node.Value.CumulativeSize()
		require.True(t, ok, node.Value.String())
		var expected uint64
		leaves := node.PreOrder()
		for leaves.More() {
			leaf, _ := leaves.Next()
			if s, ok := leaf.Value.Symbol(); ok {
				expected += s.Size
			}
		}
		require.Equal(t, expected, size, node.Value.String())
	}
	orphans, _ := st.Orphans().Value.CumulativeSize()
	require.Equal(t, uint64(10), orphans)

	t.Run("repeated accumulation is stable", func(t *testing.T) {
		before := snapshot(st)
		require.NoError(t, st.AccumulateSizes(false))
		require.Empty(t, cmp.Diff(before, snapshot(st)))
	})
	t.Run("reset picks up new symbols", func(t *testing.T) {
		st.Add(context.Background(), sym("late", 100, ""))
		require.NoError(t, st.AccumulateSizes(true))
		orphans, _ := st.Orphans().Value.CumulativeSize()
		require.Equal(t, uint64(110), orphans)
	})
}

func TestOrphans(t *testing.T) {
	t.Run("empty bucket is sized", func(t *testing.T) {
		st := prepare(t, scenario(), false)
		size, ok := st.Orphans().Value.CumulativeSize()
		require.True(t, ok)
		require.Zero(t, size)
	})
	t.Run("only orphans", func(t *testing.T) {
		st := prepare(t, []*symbol.Symbol{sym("a", 1, ""), sym("b", 2, "")}, false)
		require.Empty(t, cmp.Diff([]row{
			{0, "?", "bucket", 3},
			{1, "b", "symbol", 2},
			{1, "a", "symbol", 1},
		}, snapshot(st)))
	})
	t.Run("empty tree", func(t *testing.T) {
		st := prepare(t, nil, false)
		require.Empty(t, cmp.Diff([]row{{0, "?", "bucket", 0}}, snapshot(st)))
		total, ok := st.Total()
		require.True(t, ok)
		require.Zero(t, total)
	})
}

func TestSort(t *testing.T) {
	mixed := func() *symtree.SymbolTree {
		st := symtree.New(context.Background(), []*symbol.Symbol{
			sym("outer_small", 1, "/p/f.c"),
			sym("outer_big", 50, "/p/f.c"),
			sym("in_dir", 5, "/p/f.c/sub/g.c"),
			sym("in_file", 9, "/p/f.c/h.c"),
		})
		require.NoError(t, st.AccumulateSizes(true))
		return st
	}
	labels := func(st *symtree.SymbolTree) []string {
		node := find(t, st.Root(), "/", "p", "f.c")
		var out []string
		for _, child := range node.Children() {
			out = append(out, child.Value.Label())
		}
		return out
	}
	cases := []struct {
		assertion string
		cmp       func(a, b *symbol.Symbol) int
		reverse   bool
		expected  []string
	}{
		{"by size descending", symbol.BySize, true, []string{"sub", "h.c", "outer_big", "outer_small"}},
		{"by size ascending", symbol.BySize, false, []string{"sub", "h.c", "outer_small", "outer_big"}},
		{"by name", symbol.ByName, false, []string{"sub", "h.c", "outer_big", "outer_small"}},
		{"by name reversed", symbol.ByName, true, []string{"sub", "h.c", "outer_small", "outer_big"}},
		{"nil comparator sorts by name", nil, false, []string{"sub", "h.c", "outer_big", "outer_small"}},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			st := mixed()
			require.NoError(t, st.Sort(c.cmp, c.reverse))
			require.Equal(t, c.expected, labels(st))
		})
	}

	t.Run("unsized paths sort by name", func(t *testing.T) {
		st := symtree.New(context.Background(), []*symbol.Symbol{
			sym("b", 1, "/d/b.c"),
			sym("a", 1, "/d/a.c"),
		})
		require.NoError(t, st.Sort(symbol.BySize, true))
		d := find(t, st.Root(), "/", "d")
		require.Equal(t, "a.c", d.Children()[0].Value.Label())
		require.Equal(t, "b.c", d.Children()[1].Value.Label())
	})

	t.Run("equal sizes keep insertion order", func(t *testing.T) {
		st := prepare(t, []*symbol.Symbol{
			sym("first", 4, "/s/one.c"),
			sym("second", 4, "/s/one.c"),
			sym("third", 4, "/s/one.c"),
		}, false)
		file := st.Root().Children()[0]
		var names []string
		for _, child := range file.Children() {
			names = append(names, child.Value.Label())
		}
		require.Equal(t, []string{"first", "second", "third"}, names)
	})
}

func TestCalculateTotal(t *testing.T) {
	symbols := append(scenario(), sym("o", 7, ""))
	st := symtree.New(context.Background(), symbols)
	_, ok := st.Total()
	require.False(t, ok)
	require.Equal(t, symbol.TotalSize(symbols), st.CalculateTotal())
	require.NoError(t, st.MergePaths(true))
	require.NoError(t, st.Sort(symbol.ByName, false))
	require.Equal(t, symbol.TotalSize(symbols), st.CalculateTotal())
	require.ElementsMatch(t, symbols, st.Symbols())
}
