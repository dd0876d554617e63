package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/elfsize/symbol"
)

func TestPathFilter(t *testing.T) {
	driver := &symbol.Symbol{Name: "uart_init", File: "/src/drivers/uart.c"}
	app := &symbol.Symbol{Name: "main", File: "/src/app/main.c"}
	vendor := &symbol.Symbol{Name: "memcpy", File: "/opt/toolchain/lib/memcpy.c"}
	orphan := &symbol.Symbol{Name: "_start"}
	all := []*symbol.Symbol{driver, app, vendor, orphan}

	cases := []struct {
		assertion string
		include   []string
		exclude   []string
		expected  []*symbol.Symbol
	}{
		{
			"no patterns keeps everything",
			nil,
			nil,
			all,
		},
		{
			"include restricts to matches and drops orphans",
			[]string{"/src/**"},
			nil,
			[]*symbol.Symbol{driver, app},
		},
		{
			"exclude drops matches and keeps orphans",
			nil,
			[]string{"/opt/**"},
			[]*symbol.Symbol{driver, app, orphan},
		},
		{
			"exclude wins over include",
			[]string{"/src/**"},
			[]string{"**/drivers/*.c"},
			[]*symbol.Symbol{app},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			filter, err := symbol.NewPathFilter(c.include, c.exclude)
			require.NoError(t, err)
			assert.Equal(t, c.expected, filter.Apply(all))
		})
	}
}

func TestPathFilterInvalidPattern(t *testing.T) {
	_, err := symbol.NewPathFilter([]string{"/src/[a"}, nil)
	require.Error(t, err)
}
