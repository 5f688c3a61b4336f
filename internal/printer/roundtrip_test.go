package printer_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"

	"sscript/internal/compiler"
	"sscript/internal/printer"
)

// programs is a representative corpus covering literals, numbered/cond
// ops, name-argument ops, and nested quoted/sub-stack bodies.
var programs = []struct {
	name   string
	source string
}{
	{"arithmetic", `3 4 + 2 *`},
	{"branch", `true [1] [2] if`},
	{"loop", `3 [dup 1 - dup 0 >] loop`},
	{"define", `[1 1 +] define(double) double`},
	{"numbered", `1 2 3 dup2 swap1 dig1`},
	{"condarg", `"a,b,c" "," split(",")`},
	{"substack", `{1 2 3} compress`},
	{"quoted", `[1 2 +] quote`},
}

// TestPrintRecompileRoundTrip checks that printing a compiled program and
// recompiling the result yields a chunk of the same length whose
// instructions print identically, and snapshots the printed text itself.
func TestPrintRecompileRoundTrip(t *testing.T) {
	for _, p := range programs {
		t.Run(p.name, func(t *testing.T) {
			chunk, err := compiler.Compile(p.source)
			assert.Nil(t, err)

			text := printer.Print(chunk)
			snaps.MatchSnapshot(t, text)

			recompiled, rerr := compiler.Compile(text)
			assert.Nil(t, rerr)
			assert.Equal(t, chunk.Len(), recompiled.Len())
			assert.Equal(t, text, printer.Print(recompiled))
		})
	}
}
