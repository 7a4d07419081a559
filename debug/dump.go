package debug

import (
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

var dumpCfg = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders any value for inspection.
func Dump(v any) string {
	return dumpCfg.Sdump(v)
}

// Fdump writes the rendered value to w, colorized when w is a terminal.
func Fdump(w io.Writer, v any) {
	s := Dump(v)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		color.New(color.FgCyan).Fprint(f, s)
		return
	}
	io.WriteString(w, s)
}

// DiffStrings returns a line diff of two dumps, lines prefixed with
// "-"/"+" for deletions and insertions.
func DiffStrings(a, b string) string {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, diff := range diffs {
		prefix := "  "
		switch diff.Type {
		case diffpatch.DiffDelete:
			prefix = "- "
		case diffpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.Split(strings.TrimRight(diff.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
