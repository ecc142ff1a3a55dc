package compose

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// elideAfter is the run length at which unchanged lines collapse to a
// summary marker.
const elideAfter = 8

// Diff renders a line-oriented diff between two artifact versions, with
// "+"/"-" prefixes and long unchanged runs elided. Identical inputs yield
// the empty string.
func Diff(oldText, newText string) string {
	if oldText == newText {
		return ""
	}

	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		text := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writeLines(&out, "+ ", text)
		case diffmatchpatch.DiffDelete:
			writeLines(&out, "- ", text)
		default:
			if len(text) > elideAfter {
				writeLines(&out, "  ", text[:3])
				fmt.Fprintf(&out, "  ... %d unchanged lines ...\n", len(text)-6)
				writeLines(&out, "  ", text[len(text)-3:])
				continue
			}
			writeLines(&out, "  ", text)
		}
	}
	return out.String()
}

func writeLines(out *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		out.WriteString(prefix)
		out.WriteString(line)
		out.WriteByte('\n')
	}
}
