package diff

import (
	"slices"
	"strings"

	"github.com/damianoneill/nctree/netconf/tree"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Render delivers a line by line comparison of the trees a and b, one node per line. Lines found only in
// a are marked "- ", lines found only in b "+ ". Siblings are sorted, so child order does not show.
func Render(a, b *tree.Node) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(outline(a), outline(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		marker := "  "
		switch d.Type { //nolint: exhaustive
		case diffmatchpatch.DiffDelete:
			marker = "- "
		case diffmatchpatch.DiffInsert:
			marker = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				sb.WriteString(marker + line)
			}
		}
	}
	return sb.String()
}

// outline delivers one line per node of n, indented by depth.
func outline(n *tree.Node) string {
	var sb strings.Builder
	if n != nil {
		writeOutline(&sb, n, 0)
	}
	return sb.String()
}

func writeOutline(sb *strings.Builder, n *tree.Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Name.Local)
	switch n.Kind() {
	case tree.Leaf:
		sb.WriteString(" = " + n.Value().String())
	case tree.ListInstance:
		keys, values := n.Keys(), n.KeyValues()
		for i := range keys {
			sb.WriteString("[" + keys[i] + "='" + values[i].String() + "']")
		}
	}
	sb.WriteString("\n")

	children := n.Children()
	slices.SortStableFunc(children, tree.CompareContent)
	for _, c := range children {
		writeOutline(sb, c, depth+1)
	}
}
