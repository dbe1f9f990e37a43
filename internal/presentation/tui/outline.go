package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/gaea/pkg/domain"
)

// Outline renders an element tree as a Markdown list, one element per line.
func Outline(tree *domain.Element) string {
	if tree == nil {
		return "_empty tree_\n"
	}
	var sb strings.Builder
	title := tree.InstanceKey
	if title == "" {
		title = tree.Type
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	writeElement(&sb, tree, 0)
	return sb.String()
}

func writeElement(sb *strings.Builder, el *domain.Element, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	if el.InstanceKey != "" {
		fmt.Fprintf(sb, "**%s** ", el.InstanceKey)
	}
	fmt.Fprintf(sb, "`%s`", el.Type)
	if el.Text != "" {
		fmt.Fprintf(sb, " %q", el.Text)
	}
	if names := el.HandlerNames(); len(names) > 0 {
		fmt.Fprintf(sb, " _on %s_", strings.Join(names, ", "))
	}
	sb.WriteString("\n")
	for _, child := range el.Children {
		writeElement(sb, child, depth+1)
	}
}
