package tui

import (
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/gaea/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// When glamour cannot start, markdown is returned unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// WriteTree writes the outline of tree to w, styled for a terminal when pretty is set.
func WriteTree(w io.Writer, tree *domain.Element, pretty bool) error {
	out := Outline(tree)
	if pretty {
		styled, err := NewRenderer()(out)
		if err != nil {
			return err
		}
		out = styled
	}
	_, err := io.WriteString(w, out)
	return err
}
