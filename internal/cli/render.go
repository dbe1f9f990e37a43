package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/presentation/tui"
	"github.com/aretw0/gaea/pkg/domain"
)

// Output formats accepted by Render.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatOutline = "outline"
)

// Interaction is one step applied to a mounted tree before it is printed.
type Interaction struct {
	// Publish is "channel" or "channel=payload". Payloads that parse as JSON are decoded.
	Publish string
	// Invoke is "instance.field".
	Invoke string
}

// RenderOptions controls a one-shot render.
type RenderOptions struct {
	Root   string
	Format string
	Steps  []Interaction
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Render mounts the root, applies the interaction steps, prints the tree and unmounts.
func Render(ctx context.Context, eng *gaea.Engine, w io.Writer, opts RenderOptions) error {
	root, err := eng.Instantiate(ctx, opts.Root)
	if err != nil {
		return err
	}
	defer root.Unmount(context.WithoutCancel(ctx))

	for _, step := range opts.Steps {
		if err := Apply(ctx, root, step); err != nil {
			return err
		}
	}
	return root.View(ctx, func(tree *domain.Element) error {
		return WriteElement(w, tree, opts.Format)
	})
}

// Apply runs one interaction against root.
func Apply(ctx context.Context, root *gaea.Root, step Interaction) error {
	switch {
	case step.Publish != "":
		channel, raw, hasPayload := strings.Cut(step.Publish, "=")
		var payload any
		if hasPayload {
			payload = DecodePayload(raw)
		}
		return root.Publish(ctx, channel, payload)
	case step.Invoke != "":
		instance, field, ok := strings.Cut(step.Invoke, ".")
		if !ok || instance == "" || field == "" {
			return fmt.Errorf("invalid invoke %q, expected instance.field", step.Invoke)
		}
		return root.Invoke(ctx, instance, field)
	}
	return nil
}

// DecodePayload decodes raw as JSON, falling back to the raw string.
func DecodePayload(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// WriteElement prints tree in format. Auto picks a styled outline on a terminal and JSON otherwise.
func WriteElement(w io.Writer, tree *domain.Element, format string) error {
	switch format {
	case "", FormatAuto:
		if IsTerminal(w) {
			return tui.WriteTree(w, tree, true)
		}
		return writeJSON(w, tree)
	case FormatJSON:
		return writeJSON(w, tree)
	case FormatOutline:
		return tui.WriteTree(w, tree, false)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
