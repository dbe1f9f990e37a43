package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/gaea"
)

// Watch renders once and again after every change reported by the backend, until ctx is done.
// Instances are resolved at mount, so each change remounts the tree.
func Watch(ctx context.Context, eng *gaea.Engine, w io.Writer, opts RenderOptions, logger *slog.Logger) error {
	changes, err := eng.Watch(ctx)
	if err != nil {
		if errors.Is(err, gaea.ErrWatchUnsupported) {
			return fmt.Errorf("this backend cannot be watched: %w", err)
		}
		return err
	}

	if err := Render(ctx, eng, w, opts); err != nil {
		logger.Error("Render failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, re-rendering", "instance", key)
			fmt.Fprintln(w)
			if err := Render(ctx, eng, w, opts); err != nil {
				logger.Error("Render failed", "error", err)
			}
		}
	}
}
