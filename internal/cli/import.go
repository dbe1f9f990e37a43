package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/gaea/internal/compiler"
	"github.com/aretw0/gaea/pkg/ports"
)

// importLockTTL bounds how long a crashed import can block the next one.
const importLockTTL = 30 * time.Second

// Import copies every instance from src into dst. Each record is parsed first, so
// nothing is written when any record is invalid. A non-nil locker serializes
// concurrent imports into the same backend.
func Import(ctx context.Context, src ports.InstanceLoader, dst ports.InstanceStore, locker ports.Locker, logger *slog.Logger) (int, error) {
	keys, err := src.ListInstances()
	if err != nil {
		return 0, fmt.Errorf("failed to list source instances: %w", err)
	}

	parser := compiler.NewParser()
	records := make(map[string][]byte, len(keys))
	for _, key := range keys {
		raw, err := src.GetInstance(key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if _, err := parser.Parse(key, raw); err != nil {
			return 0, err
		}
		records[key] = raw
	}

	if locker != nil {
		unlock, err := locker.Lock(ctx, "import", importLockTTL)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release import lock", "error", err)
			}
		}()
	}

	for _, key := range keys {
		if err := dst.PutInstance(ctx, key, records[key]); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", key, err)
		}
		logger.Debug("Instance imported", "instance", key)
	}
	logger.Info("Import finished", "instances", len(keys))
	return len(keys), nil
}
