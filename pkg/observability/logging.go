package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/gaea/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one debug record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMount: func(ctx context.Context, e *domain.InstanceEvent) {
			logger.DebugContext(ctx, "instance_mount", "instance", e.InstanceKey, "component", e.ComponentKey)
		},
		OnUnmount: func(ctx context.Context, e *domain.InstanceEvent) {
			logger.DebugContext(ctx, "instance_unmount", "instance", e.InstanceKey, "component", e.ComponentKey)
		},
		OnRender: func(ctx context.Context, e *domain.InstanceEvent) {
			logger.DebugContext(ctx, "instance_render", "instance", e.InstanceKey, "component", e.ComponentKey)
		},
		OnSkip: func(ctx context.Context, e *domain.InstanceEvent) {
			logger.DebugContext(ctx, "instance_skip", "instance", e.InstanceKey)
		},
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.DebugContext(ctx, "action_dispatch",
				"instance", e.InstanceKey,
				"trigger", e.Trigger,
				"action", e.Action,
				"args", len(e.Args),
			)
		},
		OnSiblingUpdate: func(ctx context.Context, e *domain.SiblingEvent) {
			logger.DebugContext(ctx, "sibling_update", "parent", e.ParentKey, "name", e.Update.Name)
		},
	}
}
