package runtime

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/gaea/internal/compiler"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/ports"
)

// DefaultMaxFlushPasses bounds how many times sibling updates may re-dirty the tree
// before a flush gives up with domain.ErrUpdateLoop.
const DefaultMaxFlushPasses = 64

// Engine resolves instance trees and mounts them into live render roots.
// It holds no per-tree state; every Mount returns an independent Root.
type Engine struct {
	loader    ports.InstanceLoader
	parser    *compiler.Parser
	registry  ports.ComponentRegistry
	navigator ports.Navigator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	maxFlushPasses int
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithNavigator sets the target of jump actions.
func WithNavigator(nav ports.Navigator) EngineOption {
	return func(e *Engine) {
		e.navigator = nav
	}
}

// WithMaxFlushPasses overrides DefaultMaxFlushPasses.
func WithMaxFlushPasses(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxFlushPasses = n
		}
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(loader ports.InstanceLoader, registry ports.ComponentRegistry, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:         loader,
		parser:         compiler.NewParser(),
		registry:       registry,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxFlushPasses: DefaultMaxFlushPasses,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve loads, parses and looks up the component of one instance.
// Every failure is reported as a *domain.ResolveError.
func (e *Engine) Resolve(key string) (*domain.Instance, domain.ComponentEntry, error) {
	raw, err := e.loader.GetInstance(key)
	if err != nil {
		return nil, domain.ComponentEntry{}, &domain.ResolveError{InstanceKey: key, Err: err}
	}
	inst, err := e.parser.Parse(key, raw)
	if err != nil {
		return nil, domain.ComponentEntry{}, &domain.ResolveError{InstanceKey: key, Err: err}
	}
	entry, err := e.registry.Lookup(inst.ComponentKey)
	if err != nil {
		return nil, domain.ComponentEntry{}, &domain.ResolveError{
			InstanceKey:  key,
			ComponentKey: inst.ComponentKey,
			Err:          err,
		}
	}
	return inst, entry, nil
}

// Mount resolves rootKey and renders it into a new Root.
// Any resolve or render failure aborts the whole mount; nothing partial is returned.
func (e *Engine) Mount(ctx context.Context, rootKey string, opts ...RootOption) (*Root, error) {
	inst, entry, err := e.Resolve(rootKey)
	if err != nil {
		return nil, err
	}

	r := newRoot(e, opts...)
	top := r.newNode(nil, inst, entry)

	r.mounted = true
	err = r.enter(ctx, func(ctx context.Context) error {
		top.mount(ctx)
		return top.render(ctx)
	})
	if err != nil {
		r.teardown(ctx)
		return nil, err
	}
	r.top = top

	e.logger.Debug("Mounted tree", "root", rootKey, "instances", len(r.arena))
	return r, nil
}

func fire[E any](ctx context.Context, hook func(context.Context, *E), ev *E) {
	if hook != nil {
		hook(ctx, ev)
	}
}
