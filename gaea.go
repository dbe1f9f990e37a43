package gaea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/google/uuid"

	"github.com/aretw0/gaea/internal/compiler"
	"github.com/aretw0/gaea/internal/runtime"
	loamAdapter "github.com/aretw0/gaea/pkg/adapters/loam"
	"github.com/aretw0/gaea/pkg/components"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/ports"
)

// ErrWatchUnsupported is returned by Watch when the loader cannot report changes.
var ErrWatchUnsupported = errors.New("current loader does not support watching")

// Engine is the high-level entry point for the Gaea library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime        *runtime.Engine
	loader         ports.InstanceLoader
	registry       ports.ComponentRegistry
	navigator      ports.Navigator
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	maxFlushPasses int
	Name           string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom InstanceLoader, bypassing the default Loam initialization.
func WithLoader(l ports.InstanceLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithRegistry replaces the built-in component set.
func WithRegistry(r ports.ComponentRegistry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithNavigator sets the collaborator that performs jump actions.
func WithNavigator(n ports.Navigator) Option {
	return func(e *Engine) {
		e.navigator = n
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxFlushPasses bounds how many re-render passes one entry point may trigger.
func WithMaxFlushPasses(n int) Option {
	return func(e *Engine) {
		e.maxFlushPasses = n
	}
}

// New initializes a new Gaea Engine.
// By default, it reads instances from a Loam repository at the given path and
// renders them with the built-in components.
// If WithLoader option is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numbers as json.Number across JSON and Markdown documents.
		// The engine never writes instances, so the repository is opened read-only.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}

		typedRepo := loam.NewTypedRepository[loamAdapter.InstanceMetadata](repo)
		eng.loader = loamAdapter.New(typedRepo)
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.registry == nil {
		eng.registry = components.Default()
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("tree", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithNavigator(eng.navigator),
	}
	if eng.maxFlushPasses > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithMaxFlushPasses(eng.maxFlushPasses))
	}

	eng.runtime = runtime.NewEngine(eng.loader, eng.registry, runtimeOpts...)
	return eng, nil
}

// Root is a mounted instance tree. It embeds the runtime root, so Tree, View,
// Publish, Invoke and Unmount are available directly.
type Root struct {
	*runtime.Root

	// ID identifies the mount in logs and host APIs.
	ID  string
	Key string
}

// RootOption configures a single mount.
type RootOption = runtime.RootOption

// WithBus mounts the tree on an existing bus instead of a private one.
func WithBus(b ports.EventBus) RootOption {
	return runtime.WithBus(b)
}

// Instantiate resolves rootKey, mounts its whole subtree in preview mode and renders it.
func (e *Engine) Instantiate(ctx context.Context, rootKey string, opts ...RootOption) (*Root, error) {
	r, err := e.runtime.Mount(ctx, rootKey, opts...)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	e.logger.InfoContext(ctx, "Tree mounted", "root", rootKey, "mount_id", id, "instances", len(r.Mounted()))
	return &Root{Root: r, ID: id, Key: rootKey}, nil
}

// Inspect returns every instance the loader knows about, parsed.
func (e *Engine) Inspect() ([]domain.Instance, error) {
	keys, err := e.loader.ListInstances()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	parser := compiler.NewParser()
	out := make([]domain.Instance, 0, len(keys))
	for _, key := range keys {
		raw, err := e.loader.GetInstance(key)
		if err != nil {
			return nil, fmt.Errorf("failed to load instance %s: %w", key, err)
		}
		inst, err := parser.Parse(key, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *inst)
	}
	return out, nil
}

// Export renders the instance map in the editor's JSON schema.
func (e *Engine) Export() ([]byte, error) {
	instances, err := e.Inspect()
	if err != nil {
		return nil, err
	}
	doc := make(map[string]domain.Instance, len(instances))
	for _, inst := range instances {
		doc[inst.Key] = inst
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Watch returns a channel that signals when the underlying instances change.
// Returns ErrWatchUnsupported if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrWatchUnsupported
}

// Loader returns the underlying InstanceLoader used by the engine.
func (e *Engine) Loader() ports.InstanceLoader {
	return e.loader
}

// Registry returns the component registry used by the engine.
func (e *Engine) Registry() ports.ComponentRegistry {
	return e.registry
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
