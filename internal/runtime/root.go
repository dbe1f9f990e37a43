package runtime

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"

	"github.com/aretw0/gaea/pkg/bus"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/ports"
)

// Root is one mounted instance tree.
//
// Entry points (Publish, Invoke, View, Unmount and synthesized callbacks) are serialized.
// A call made from inside a running entry point, such as a subscribe handler
// publishing again, runs inline on the same goroutine. The outermost call flushes
// dirty instances before returning.
type Root struct {
	engine  *Engine
	bus     ports.EventBus
	ownsBus bool

	mu    sync.Mutex
	owner atomic.Int64
	ctx   context.Context

	top     *node
	arena   map[string]*node
	dirty   map[*node]struct{}
	mounted bool

	errMu   sync.Mutex
	lastErr error
}

// RootOption configures a Root at mount time.
type RootOption func(*Root)

// WithBus shares an existing bus with the root. The caller keeps ownership and closes it.
func WithBus(b ports.EventBus) RootOption {
	return func(r *Root) {
		if b != nil {
			r.bus = b
			r.ownsBus = false
		}
	}
}

func newRoot(e *Engine, opts ...RootOption) *Root {
	r := &Root{
		engine: e,
		arena:  make(map[string]*node),
		dirty:  make(map[*node]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.bus == nil {
		r.bus = bus.New(bus.WithLogger(e.logger))
		r.ownsBus = true
	}
	return r
}

// Bus returns the event bus the root's subscriptions live on.
func (r *Root) Bus() ports.EventBus {
	return r.bus
}

// Tree returns the live rendered tree.
// It is mutated in place by later updates; concurrent readers should use View.
func (r *Root) Tree() *domain.Element {
	if r.top == nil {
		return nil
	}
	return r.top.el
}

// View runs fn with the rendered tree while no update can run.
// It does not flush, so instances left dirty by a failed update are shown as last rendered.
func (r *Root) View(_ context.Context, fn func(tree *domain.Element) error) error {
	var err error
	r.read(func() {
		if !r.mounted {
			err = domain.ErrUnmounted
			return
		}
		err = fn(r.top.el)
	})
	return err
}

// Publish delivers payload to every handler subscribed to channel, then flushes.
func (r *Root) Publish(ctx context.Context, channel string, payload any) error {
	return r.enter(ctx, func(ctx context.Context) error {
		r.bus.Publish(ctx, channel, payload)
		return nil
	})
}

// Invoke calls the callback prop field synthesized for instanceKey, then flushes.
func (r *Root) Invoke(ctx context.Context, instanceKey, field string, args ...any) error {
	return r.enter(ctx, func(ctx context.Context) error {
		n, ok := r.arena[instanceKey]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnmounted, instanceKey)
		}
		cb, ok := n.callbacks[field]
		if !ok {
			return fmt.Errorf("%w: %s.%s", domain.ErrCallbackNotFound, instanceKey, field)
		}
		cb(args...)
		return nil
	})
}

// Handle returns the element captured through the ref prop of instanceKey.
func (r *Root) Handle(instanceKey string) *domain.Element {
	var el *domain.Element
	r.read(func() {
		if n, ok := r.arena[instanceKey]; ok {
			el = n.handle
		}
	})
	return el
}

// Mounted returns the keys of every mounted instance, sorted.
func (r *Root) Mounted() []string {
	var keys []string
	r.read(func() {
		keys = slices.Sorted(maps.Keys(r.arena))
	})
	return keys
}

// Callbacks returns the callback fields exposed by instanceKey, sorted.
func (r *Root) Callbacks(instanceKey string) []string {
	var fields []string
	r.read(func() {
		if n, ok := r.arena[instanceKey]; ok {
			fields = slices.Sorted(maps.Keys(n.callbacks))
		}
	})
	return fields
}

// Subscriptions counts the bus registrations held by mounted instances.
func (r *Root) Subscriptions() int {
	total := 0
	r.read(func() {
		for _, n := range r.arena {
			total += len(n.subs)
		}
	})
	return total
}

// State returns a copy of the sibling state held by instanceKey.
func (r *Root) State(instanceKey string) domain.SiblingState {
	var state domain.SiblingState
	r.read(func() {
		if n, ok := r.arena[instanceKey]; ok {
			state = maps.Clone(n.siblings)
		}
	})
	return state
}

// Err returns the last error raised by a callback or a bus delivery that ran
// outside Invoke and Publish.
func (r *Root) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.lastErr
}

func (r *Root) recordErr(err error) {
	r.engine.logger.Error("Update failed", "error", err)
	r.errMu.Lock()
	r.lastErr = err
	r.errMu.Unlock()
}

// Unmount tears the tree down, deregistering every subscription.
// The bus is closed when the root created it.
func (r *Root) Unmount(ctx context.Context) error {
	return r.enter(ctx, func(ctx context.Context) error {
		r.teardown(ctx)
		return nil
	})
}

func (r *Root) teardown(ctx context.Context) {
	if r.top != nil {
		r.top.unmount(ctx)
	}
	for _, n := range r.arena {
		n.unmount(ctx)
	}
	clear(r.arena)
	clear(r.dirty)
	r.mounted = false
	if c, ok := r.bus.(interface{ Close() }); ok && r.ownsBus {
		c.Close()
	}
}

// enter runs fn as an entry point. The outermost call takes the lock and flushes.
func (r *Root) enter(ctx context.Context, fn func(ctx context.Context) error) error {
	gid := goid.Get()
	if r.owner.Load() == gid {
		return fn(r.ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.owner.Store(gid)
	r.ctx = ctx
	defer func() {
		r.ctx = nil
		r.owner.Store(0)
	}()

	if !r.mounted {
		return domain.ErrUnmounted
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return r.flush(ctx)
}

// read runs fn under the lock unless the calling goroutine already holds it.
func (r *Root) read(fn func()) {
	if r.owner.Load() == goid.Get() {
		fn()
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

func (r *Root) markDirty(n *node) {
	r.dirty[n] = struct{}{}
}

// flush re-renders dirty instances, shallowest first, until nothing is dirty.
// When a render fails, the failed instance and the rest of its batch stay dirty.
func (r *Root) flush(ctx context.Context) error {
	for pass := 0; len(r.dirty) > 0; pass++ {
		if pass >= r.engine.maxFlushPasses {
			clear(r.dirty)
			return fmt.Errorf("%w after %d passes", domain.ErrUpdateLoop, pass)
		}

		batch := slices.Collect(maps.Keys(r.dirty))
		clear(r.dirty)
		slices.SortFunc(batch, func(a, b *node) int {
			if c := cmp.Compare(a.depth, b.depth); c != 0 {
				return c
			}
			return cmp.Compare(a.inst.Key, b.inst.Key)
		})

		for i, n := range batch {
			if !n.mounted {
				continue
			}
			if err := n.update(ctx, n.data); err != nil {
				// Unfinished work is retried by the next entry point.
				for _, rest := range batch[i:] {
					r.markDirty(rest)
				}
				return err
			}
		}
	}
	return nil
}
