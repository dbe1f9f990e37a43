package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea/internal/runtime"
	"github.com/aretw0/gaea/pkg/adapters/memory"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/registry"
)

// echo renders its props verbatim under the given type.
func echo(typ string) domain.Component {
	return domain.ComponentFunc(func(props domain.Props, children []*domain.Element) (*domain.Element, error) {
		return domain.NewElement(typ, props, children), nil
	})
}

func testRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.Register("box", echo("box"), registry.AsContainer())
	reg.Register("leaf", echo("leaf"))
	reg.Register("swatch", echo("swatch"), registry.WithDefaults(domain.Props{"color": "red", "size": "m"}))
	return reg
}

func newEngine(t *testing.T, records map[string]string, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	return runtime.NewEngine(memory.NewLoader(records), testRegistry(), opts...)
}

func mount(t *testing.T, eng *runtime.Engine, rootKey string, opts ...runtime.RootOption) *runtime.Root {
	t.Helper()
	root, err := eng.Mount(context.Background(), rootKey, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = root.Unmount(context.Background())
	})
	return root
}

// recorder counts lifecycle hook calls per instance.
type recorder struct {
	mu         sync.Mutex
	renders    map[string]int
	skips      map[string]int
	dispatches []domain.DispatchEvent
	mounts     []string
	unmounts   []string
}

func newRecorder() *recorder {
	return &recorder{renders: map[string]int{}, skips: map[string]int{}}
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRender: func(_ context.Context, e *domain.InstanceEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.renders[e.InstanceKey]++
		},
		OnSkip: func(_ context.Context, e *domain.InstanceEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.skips[e.InstanceKey]++
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dispatches = append(r.dispatches, *e)
		},
		OnMount: func(_ context.Context, e *domain.InstanceEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.mounts = append(r.mounts, e.InstanceKey)
		},
		OnUnmount: func(_ context.Context, e *domain.InstanceEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.unmounts = append(r.unmounts, e.InstanceKey)
		},
	}
}

func (r *recorder) renderCount(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders[key]
}

func (r *recorder) dispatchCount(trigger string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.dispatches {
		if d.Trigger == trigger {
			n++
		}
	}
	return n
}

// navRecorder is a ports.Navigator that remembers every URL.
type navRecorder struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (n *navRecorder) Open(_ context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	return n.err
}
