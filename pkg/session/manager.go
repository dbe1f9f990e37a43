package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/logging"
)

// ErrMountNotFound is returned for an unknown mount ID.
var ErrMountNotFound = errors.New("mount not found")

// ErrTooManyMounts is returned by Open when the manager is full.
var ErrTooManyMounts = errors.New("too many mounts")

// Mounter instantiates trees. *gaea.Engine satisfies it.
type Mounter interface {
	Instantiate(ctx context.Context, rootKey string, opts ...gaea.RootOption) (*gaea.Root, error)
}

// Info describes one live mount.
type Info struct {
	ID        string `json:"id"`
	Root      string `json:"root"`
	Instances int    `json:"instances"`
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates mount access.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	engine Mounter

	mu     sync.Mutex
	locks  map[string]*lockEntry
	mounts map[string]*gaea.Root

	limit  int
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLimit caps the number of live mounts. Zero means unlimited.
func WithLimit(n int) Option {
	return func(m *Manager) {
		m.limit = n
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager mounting trees through engine.
func NewManager(engine Mounter, opts ...Option) *Manager {
	m := &Manager{
		engine: engine,
		locks:  make(map[string]*lockEntry),
		mounts: make(map[string]*gaea.Root),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Open mounts rootKey and returns the new root.
func (m *Manager) Open(ctx context.Context, rootKey string) (*gaea.Root, error) {
	m.mu.Lock()
	full := m.limit > 0 && len(m.mounts) >= m.limit
	m.mu.Unlock()
	if full {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyMounts, m.limit)
	}

	root, err := m.engine.Instantiate(ctx, rootKey)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.mounts[root.ID] = root
	m.mu.Unlock()
	m.logger.Debug("Mount opened", "mount_id", root.ID, "root", rootKey)
	return root, nil
}

// Get returns the root mounted under id.
func (m *Manager) Get(id string) (*gaea.Root, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.mounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMountNotFound, id)
	}
	return root, nil
}

// WithRoot runs fn with the root mounted under id while holding its lock.
func (m *Manager) WithRoot(ctx context.Context, id string, fn func(ctx context.Context, root *gaea.Root) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		root, err := m.Get(id)
		if err != nil {
			return err
		}
		return fn(ctx, root)
	})
}

// Close unmounts and forgets the root under id.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		root, ok := m.mounts[id]
		delete(m.mounts, id)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrMountNotFound, id)
		}
		m.logger.Debug("Mount closed", "mount_id", id)
		return root.Unmount(ctx)
	})
}

// CloseAll unmounts every root. Errors are joined.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error
	for _, info := range m.List() {
		if err := m.Close(ctx, info.ID); err != nil && !errors.Is(err, ErrMountNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Refresh remounts every root from the current instances, keeping mount IDs.
// Instances are resolved once per mount, so edits only show up after a refresh.
// A root that fails to remount keeps its previous tree.
func (m *Manager) Refresh(ctx context.Context) error {
	var errs []error
	for _, info := range m.List() {
		err := m.WithLock(ctx, info.ID, func(ctx context.Context) error {
			old, err := m.Get(info.ID)
			if err != nil {
				return nil
			}
			fresh, err := m.engine.Instantiate(ctx, old.Key)
			if err != nil {
				return fmt.Errorf("remount %s: %w", info.ID, err)
			}
			fresh.ID = old.ID

			m.mu.Lock()
			m.mounts[info.ID] = fresh
			m.mu.Unlock()

			if err := old.Unmount(ctx); err != nil {
				m.logger.Warn("Failed to unmount replaced tree", "mount_id", info.ID, "err", err)
			}
			return nil
		})
		if err != nil {
			m.logger.Error("Refresh failed", "mount_id", info.ID, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broadcast publishes payload on channel in every mount. Errors are joined.
func (m *Manager) Broadcast(ctx context.Context, channel string, payload any) error {
	var errs []error
	for _, info := range m.List() {
		err := m.WithRoot(ctx, info.ID, func(ctx context.Context, root *gaea.Root) error {
			return root.Publish(ctx, channel, payload)
		})
		if err != nil && !errors.Is(err, ErrMountNotFound) {
			errs = append(errs, fmt.Errorf("publish to %s: %w", info.ID, err))
		}
	}
	return errors.Join(errs...)
}

// List describes the live mounts, sorted by ID.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, 0, len(m.mounts))
	for id, root := range m.mounts {
		out = append(out, Info{ID: id, Root: root.Key, Instances: len(root.Mounted())})
	}
	slices.SortFunc(out, func(a, b Info) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Subscriptions counts live bus subscriptions across every mount.
func (m *Manager) Subscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, root := range m.mounts {
		total += root.Subscriptions()
	}
	return total
}

// WithLock executes fn while holding the lock for id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn(ctx)
}
