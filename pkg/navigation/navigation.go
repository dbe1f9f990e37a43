// Package navigation provides ports.Navigator implementations for hosts that
// cannot open a browser: they record or log the jump instead.
package navigation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/gaea/pkg/ports"
)

// Jump is one recorded navigation.
type Jump struct {
	URL string    `json:"url"`
	At  time.Time `json:"at"`
}

// Recorder keeps every requested URL so HTTP and MCP clients can read them back.
type Recorder struct {
	mu    sync.Mutex
	jumps []Jump
	limit int
}

// NewRecorder keeps at most limit jumps, dropping the oldest. A limit of 0 keeps all.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Open records url.
func (r *Recorder) Open(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jumps = append(r.jumps, Jump{URL: url, At: time.Now()})
	if r.limit > 0 && len(r.jumps) > r.limit {
		r.jumps = slices.Delete(r.jumps, 0, len(r.jumps)-r.limit)
	}
	return nil
}

// Jumps returns a copy of the recorded jumps, oldest first.
func (r *Recorder) Jumps() []Jump {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.jumps)
}

// Last returns the most recent jump.
func (r *Recorder) Last() (Jump, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.jumps) == 0 {
		return Jump{}, false
	}
	return r.jumps[len(r.jumps)-1], true
}

// Logger writes every jump to a structured logger.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a Logger navigator.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Open logs url at info level.
func (l *Logger) Open(ctx context.Context, url string) error {
	l.logger.InfoContext(ctx, "Jump requested", "url", url)
	return nil
}

// Tee opens every URL with each navigator in order. Errors are joined.
func Tee(navs ...ports.Navigator) ports.Navigator {
	navs = slices.DeleteFunc(slices.Clone(navs), func(n ports.Navigator) bool { return n == nil })
	return tee(navs)
}

type tee []ports.Navigator

func (t tee) Open(ctx context.Context, url string) error {
	var errs []error
	for _, n := range t {
		if err := n.Open(ctx, url); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
