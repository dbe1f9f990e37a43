package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// URLEnv carries the jump URL into the opener's environment.
const URLEnv = "GAEA_URL"

// URLPlaceholder in an argument list is replaced by the URL as one whole argument.
const URLPlaceholder = "{{url}}"

// ErrNoOpener is returned when no rule matches a URL.
var ErrNoOpener = errors.New("no opener matches url")

type rule struct {
	OpenerConfig
	re *regexp.Regexp
}

// Opener implements ports.Navigator by running local commands.
// Only configured commands run (allow-listing); the first rule whose Match fits the URL wins.
type Opener struct {
	rules   []rule
	baseDir string
	timeout time.Duration
	logger  *slog.Logger
}

// OpenerOption configures the opener.
type OpenerOption func(*Opener)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) OpenerOption {
	return func(o *Opener) {
		o.baseDir = dir
	}
}

// WithTimeout bounds each command run. Zero disables the bound.
func WithTimeout(d time.Duration) OpenerOption {
	return func(o *Opener) {
		o.timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) OpenerOption {
	return func(o *Opener) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOpener compiles rules into an opener.
func NewOpener(rules []OpenerConfig, opts ...OpenerOption) (*Opener, error) {
	o := &Opener{
		timeout: 10 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, cfg := range rules {
		re, err := regexp.Compile(cfg.Match)
		if err != nil {
			return nil, fmt.Errorf("opener %s: %w", cfg.Name, err)
		}
		o.rules = append(o.rules, rule{OpenerConfig: cfg, re: re})
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Open runs the first matching command for url.
//
// The URL is never spliced into a shell line. It reaches the process through
// GAEA_URL and, when an argument is exactly "{{url}}", as that one argument.
func (o *Opener) Open(ctx context.Context, url string) error {
	r, ok := o.match(url)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoOpener, url)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		if a == URLPlaceholder {
			a = url
		}
		args[i] = a
	}

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = o.baseDir
	env := cmd.Environ()
	for k, v := range r.Environment {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(env, URLEnv+"="+url)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("opener %s failed: %w. Stderr: %s", r.Name, err, strings.TrimSpace(stderr.String()))
	}
	o.logger.Debug("Jump opened", "opener", r.Name, "url", url)
	return nil
}

func (o *Opener) match(url string) (rule, bool) {
	for _, r := range o.rules {
		if r.re.MatchString(url) {
			return r, true
		}
	}
	return rule{}, false
}
