package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/logging"
	boltAdapter "github.com/aretw0/gaea/pkg/adapters/bolt"
	fileAdapter "github.com/aretw0/gaea/pkg/adapters/file"
	"github.com/aretw0/gaea/pkg/adapters/process"
	redisAdapter "github.com/aretw0/gaea/pkg/adapters/redis"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/observability"
	"github.com/aretw0/gaea/pkg/persistence/middleware"
	"github.com/aretw0/gaea/pkg/ports"
)

// logWriter receives CLI logs. Stdout is kept for rendered output.
var logWriter io.Writer = os.Stderr

// Options selects where instances are read from and how the CLI logs.
// At most one of File, Redis and Bolt may be set; otherwise Dir is opened with Loam.
type Options struct {
	Dir      string
	File     string
	Redis    string
	Bolt     string
	Root     string
	LogLevel string
	LogJSON  bool
	// EncryptionKey is a base64 AES-256 key. Records are then stored as encrypted envelopes.
	EncryptionKey string
	// Redact lists patterns of prop keys masked on write.
	Redact []string
	// Openers is a YAML or JSON file of commands that handle jump URLs.
	Openers string
}

// Source is an opened instance backend.
type Source struct {
	Loader ports.InstanceLoader
	// Store is set when the backend accepts writes.
	Store middleware.Store
	// Redis is set for the Redis backend so bridges and lockers can share its client.
	Redis *redisAdapter.Store
	// Root is the root key declared by the backend, if any.
	Root string

	closers []func() error
}

// Close releases every resource held by the source.
func (s *Source) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Logger builds the CLI logger from the configured level.
func (o Options) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(logWriter, level, o.LogJSON), nil
}

// Open connects to the selected backend. A Loam directory yields a Source with no Loader,
// leaving gaea.New to open it read-only.
func (o Options) Open() (*Source, error) {
	set := 0
	for _, v := range []string{o.File, o.Redis, o.Bolt} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("--file, --redis and --bolt are mutually exclusive")
	}

	src := &Source{}
	switch {
	case o.File != "":
		store, err := fileAdapter.Open(o.File)
		if err != nil {
			return nil, err
		}
		src.Loader, src.Store, src.Root = store, store, store.Root()
	case o.Redis != "":
		client, err := RedisClient(o.Redis)
		if err != nil {
			return nil, err
		}
		store := redisAdapter.NewFromClient(client)
		src.Loader, src.Store, src.Redis = store, store, store
		src.closers = append(src.closers, store.Close)
	case o.Bolt != "":
		store, err := boltAdapter.Open(o.Bolt)
		if err != nil {
			return nil, err
		}
		src.Loader, src.Store = store, store
		src.closers = append(src.closers, store.Close)
	}

	if err := o.wrap(src); err != nil {
		src.Close()
		return nil, err
	}
	return src, nil
}

// wrap applies the configured store middlewares.
func (o Options) wrap(src *Source) error {
	var mws []middleware.Middleware
	if len(o.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(o.Redact)
		if err != nil {
			return err
		}
		mws = append(mws, mw)
	}
	if o.EncryptionKey != "" {
		key, err := middleware.ParseKey(o.EncryptionKey)
		if err != nil {
			return err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return err
		}
		mws = append(mws, mw)
	}
	if len(mws) == 0 {
		return nil
	}
	if src.Store == nil {
		return fmt.Errorf("encryption and redaction need --file, --redis or --bolt")
	}
	src.Store = middleware.Chain(src.Store, mws...)
	src.Loader = src.Store
	return nil
}

// RedisClient accepts either a redis:// URL or a bare host:port.
func RedisClient(addr string) (*backend.Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opts, err := backend.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address: %w", err)
	}
	return backend.NewClient(opts), nil
}

// EngineConfig carries what a command adds on top of the source.
type EngineConfig struct {
	Hooks     domain.LifecycleHooks
	Navigator ports.Navigator
}

// NewEngine builds an engine over src. Lifecycle events are logged at debug level.
// Jumps go to cfg's navigator, or are logged, and then to the configured openers.
func NewEngine(o Options, src *Source, logger *slog.Logger, cfg EngineConfig) (*gaea.Engine, error) {
	nav := cfg.Navigator
	if nav == nil {
		nav = navigation.NewLogger(logger)
	}
	if o.Openers != "" {
		rules, err := process.LoadOpeners(o.Openers)
		if err != nil {
			return nil, err
		}
		opener, err := process.NewOpener(rules, process.WithLogger(logger), process.WithBaseDir(filepath.Dir(o.Openers)))
		if err != nil {
			return nil, err
		}
		nav = navigation.Tee(nav, opener)
	}
	opts := []gaea.Option{
		gaea.WithLogger(logger),
		gaea.WithLifecycleHooks(observability.LogHooks(logger).Combine(cfg.Hooks)),
		gaea.WithNavigator(nav),
	}
	dir := o.Dir
	if src.Loader != nil {
		opts = append(opts, gaea.WithLoader(src.Loader))
		dir = ""
	} else if dir == "" {
		dir = "."
	}

	eng, err := gaea.New(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing gaea: %w", err)
	}
	return eng, nil
}
