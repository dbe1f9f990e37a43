package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/gaea/pkg/domain"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "gaea:instance:"

// Store implements ports.InstanceStore using Redis.
// Records live under prefix+key; a sorted set at prefix+"index" lists them.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for instance records, e.g. for throwaway preview drafts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for instance records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Bridge or Locker can share the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(instanceKey string) string {
	return s.prefix + instanceKey
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) changesChannel() string {
	return s.prefix + "changes"
}

// GetInstance retrieves the raw record of an instance.
func (s *Store) GetInstance(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// ListInstances returns live instance keys, pruning expired ones from the index first.
func (s *Store) ListInstances() ([]string, error) {
	ctx := context.Background()
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired instances: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// PutInstance stores data under key, indexes it and announces the change.
func (s *Store) PutInstance(ctx context.Context, key string, data []byte) error {
	pipe := s.client.Pipeline()

	pipe.Set(ctx, s.key(key), data, s.ttl)

	// Score = expiry time. Without a TTL, far enough in the future.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})
	pipe.Publish(ctx, s.changesChannel(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// DeleteInstance removes the record and its index entry.
func (s *Store) DeleteInstance(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	pipe.Publish(ctx, s.changesChannel(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
	}
	return nil
}

// Watch implements ports.Watchable by following the store's change channel.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.changesChannel())
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
