package bolt

import (
	"context"
	"fmt"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aretw0/gaea/pkg/domain"
)

const bucketInstances = "instances"

// Store implements ports.InstanceStore in an embedded bbolt database.
// Records are kept as raw JSON in a single bucket keyed by instance key.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketInstances))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize instances bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetInstance retrieves the raw record stored under key.
func (s *Store) GetInstance(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInstances))
		v := b.Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
		}
		// v is only valid inside the transaction.
		data = slices.Clone(v)
		return nil
	})
	return data, err
}

// ListInstances returns every stored key in byte order.
func (s *Store) ListInstances() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInstances))
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

// PutInstance stores data under key.
func (s *Store) PutInstance(ctx context.Context, key string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInstances))
		return b.Put([]byte(key), data)
	})
}

// DeleteInstance removes key.
func (s *Store) DeleteInstance(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInstances))
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
		}
		return b.Delete([]byte(key))
	})
}
