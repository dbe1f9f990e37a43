package file

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/gaea/pkg/domain"
)

// Document is a whole instance tree in one file.
// The editor exports a bare mapping of instance key to record; that form is accepted too.
type Document struct {
	Root      string                    `yaml:"root,omitempty" json:"root,omitempty"`
	Instances map[string]map[string]any `yaml:"instances" json:"instances"`
}

// Store implements ports.InstanceStore on top of a single YAML or JSON document.
// Writes rewrite the whole file atomically.
type Store struct {
	Path string

	mu  sync.RWMutex
	doc Document
}

// Open reads the document at path. A missing file yields an empty store that is created on first write.
func Open(path string) (*Store, error) {
	s := &Store{Path: path, doc: Document{Instances: map[string]map[string]any{}}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read tree document: %w", err)
	}

	doc, err := Decode(data, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	s.doc = doc
	return s, nil
}

// Decode parses a tree document in either the wrapped or the bare form.
func Decode(data []byte, asJSON bool) (Document, error) {
	var raw map[string]any
	if asJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Document{}, err
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Document{}, err
		}
	}

	doc := Document{Instances: map[string]map[string]any{}}
	instances := raw
	if wrapped, ok := raw["instances"]; ok {
		m, ok := normalize(wrapped).(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("instances must be a mapping, got %T", wrapped)
		}
		instances = m
		if root, ok := raw["root"].(string); ok {
			doc.Root = root
		}
	}

	for key, v := range instances {
		record, ok := normalize(v).(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("instance %s must be a mapping, got %T", key, v)
		}
		doc.Instances[key] = record
	}
	return doc, nil
}

// Root returns the root key declared by the document, if any.
func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Root
}

// GetInstance returns the JSON record stored under key.
func (s *Store) GetInstance(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.doc.Instances[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instance %s: %w", key, err)
	}
	return data, nil
}

// ListInstances returns every key in the document, sorted.
func (s *Store) ListInstances() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.doc.Instances)), nil
}

// PutInstance replaces the record under key and rewrites the document.
func (s *Store) PutInstance(ctx context.Context, key string, data []byte) error {
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("invalid instance record %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Instances[key] = record
	return s.flush()
}

// DeleteInstance removes key and rewrites the document.
func (s *Store) DeleteInstance(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doc.Instances[key]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
	}
	delete(s.doc.Instances, key)
	return s.flush()
}

// flush writes the document to a temporary file and renames it over Path.
func (s *Store) flush() error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isJSON(s.Path) {
		data, err = json.MarshalIndent(s.doc, "", "  ")
	} else {
		data, err = yaml.Marshal(s.doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal tree document: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(s.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer os.Remove(tmpName)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to rename document: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// normalize converts YAML's map[any]any into map[string]any, recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	default:
		return v
	}
}
