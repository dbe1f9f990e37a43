package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/gaea/pkg/domain"
)

// Loader adapts the Loam library to the Gaea InstanceLoader interface.
// Each document in the repository holds one instance.
type Loader struct {
	Repo *loam.TypedRepository[InstanceMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[InstanceMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetInstance retrieves an instance document and re-encodes it as the editor's JSON record.
// A Markdown body, when present, becomes the "text" prop unless the frontmatter sets one.
func (l *Loader) GetInstance(key string) ([]byte, error) {
	ctx := context.Background()

	doc, err := l.Repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: loam get failed for %s: %v", domain.ErrInstanceNotFound, key, err)
	}

	meta := doc.Data
	rawKey := meta.Key
	if rawKey == "" {
		rawKey = doc.ID
	}

	events, err := convertEvents(meta.Data.Events)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", key, err)
	}

	props := meta.Data.Props
	if body := strings.TrimSpace(doc.Content); body != "" {
		if props == nil {
			props = make(map[string]any)
		}
		if _, ok := props["text"]; !ok {
			props["text"] = body
		}
	}

	data := map[string]any{
		"key":     trimExtension(rawKey),
		"gaeaKey": meta.GaeaKey,
		"data": map[string]any{
			"props":  props,
			"events": events,
		},
	}
	if len(meta.Childs) > 0 {
		data["childs"] = trimAll(meta.Childs)
	}
	if meta.Parent != "" {
		data["parentInstanceKey"] = trimExtension(meta.Parent)
	}
	if len(meta.Variables) > 0 {
		data["variables"] = meta.Variables
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instance data: %w", err)
	}
	return bytes, nil
}

// convertEvents decodes loosely typed event maps (JSON or YAML) into the editor's shape.
func convertEvents(raw []any) ([]LoaderEvent, error) {
	events := make([]LoaderEvent, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case map[string]any, map[any]any:
			var ev LoaderEvent
			if err := mapstructure.Decode(v, &ev); err != nil {
				return nil, fmt.Errorf("failed to decode event %d: %w", i, err)
			}
			if ev.Trigger == "" {
				return nil, fmt.Errorf("event %d missing trigger", i)
			}
			events = append(events, ev)
		default:
			return nil, fmt.Errorf("invalid event definition type: %T", v)
		}
	}
	return events, nil
}

// ListInstances lists all instances in the repository.
func (l *Loader) ListInstances() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	keys := make([]string, 0, len(docs))

	for _, doc := range docs {
		rawKey := doc.Data.Key
		if rawKey == "" {
			rawKey = doc.ID
		}
		key := trimExtension(rawKey)

		if existingPath, ok := seen[key]; ok {
			return nil, fmt.Errorf("collision detected: key '%s' is defined in both '%s' and '%s'", key, existingPath, doc.ID)
		}
		seen[key] = doc.ID
		keys = append(keys, key)
	}
	return keys, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

func trimAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = trimExtension(id)
	}
	return out
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
