package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Mask replaces every redacted value.
const Mask = "***"

type redactMiddleware struct {
	passthrough
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks, on write, the static prop values whose key matches
// any of the patterns, at any depth under data.props. It is meant for copying
// trees that carry real sample data into shared stores.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next Store) Store {
		return &redactMiddleware{passthrough: passthrough{next: next}, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) PutInstance(ctx context.Context, key string, data []byte) error {
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("invalid instance record %s: %w", key, err)
	}
	if d, ok := record["data"].(map[string]any); ok {
		if props, ok := d["props"].(map[string]any); ok {
			maskMap(props, m.patterns)
		}
	}
	masked, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return m.next.PutInstance(ctx, key, masked)
}

// maskMap works on a freshly decoded record, so masking in place is safe.
func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if itemMap, ok := item.(map[string]any); ok {
					maskMap(itemMap, patterns)
				}
			}
		}
	}
}
