package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/gaea/pkg/domain"
)

// Parser is responsible for converting raw bytes into an Instance.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes the JSON record stored under key.
// Records written by the editor do not carry their own key, so it is filled in from the store key.
func (p *Parser) Parse(key string, data []byte) (*domain.Instance, error) {
	var inst domain.Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to parse instance %s: %w", key, err)
	}
	if inst.Key == "" {
		inst.Key = key
	}
	if inst.Key != key {
		return nil, fmt.Errorf("instance stored under %q declares key %q", key, inst.Key)
	}
	// Basic validation
	if inst.ComponentKey == "" {
		return nil, fmt.Errorf("instance %s missing gaeaKey", key)
	}
	return &inst, nil
}
