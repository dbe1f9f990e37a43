package dsl

import (
	"fmt"

	"github.com/aretw0/gaea/pkg/adapters/memory"
	"github.com/aretw0/gaea/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	order     []string
	instances map[string]*InstanceBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{
		instances: make(map[string]*InstanceBuilder),
	}
}

// Add creates a new instance in the tree.
// If the instance already exists, it returns the existing builder.
func (b *Builder) Add(key string) *InstanceBuilder {
	if ib, ok := b.instances[key]; ok {
		return ib
	}
	ib := &InstanceBuilder{
		inst:    domain.Instance{Key: key},
		builder: b,
	}
	b.instances[key] = ib
	b.order = append(b.order, key)
	return ib
}

// Instances returns the built instances in insertion order, with parent keys filled in.
func (b *Builder) Instances() ([]domain.Instance, error) {
	parents := make(map[string]string)
	for _, key := range b.order {
		for _, child := range b.instances[key].inst.Children {
			if prev, ok := parents[child]; ok && prev != key {
				return nil, fmt.Errorf("instance %s listed by both %s and %s", child, prev, key)
			}
			parents[child] = key
		}
	}

	out := make([]domain.Instance, 0, len(b.order))
	for _, key := range b.order {
		inst := b.instances[key].inst
		if inst.ComponentKey == "" {
			return nil, fmt.Errorf("instance %s has no component", key)
		}
		if inst.ParentKey == "" {
			inst.ParentKey = parents[key]
		}
		out = append(out, inst)
	}
	return out, nil
}

// Build compiles the tree into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	instances, err := b.Instances()
	if err != nil {
		return nil, err
	}

	loader, err := memory.NewFromInstances(instances...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
