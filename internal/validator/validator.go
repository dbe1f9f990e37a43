package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/gaea/internal/compiler"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/ports"
)

// Report lists what a validation pass found.
// Errors prevent the tree from mounting; warnings are tolerated at runtime.
type Report struct {
	Visited  []string
	Errors   []string
	Warnings []string
}

// Err summarizes the errors, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateTree crawls the tree from rootKey depth first and reports missing
// instances, unregistered components, cycles and instances listed twice.
// Schema leniencies the runtime tolerates are reported as warnings.
func ValidateTree(loader ports.InstanceLoader, parser *compiler.Parser, registry ports.ComponentRegistry, rootKey string) *Report {
	v := &walker{
		loader:   loader,
		parser:   parser,
		registry: registry,
		report:   &Report{},
		parents:  make(map[string]string),
	}
	v.visit(rootKey, "", nil)
	return v.report
}

type walker struct {
	loader   ports.InstanceLoader
	parser   *compiler.Parser
	registry ports.ComponentRegistry
	report   *Report
	parents  map[string]string
}

func (v *walker) visit(key, parent string, path []string) {
	if slices.Contains(path, key) {
		v.report.errorf("Cycle: %s -> %s", strings.Join(path, " -> "), key)
		return
	}
	if prev, seen := v.parents[key]; seen {
		if prev == parent {
			v.report.errorf("Instance '%s' listed twice by '%s'", key, parent)
		} else {
			v.report.errorf("Instance '%s' listed by both '%s' and '%s'", key, prev, parent)
		}
		return
	}
	v.parents[key] = parent
	v.report.Visited = append(v.report.Visited, key)

	raw, err := v.loader.GetInstance(key)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			v.report.errorf("Missing instance '%s'", key)
		} else {
			v.report.errorf("Failed to load '%s': %v", key, err)
		}
		return
	}
	inst, err := v.parser.Parse(key, raw)
	if err != nil {
		v.report.errorf("%v", err)
		return
	}

	entry, lookupErr := v.registry.Lookup(inst.ComponentKey)
	if lookupErr != nil {
		v.report.errorf("Instance '%s': component '%s' not registered", key, inst.ComponentKey)
	}

	if parent != "" && inst.ParentKey != parent {
		v.report.warnf("Instance '%s' declares parent '%s' but is listed by '%s'", key, inst.ParentKey, parent)
	}
	v.checkBindings(inst, parent)
	v.checkEvents(inst, parent)

	if len(inst.Children) == 0 {
		return
	}
	if lookupErr == nil && !entry.Capabilities.IsContainer {
		v.report.warnf("Instance '%s' lists children but '%s' is not a container; they are never rendered", key, inst.ComponentKey)
		return
	}
	childPath := append(slices.Clone(path), key)
	for _, child := range inst.Children {
		v.visit(child, key, childPath)
	}
}

func (v *walker) checkBindings(inst *domain.Instance, parent string) {
	for _, path := range sortedKeys(inst.Variables) {
		b := inst.Variables[path]
		switch {
		case b.Type != domain.BindingSibling:
			v.report.warnf("Instance '%s': binding '%s' has unsupported type '%s'", inst.Key, path, b.Type)
		case b.Key == "":
			v.report.warnf("Instance '%s': binding '%s' has no key", inst.Key, path)
		case parent == "":
			v.report.warnf("Instance '%s': binding '%s' on the root never receives a value", inst.Key, path)
		}
	}
}

func (v *walker) checkEvents(inst *domain.Instance, parent string) {
	for i, ev := range inst.Data.Events {
		switch t := ev.Trigger.(type) {
		case domain.UnknownTrigger:
			v.report.warnf("Instance '%s': event %d has unknown trigger '%s'", inst.Key, i, t.Name)
		case domain.SubscribeTrigger:
			if t.Channel == "" {
				v.report.warnf("Instance '%s': event %d subscribes to an empty channel", inst.Key, i)
			}
		case domain.CallbackTrigger:
			if t.Field == "" {
				v.report.warnf("Instance '%s': event %d has a callback without field", inst.Key, i)
			}
		}

		switch a := ev.Action.(type) {
		case domain.UnknownAction:
			v.report.warnf("Instance '%s': event %d has unknown action '%s'", inst.Key, i, a.Name)
		case domain.JumpAction:
			if a.URL == "" {
				v.report.warnf("Instance '%s': event %d jumps to an empty URL", inst.Key, i)
			}
		case domain.PassSiblingNodesAction:
			if parent == "" {
				v.report.warnf("Instance '%s': event %d passes sibling nodes from the root; updates are dropped", inst.Key, i)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
