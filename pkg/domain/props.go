package domain

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Prop keys injected by the engine.
const (
	PropPreview = "isPreview"
	PropRef     = "ref"
)

// Props is the assembled property bag handed to a component.
type Props map[string]any

// Callback is a function prop synthesized from callback-triggered events.
type Callback func(args ...any)

// RefFunc receives the element a component rendered for an instance.
type RefFunc func(el *Element)

// Clone returns a deep copy of nested maps and slices. Leaf values are shared.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return Props(cloneMap(p))
}

// Merge deep-merges src into p. Nested maps are merged key by key, everything else is replaced.
func (p Props) Merge(src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := p[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merged := cloneMap(dstMap)
			Props(merged).Merge(srcMap)
			p[k] = merged
			continue
		}
		p[k] = cloneValue(v)
	}
}

// FillDefaults copies entries from defaults whose keys are unset or nil in p.
func (p Props) FillDefaults(defaults Props) {
	for k, v := range defaults {
		if cur, ok := p[k]; ok && cur != nil {
			continue
		}
		p[k] = cloneValue(v)
	}
}

// Set assigns a copy of value at a dotted path, creating intermediate maps.
// Numeric segments index into existing slices. Maps and slices passed in are
// never written to by later calls.
func (p Props) Set(path string, value any) {
	if path == "" {
		return
	}
	value = cloneValue(value)
	segments := strings.Split(path, ".")
	var cur any = map[string]any(p)
	for i, seg := range segments {
		last := i == len(segments)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				node[seg] = value
				return
			}
			next, ok := node[seg]
			if !ok || !isContainer(next) {
				next = map[string]any{}
				node[seg] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return
			}
			if last {
				node[idx] = value
				return
			}
			if !isContainer(node[idx]) {
				node[idx] = map[string]any{}
			}
			cur = node[idx]
		default:
			return
		}
	}
}

// Get reads the value at a dotted path.
func (p Props) Get(path string) (any, bool) {
	var cur any = map[string]any(p)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case Props:
		return Props(cloneMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
