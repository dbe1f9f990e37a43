package domain

// SiblingState is the variable table a parent shares with its children.
// It is replaced, never mutated, on every update.
type SiblingState map[string]any

// SiblingUpdate is the message a child bubbles to its parent.
type SiblingUpdate struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// SiblingSink receives sibling updates from children. Parents implement it.
type SiblingSink interface {
	Emit(update SiblingUpdate)
}

// Reduce returns a new state with update applied. old is left untouched.
func Reduce(old SiblingState, update SiblingUpdate) SiblingState {
	next := make(SiblingState, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[update.Name] = update.Value
	return next
}

// Project restricts the state to the given keys. Keys absent from the state are omitted.
func (s SiblingState) Project(keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out
}
