package domain

import (
	"encoding/json"
	"fmt"
)

// Trigger kinds as written by the editor.
const (
	TriggerInit      = "init"
	TriggerSubscribe = "subscribe"
	TriggerCallback  = "callback"
)

// Action kinds as written by the editor.
const (
	ActionNone             = "none"
	ActionPassSiblingNodes = "passingSiblingNodes"
	ActionJump             = "jump"
)

// Trigger is the condition under which an event's action runs.
// The set of variants is closed: InitTrigger, SubscribeTrigger, CallbackTrigger, UnknownTrigger.
type Trigger interface {
	Kind() string
	isTrigger()
}

// InitTrigger fires once when the instance mounts.
type InitTrigger struct{}

// SubscribeTrigger fires whenever Channel is published on the bus.
type SubscribeTrigger struct {
	Channel string `json:"name"`
}

// CallbackTrigger exposes the event as a function prop named Field.
type CallbackTrigger struct {
	Field string `json:"field"`
}

// UnknownTrigger keeps an unrecognized trigger so it round-trips. It is never wired.
type UnknownTrigger struct {
	Name string
}

func (InitTrigger) Kind() string      { return TriggerInit }
func (SubscribeTrigger) Kind() string { return TriggerSubscribe }
func (CallbackTrigger) Kind() string  { return TriggerCallback }
func (t UnknownTrigger) Kind() string { return t.Name }

func (InitTrigger) isTrigger()      {}
func (SubscribeTrigger) isTrigger() {}
func (CallbackTrigger) isTrigger()  {}
func (UnknownTrigger) isTrigger()   {}

// Action is the effect an event performs.
// The set of variants is closed: NoneAction, PassSiblingNodesAction, JumpAction, UnknownAction.
type Action interface {
	Kind() string
	isAction()
}

// NoneAction does nothing.
type NoneAction struct{}

// SiblingMapping names the sibling variable a positional value is published as.
type SiblingMapping struct {
	Name string `json:"name"`
}

// PassSiblingNodesAction re-broadcasts positional values to the parent as sibling state.
// A nil Mappings means the editor omitted actionData.data.
type PassSiblingNodesAction struct {
	Mappings []SiblingMapping `json:"data,omitempty"`
}

// JumpAction navigates to an external URL.
type JumpAction struct {
	URL string `json:"url"`
}

// UnknownAction keeps an unrecognized action. Dispatching it is a no-op.
type UnknownAction struct {
	Name string
}

func (NoneAction) Kind() string             { return ActionNone }
func (PassSiblingNodesAction) Kind() string { return ActionPassSiblingNodes }
func (JumpAction) Kind() string             { return ActionJump }
func (a UnknownAction) Kind() string        { return a.Name }

func (NoneAction) isAction()             {}
func (PassSiblingNodesAction) isAction() {}
func (JumpAction) isAction()             {}
func (UnknownAction) isAction()          {}

// Event pairs a trigger with an action. Any trigger may carry any action.
type Event struct {
	Trigger Trigger
	Action  Action
}

// wireEvent is the editor's serialized event shape.
type wireEvent struct {
	Trigger     string          `json:"trigger"`
	TriggerData json.RawMessage `json:"triggerData,omitempty"`
	Action      string          `json:"action"`
	ActionData  json.RawMessage `json:"actionData,omitempty"`
}

// legacyCallback is the older callback shape where the field lived under "trigger".
type legacyCallback struct {
	Field   string `json:"field"`
	Trigger string `json:"trigger"`
}

// UnmarshalJSON decodes the editor's event format into typed variants.
// Unrecognized kinds decode to UnknownTrigger/UnknownAction instead of failing.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	trigger, err := decodeTrigger(w.Trigger, w.TriggerData)
	if err != nil {
		return err
	}
	action, err := decodeAction(w.Action, w.ActionData)
	if err != nil {
		return err
	}

	e.Trigger = trigger
	e.Action = action
	return nil
}

// MarshalJSON encodes the event back into the editor's format.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{}
	if e.Trigger != nil {
		w.Trigger = e.Trigger.Kind()
		switch t := e.Trigger.(type) {
		case SubscribeTrigger, CallbackTrigger:
			data, err := json.Marshal(t)
			if err != nil {
				return nil, err
			}
			w.TriggerData = data
		}
	}
	if e.Action != nil {
		w.Action = e.Action.Kind()
		switch a := e.Action.(type) {
		case PassSiblingNodesAction, JumpAction:
			data, err := json.Marshal(a)
			if err != nil {
				return nil, err
			}
			w.ActionData = data
		}
	}
	return json.Marshal(w)
}

func decodeTrigger(kind string, data json.RawMessage) (Trigger, error) {
	switch kind {
	case TriggerInit:
		return InitTrigger{}, nil
	case TriggerSubscribe:
		var t SubscribeTrigger
		if err := unmarshalOptional(data, &t); err != nil {
			return nil, fmt.Errorf("invalid subscribe triggerData: %w", err)
		}
		return t, nil
	case TriggerCallback:
		var lc legacyCallback
		if err := unmarshalOptional(data, &lc); err != nil {
			return nil, fmt.Errorf("invalid callback triggerData: %w", err)
		}
		field := lc.Field
		if field == "" {
			field = lc.Trigger
		}
		return CallbackTrigger{Field: field}, nil
	default:
		return UnknownTrigger{Name: kind}, nil
	}
}

func decodeAction(kind string, data json.RawMessage) (Action, error) {
	switch kind {
	case ActionNone:
		return NoneAction{}, nil
	case ActionPassSiblingNodes:
		var a PassSiblingNodesAction
		if err := unmarshalOptional(data, &a); err != nil {
			return nil, fmt.Errorf("invalid passingSiblingNodes actionData: %w", err)
		}
		return a, nil
	case ActionJump:
		var a JumpAction
		if err := unmarshalOptional(data, &a); err != nil {
			return nil, fmt.Errorf("invalid jump actionData: %w", err)
		}
		return a, nil
	default:
		return UnknownAction{Name: kind}, nil
	}
}

func unmarshalOptional(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}
