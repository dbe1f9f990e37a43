package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantTrigger Trigger
		wantAction  Action
	}{
		{
			name:        "init none",
			raw:         `{"trigger":"init","action":"none"}`,
			wantTrigger: InitTrigger{},
			wantAction:  NoneAction{},
		},
		{
			name:        "subscribe channel",
			raw:         `{"trigger":"subscribe","triggerData":{"name":"refresh"},"action":"none"}`,
			wantTrigger: SubscribeTrigger{Channel: "refresh"},
			wantAction:  NoneAction{},
		},
		{
			name:        "callback field",
			raw:         `{"trigger":"callback","triggerData":{"field":"onClick"},"action":"passingSiblingNodes","actionData":{"data":[{"name":"x"},{"name":"y"}]}}`,
			wantTrigger: CallbackTrigger{Field: "onClick"},
			wantAction:  PassSiblingNodesAction{Mappings: []SiblingMapping{{Name: "x"}, {Name: "y"}}},
		},
		{
			name:        "legacy callback field",
			raw:         `{"trigger":"callback","triggerData":{"trigger":"onChange"},"action":"none"}`,
			wantTrigger: CallbackTrigger{Field: "onChange"},
			wantAction:  NoneAction{},
		},
		{
			name:        "pass siblings without actionData",
			raw:         `{"trigger":"init","action":"passingSiblingNodes"}`,
			wantTrigger: InitTrigger{},
			wantAction:  PassSiblingNodesAction{},
		},
		{
			name:        "jump",
			raw:         `{"trigger":"callback","triggerData":{"field":"onClick"},"action":"jump","actionData":{"url":"https://example.com"}}`,
			wantTrigger: CallbackTrigger{Field: "onClick"},
			wantAction:  JumpAction{URL: "https://example.com"},
		},
		{
			name:        "unknown kinds are kept",
			raw:         `{"trigger":"hover","action":"frobnicate","actionData":{"x":1}}`,
			wantTrigger: UnknownTrigger{Name: "hover"},
			wantAction:  UnknownAction{Name: "frobnicate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &e))
			assert.Equal(t, tt.wantTrigger, e.Trigger)
			assert.Equal(t, tt.wantAction, e.Action)
		})
	}
}

func TestEvent_UnmarshalJSON_InvalidData(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"trigger":"subscribe","triggerData":{"name":42},"action":"none"}`), &e)
	assert.Error(t, err)
}

func TestEvent_MarshalJSON_RoundTrip(t *testing.T) {
	events := []Event{
		{Trigger: SubscribeTrigger{Channel: "tick"}, Action: JumpAction{URL: "https://example.com"}},
		{Trigger: CallbackTrigger{Field: "onChange"}, Action: PassSiblingNodesAction{Mappings: []SiblingMapping{{Name: "v"}}}},
		{Trigger: InitTrigger{}, Action: NoneAction{}},
	}

	raw, err := json.Marshal(events)
	require.NoError(t, err)

	var decoded []Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, events, decoded)
}
