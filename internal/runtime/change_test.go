package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/gaea/internal/runtime"
)

func TestShouldUpdate(t *testing.T) {
	shared := map[string]any{"a": 1}
	sink := &struct{ name string }{"parent"}

	tests := []struct {
		name      string
		prevProps map[string]any
		nextProps map[string]any
		prevState map[string]any
		nextState map[string]any
		want      bool
	}{
		{
			name:      "identical inputs",
			prevProps: map[string]any{"instanceKey": "a", "sink": sink, "data": map[string]any{"x": 1}},
			nextProps: map[string]any{"instanceKey": "a", "sink": sink, "data": map[string]any{"x": 1}},
			want:      false,
		},
		{
			name:      "data compared deeply",
			prevProps: map[string]any{"data": map[string]any{"x": []any{1, 2}}},
			nextProps: map[string]any{"data": map[string]any{"x": []any{1, 3}}},
			want:      true,
		},
		{
			name:      "nil data equals empty data",
			prevProps: map[string]any{"data": map[string]any(nil)},
			nextProps: map[string]any{"data": map[string]any{}},
			want:      false,
		},
		{
			name:      "other maps compared by identity",
			prevProps: map[string]any{"style": map[string]any{"a": 1}},
			nextProps: map[string]any{"style": map[string]any{"a": 1}},
			want:      true,
		},
		{
			name:      "same map reference",
			prevProps: map[string]any{"style": shared},
			nextProps: map[string]any{"style": shared},
			want:      false,
		},
		{
			name:      "distinct pointers",
			prevProps: map[string]any{"sink": sink},
			nextProps: map[string]any{"sink": &struct{ name string }{"parent"}},
			want:      true,
		},
		{
			name:      "functions never match",
			prevProps: map[string]any{"onClick": func() {}},
			nextProps: map[string]any{"onClick": func() {}},
			want:      true,
		},
		{
			name:      "changed scalar",
			prevProps: map[string]any{"instanceKey": "a"},
			nextProps: map[string]any{"instanceKey": "b"},
			want:      true,
		},
		{
			name:      "added field",
			prevProps: map[string]any{"instanceKey": "a"},
			nextProps: map[string]any{"instanceKey": "a", "extra": true},
			want:      true,
		},
		{
			name:      "state data changed",
			prevState: map[string]any{"data": map[string]any{}},
			nextState: map[string]any{"data": map[string]any{"x": 5}},
			want:      true,
		},
		{
			name:      "state data rebuilt with equal contents",
			prevState: map[string]any{"data": map[string]any{"x": 5}},
			nextState: map[string]any{"data": map[string]any{"x": 5}},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runtime.ShouldUpdate(tt.prevProps, tt.nextProps, tt.prevState, tt.nextState)
			assert.Equal(t, tt.want, got)
		})
	}
}
