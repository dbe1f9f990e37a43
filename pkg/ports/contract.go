package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea/pkg/domain"
)

// RunInstanceStoreContract runs a suite of tests to verify that an InstanceStore implementation
// adheres to the defined interface contract.
func RunInstanceStoreContract(t *testing.T, store InstanceStore) {
	ctx := context.Background()
	key := "contract-test-instance-" + time.Now().Format("20060102150405")

	record := func(componentKey string) []byte {
		raw, err := json.Marshal(domain.Instance{
			ComponentKey: componentKey,
			Data: domain.InstanceData{
				Props: map[string]any{"label": "hello"},
				Events: []domain.Event{
					{Trigger: domain.CallbackTrigger{Field: "onClick"}, Action: domain.JumpAction{URL: "https://example.com"}},
				},
			},
		})
		require.NoError(t, err)
		return raw
	}

	t.Run("Put and Get", func(t *testing.T) {
		err := store.PutInstance(ctx, key, record("gaea-button"))
		require.NoError(t, err, "PutInstance should not return error")

		raw, err := store.GetInstance(key)
		require.NoError(t, err, "GetInstance should not return error")

		var got domain.Instance
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "gaea-button", got.ComponentKey)
		assert.Equal(t, "hello", got.Data.Props["label"])
		require.Len(t, got.Data.Events, 1)
		assert.Equal(t, domain.JumpAction{URL: "https://example.com"}, got.Data.Events[0].Action)
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		require.NoError(t, store.PutInstance(ctx, key, record("gaea-link")))

		raw, err := store.GetInstance(key)
		require.NoError(t, err)
		var got domain.Instance
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "gaea-link", got.ComponentKey)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.GetInstance("non-existent-" + key)
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		require.NoError(t, store.PutInstance(ctx, id1, record("gaea-text")))
		require.NoError(t, store.PutInstance(ctx, id2, record("gaea-text")))
		defer func() {
			_ = store.DeleteInstance(ctx, id1)
			_ = store.DeleteInstance(ctx, id2)
		}()

		keys, err := store.ListInstances()
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.DeleteInstance(ctx, key)
		require.NoError(t, err, "DeleteInstance should not return error")

		_, err = store.GetInstance(key)
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound, "GetInstance after Delete should return ErrInstanceNotFound")

		err = store.DeleteInstance(ctx, key)
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
	})
}
