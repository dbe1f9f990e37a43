package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/ports"
)

// InstanceLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.InstanceLoader.
// setupData maps each instance key to the record the adapter was seeded with. Records are compared
// semantically (after parsing), since adapters may re-encode them.
func InstanceLoaderContractTest(t *testing.T, loader ports.InstanceLoader, setupData map[string]domain.Instance) {
	t.Helper()

	// 1. Test GetInstance (Success)
	t.Run("GetInstance_Success", func(t *testing.T) {
		for key, expected := range setupData {
			raw, err := loader.GetInstance(key)
			if err != nil {
				t.Fatalf("unexpected error getting instance %s: %v", key, err)
			}
			got, err := decode(raw)
			if err != nil {
				t.Fatalf("instance %s is not valid JSON: %v", key, err)
			}
			if got.ComponentKey != expected.ComponentKey {
				t.Errorf("component mismatch for %s. got %q, want %q", key, got.ComponentKey, expected.ComponentKey)
			}
			if len(got.Children) != len(expected.Children) {
				t.Errorf("children mismatch for %s. got %v, want %v", key, got.Children, expected.Children)
			}
			if len(got.Data.Events) != len(expected.Data.Events) {
				t.Errorf("events mismatch for %s. got %d, want %d", key, len(got.Data.Events), len(expected.Data.Events))
			}
		}
	})

	// 2. Test GetInstance (NotFound)
	t.Run("GetInstance_NotFound", func(t *testing.T) {
		_, err := loader.GetInstance("non-existent-instance")
		if err == nil {
			t.Fatal("expected error for non-existent instance, got nil")
		}
		if !errors.Is(err, domain.ErrInstanceNotFound) {
			t.Errorf("expected ErrInstanceNotFound, got %v", err)
		}
	})

	// 3. Test ListInstances
	t.Run("ListInstances", func(t *testing.T) {
		keys, err := loader.ListInstances()
		if err != nil {
			t.Fatalf("unexpected error listing instances: %v", err)
		}

		if len(keys) != len(setupData) {
			t.Errorf("expected %d instances, got %d", len(setupData), len(keys))
		}

		lookup := make(map[string]bool)
		for _, key := range keys {
			lookup[key] = true
		}

		for key := range setupData {
			if !lookup[key] {
				t.Errorf("instance %s missing from list", key)
			}
		}
	})
}
