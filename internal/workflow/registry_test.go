package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopComplete(ctx context.Context, form map[string]string, actorID int64) (string, error) {
	return "", nil
}

func TestRegistryRejectsBrokenDefinitions(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&Definition{ID: ""}))
	assert.Error(t, r.Register(&Definition{ID: "A", Complete: noopComplete}))
	assert.Error(t, r.Register(&Definition{
		ID:    "A",
		Steps: []Step{{Prompt: "p", Field: "f", Validate: Text(10)}},
	}))
	assert.Error(t, r.Register(&Definition{
		ID:       "A",
		Steps:    []Step{{Prompt: "p", Field: "f"}},
		Complete: noopComplete,
	}), "step without validator")
	assert.Error(t, r.Register(&Definition{
		ID:       "A",
		Steps:    []Step{{Prompt: "p", Validate: Text(10)}},
		Complete: noopComplete,
	}), "step without field")
}

func TestRegistryDuplicateID(t *testing.T) {
	r := NewRegistry()
	def := &Definition{
		ID:       "A",
		Steps:    []Step{{Prompt: "p", Field: "f", Validate: Text(10)}},
		Complete: noopComplete,
	}
	require.NoError(t, r.Register(def))
	err := r.Register(def)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("NOPE")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"B", "A", "C"} {
		require.NoError(t, r.Register(&Definition{
			ID:       id,
			Steps:    []Step{{Prompt: "p", Field: "f", Validate: Text(10)}},
			Complete: noopComplete,
		}))
	}
	assert.Equal(t, []string{"A", "B", "C"}, r.IDs())
}

func TestStepIndexOfField(t *testing.T) {
	def := &Definition{
		Steps: []Step{
			{Field: "bag"},
			{Field: "item"},
		},
	}
	assert.Equal(t, 1, def.StepIndexOfField("item"))
	assert.Equal(t, -1, def.StepIndexOfField("missing"))
}
