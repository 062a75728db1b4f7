package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionUpdatesAreCopies(t *testing.T) {
	s := NewSession(7, "TEST_FLOW", time.Now())

	s2 := s.WithField("code", "M1")
	assert.Empty(t, s.Form, "original session must not see the new field")
	assert.Equal(t, "M1", s2.Form["code"])

	s3 := s2.Advanced()
	assert.Equal(t, 0, s2.StepIndex)
	assert.Equal(t, 1, s3.StepIndex)
}

func TestSessionRewoundToClearsFields(t *testing.T) {
	s := NewSession(7, "TEST_FLOW", time.Now()).
		WithField("bag", "B1").Advanced().
		WithField("item", "COFFEE").Advanced()

	r := s.RewoundTo(1, "item")
	assert.Equal(t, 1, r.StepIndex)
	assert.NotContains(t, r.Form, "item")
	assert.Equal(t, "B1", r.Form["bag"])
	// original untouched
	assert.Equal(t, "COFFEE", s.Form["item"])
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)

	s := NewSession(1, "TEST_FLOW", time.Now())
	require.NoError(t, store.Put(s))

	got, ok, err := store.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, got)

	require.NoError(t, store.Delete(1))
	_, ok, _ = store.Get(1)
	assert.False(t, ok)
}

func TestMemoryStoreOneSessionPerUser(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(NewSession(1, "FIRST", time.Now())))
	require.NoError(t, store.Put(NewSession(1, "SECOND", time.Now())))

	got, ok, _ := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "SECOND", got.WorkflowID)
}
