package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendhub/vendhub/internal/domain"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time                         { return c.now }
func (c fixedClock) After(d time.Duration) <-chan time.Time { return time.After(0) }
func (c fixedClock) Sleep(d time.Duration)                  {}

type fakeEventSink struct {
	events []*domain.SessionEvent
}

func (f *fakeEventSink) Save(e *domain.SessionEvent) (int64, error) {
	f.events = append(f.events, e)
	return int64(len(f.events)), nil
}

func (f *fakeEventSink) types() []string {
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeNotifier struct {
	role, event, message string
	calls                int
}

func (f *fakeNotifier) SendToRole(ctx context.Context, role, event, message string) {
	f.role, f.event, f.message = role, event, message
	f.calls++
}

type fakeStore struct {
	GetFunc    func(userID int64) (Session, bool, error)
	PutFunc    func(s Session) error
	DeleteFunc func(userID int64) error
	backing    *MemoryStore
}

func newFakeStore() *fakeStore { return &fakeStore{backing: NewMemoryStore()} }

func (f *fakeStore) Get(userID int64) (Session, bool, error) {
	if f.GetFunc != nil {
		return f.GetFunc(userID)
	}
	return f.backing.Get(userID)
}

func (f *fakeStore) Put(s Session) error {
	if f.PutFunc != nil {
		return f.PutFunc(s)
	}
	return f.backing.Put(s)
}

func (f *fakeStore) Delete(userID int64) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(userID)
	}
	return f.backing.Delete(userID)
}

func runnerFixture(t *testing.T, complete CompletionFunc) (*Runner, *fakeStore, *fakeEventSink, *fakeNotifier) {
	t.Helper()
	def := testDefinition()
	def.NotifyRole = domain.RoleManager
	if complete != nil {
		def.Complete = complete
	}
	registry := NewRegistry()
	require.NoError(t, registry.Register(def))

	store := newFakeStore()
	events := &fakeEventSink{}
	notifier := &fakeNotifier{}
	clock := fixedClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	return NewRunner(registry, store, events, notifier, clock), store, events, notifier
}

func TestStartWorkflowReturnsFirstPrompt(t *testing.T) {
	r, store, events, _ := runnerFixture(t, nil)

	reply, err := r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	require.NoError(t, err)
	assert.Equal(t, "Enter a code.", reply)

	s, ok, _ := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, 0, s.StepIndex)
	assert.Equal(t, []string{"STARTED"}, events.types())
}

func TestStartWorkflowReplacesActiveSession(t *testing.T) {
	r, store, events, _ := runnerFixture(t, nil)

	_, err := r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	require.NoError(t, err)
	_, err = r.HandleInput(context.Background(), 1, TextInput("M1"))
	require.NoError(t, err)

	_, err = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	require.NoError(t, err)

	s, ok, _ := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, 0, s.StepIndex, "restart must begin at the first step")
	assert.Contains(t, events.types(), "RESTARTED")
}

func TestStartWorkflowUnknownID(t *testing.T) {
	r, _, _, _ := runnerFixture(t, nil)
	_, err := r.StartWorkflow(context.Background(), 1, "NOPE")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestHandleInputWithoutSession(t *testing.T) {
	r, _, _, _ := runnerFixture(t, nil)

	reply, err := r.HandleInput(context.Background(), 1, CancelInput())
	require.NoError(t, err)
	assert.Equal(t, "Nothing to cancel.", reply)

	_, err = r.HandleInput(context.Background(), 1, TextInput("hello"))
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestHandleInputCancelDiscardsSession(t *testing.T) {
	r, store, events, _ := runnerFixture(t, nil)
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")

	reply, err := r.HandleInput(context.Background(), 1, CancelInput())
	require.NoError(t, err)
	assert.Equal(t, "Operation cancelled.", reply)

	_, ok, _ := store.Get(1)
	assert.False(t, ok)
	assert.Contains(t, events.types(), "CANCELLED")
}

func TestHandleInputRepromptKeepsSession(t *testing.T) {
	r, store, _, _ := runnerFixture(t, nil)
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M1"))

	reply, err := r.HandleInput(context.Background(), 1, TextInput("abc"))
	require.NoError(t, err)
	assert.Contains(t, reply, "not a valid number")

	s, ok, _ := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, 1, s.StepIndex)
}

func TestCompletionSuccessDeletesSessionAndNotifies(t *testing.T) {
	r, store, events, notifier := runnerFixture(t, func(ctx context.Context, form map[string]string, actorID int64) (string, error) {
		return "Entry recorded.", nil
	})
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M1"))
	_, _ = r.HandleInput(context.Background(), 1, TextInput("1500"))

	reply, err := r.HandleInput(context.Background(), 1, SkipInput())
	require.NoError(t, err)
	assert.Equal(t, "Entry recorded.", reply)

	_, ok, _ := store.Get(1)
	assert.False(t, ok, "completed session must be gone")
	assert.Contains(t, events.types(), "COMPLETED")
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, domain.RoleManager, notifier.role)
	assert.Equal(t, "Entry recorded.", notifier.message)
}

func TestCompletionReferenceErrorRewindsToStep(t *testing.T) {
	r, store, events, notifier := runnerFixture(t, func(ctx context.Context, form map[string]string, actorID int64) (string, error) {
		return "", &ReferenceError{Field: "code", Code: form["code"]}
	})
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M1"))
	_, _ = r.HandleInput(context.Background(), 1, TextInput("1500"))

	reply, err := r.HandleInput(context.Background(), 1, SkipInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.Contains(t, reply, "no longer exists")
	assert.Contains(t, reply, "Enter a code.")

	s, ok, _ := store.Get(1)
	require.True(t, ok, "session survives, rewound")
	assert.Equal(t, 0, s.StepIndex)
	assert.NotContains(t, s.Form, "code")
	assert.NotContains(t, s.Form, "amount", "fields from the rewind point are cleared for the re-walk")
	assert.Contains(t, events.types(), "REWOUND")
	assert.Zero(t, notifier.calls)
}

func TestRewindDoesNotResurfaceSkippedFields(t *testing.T) {
	var forms []map[string]string
	r, _, _, _ := runnerFixture(t, func(ctx context.Context, form map[string]string, actorID int64) (string, error) {
		forms = append(forms, form)
		if len(forms) == 1 {
			return "", &ReferenceError{Field: "code", Code: form["code"]}
		}
		return "Entry recorded.", nil
	})
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M1"))
	_, _ = r.HandleInput(context.Background(), 1, TextInput("1500"))
	_, err := r.HandleInput(context.Background(), 1, PhotoInput("old-photo"))
	require.ErrorIs(t, err, ErrReferenceNotFound)

	// re-walk after the rewind, skipping the photo this time
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M2"))
	_, _ = r.HandleInput(context.Background(), 1, TextInput("42"))
	reply, err := r.HandleInput(context.Background(), 1, SkipInput())
	require.NoError(t, err)
	assert.Equal(t, "Entry recorded.", reply)

	require.Len(t, forms, 2)
	assert.NotContains(t, forms[1], "photo", "a skipped step must keep its default")
	assert.Equal(t, "M2", forms[1]["code"])
	assert.Equal(t, "42", forms[1]["amount"])
}

func TestCompletionPartialWriteDiscardsSession(t *testing.T) {
	wrapped := errors.New("stock race exhausted")
	r, store, events, _ := runnerFixture(t, func(ctx context.Context, form map[string]string, actorID int64) (string, error) {
		return "", errors.Join(ErrPartialWrite, wrapped)
	})
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M1"))
	_, _ = r.HandleInput(context.Background(), 1, TextInput("1500"))

	reply, err := r.HandleInput(context.Background(), 1, SkipInput())
	require.Error(t, err)
	assert.Contains(t, reply, "Recorded, but")

	_, ok, _ := store.Get(1)
	assert.False(t, ok, "session removed so the write cannot be repeated")
	assert.Contains(t, events.types(), "PARTIAL")
}

func TestCompletionPersistenceFailureKeepsSession(t *testing.T) {
	attempts := 0
	r, store, _, notifier := runnerFixture(t, func(ctx context.Context, form map[string]string, actorID int64) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.Join(ErrPersistence, errors.New("db down"))
		}
		return "Entry recorded.", nil
	})
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	_, _ = r.HandleInput(context.Background(), 1, TextInput("M1"))
	_, _ = r.HandleInput(context.Background(), 1, TextInput("1500"))

	reply, err := r.HandleInput(context.Background(), 1, SkipInput())
	require.Error(t, err)
	assert.Equal(t, "Could not save right now, please send that again.", reply)

	s, ok, _ := store.Get(1)
	require.True(t, ok, "session stays on the final step for a retry")
	assert.Equal(t, 2, s.StepIndex)

	// retrying the final input now succeeds
	reply, err = r.HandleInput(context.Background(), 1, SkipInput())
	require.NoError(t, err)
	assert.Equal(t, "Entry recorded.", reply)
	assert.Equal(t, 1, notifier.calls)
}

func TestHandleInputStaleWorkflowDropsSession(t *testing.T) {
	r, store, _, _ := runnerFixture(t, nil)
	require.NoError(t, store.Put(Session{UserID: 1, WorkflowID: "REMOVED_FLOW", Form: map[string]string{}}))

	reply, err := r.HandleInput(context.Background(), 1, TextInput("x"))
	require.Error(t, err)
	assert.Equal(t, "That operation is no longer available.", reply)

	_, ok, _ := store.Get(1)
	assert.False(t, ok)
}

func TestHandleInputStaleStepIndexDropsSession(t *testing.T) {
	r, store, events, _ := runnerFixture(t, nil)
	require.NoError(t, store.Put(Session{UserID: 1, WorkflowID: "TEST_FLOW", StepIndex: 4, Form: map[string]string{}}))

	reply, err := r.HandleInput(context.Background(), 1, TextInput("x"))
	require.NoError(t, err)
	assert.Equal(t, "That operation is no longer available.", reply)

	_, ok, _ := store.Get(1)
	assert.False(t, ok)
	assert.Contains(t, events.types(), "STALE")
}

func TestHandleInputStorePutFailure(t *testing.T) {
	r, store, _, _ := runnerFixture(t, nil)
	_, _ = r.StartWorkflow(context.Background(), 1, "TEST_FLOW")
	store.PutFunc = func(s Session) error { return errors.New("disk full") }

	reply, err := r.HandleInput(context.Background(), 1, TextInput("M1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "Temporary failure, please send that again.", reply)
}
