package workflow

import (
	"sync"
	"time"
)

// Session is the per-user conversation state: which workflow is active, which
// step it is waiting on, and the form fields accepted so far. Sessions are
// values; updates go through WithField/Advanced/RewoundTo which return copies,
// so a stored session is never mutated in place.
type Session struct {
	UserID     int64             `json:"userId"`
	WorkflowID string            `json:"workflowId"`
	StepIndex  int               `json:"stepIndex"`
	Form       map[string]string `json:"form"`
	StartedAt  time.Time         `json:"startedAt"`
}

func NewSession(userID int64, workflowID string, startedAt time.Time) Session {
	return Session{
		UserID:     userID,
		WorkflowID: workflowID,
		StepIndex:  0,
		Form:       map[string]string{},
		StartedAt:  startedAt,
	}
}

func (s Session) copyForm() map[string]string {
	form := make(map[string]string, len(s.Form)+1)
	for k, v := range s.Form {
		form[k] = v
	}
	return form
}

// WithField returns a copy of the session with one form field set.
func (s Session) WithField(field, value string) Session {
	form := s.copyForm()
	form[field] = value
	s.Form = form
	return s
}

// Advanced returns a copy of the session waiting on the next step.
func (s Session) Advanced() Session {
	s.Form = s.copyForm()
	s.StepIndex++
	return s
}

// RewoundTo returns a copy of the session waiting on an earlier step again,
// with the given fields cleared. Callers pass the fields of every step from
// the rewind point onward so the re-walk starts from a clean slate.
func (s Session) RewoundTo(stepIndex int, clearFields ...string) Session {
	form := s.copyForm()
	for _, f := range clearFields {
		delete(form, f)
	}
	s.Form = form
	s.StepIndex = stepIndex
	return s
}

// Store holds at most one active session per user. Any key-value backend
// satisfying these three operations is sufficient.
type Store interface {
	Get(userID int64) (Session, bool, error)
	Put(s Session) error
	Delete(userID int64) error
}

// MemoryStore is a mutex-guarded in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[int64]Session{}}
}

func (m *MemoryStore) Get(userID int64) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *MemoryStore) Put(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemoryStore) Delete(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
