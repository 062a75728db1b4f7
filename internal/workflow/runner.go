package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// EventSink records the audit trail a session leaves behind.
type EventSink interface {
	Save(e *domain.SessionEvent) (int64, error)
}

// RoleNotifier delivers a best-effort completion notice to everyone holding a
// role. Delivery failures never propagate back here.
type RoleNotifier interface {
	SendToRole(ctx context.Context, role string, event string, message string)
}

// Runner drives sessions end to end: store lookup, engine advance, completion
// handler, audit events and the downstream notification. Per-user event
// ordering is the transport's job; the Runner is safe for concurrent use
// across distinct users because no two sessions share a store key.
type Runner struct {
	registry *Registry
	store    Store
	events   EventSink    // optional
	notifier RoleNotifier // optional
	clock    core.Clock
}

func NewRunner(registry *Registry, store Store, events EventSink, notifier RoleNotifier, clock core.Clock) *Runner {
	return &Runner{
		registry: registry,
		store:    store,
		events:   events,
		notifier: notifier,
		clock:    clock,
	}
}

// StartWorkflow opens a session for the user and returns the first prompt.
// An existing session is replaced: re-entering a scene restarts it.
func (r *Runner) StartWorkflow(ctx context.Context, userID int64, workflowID string) (string, error) {
	def, err := r.registry.Lookup(workflowID)
	if err != nil {
		return "", err
	}

	if _, active, _ := r.store.Get(userID); active {
		r.saveEvent(userID, workflowID, 0, "RESTARTED", "previous session replaced")
	}

	s := NewSession(userID, workflowID, r.clock.Now())
	if err := r.store.Put(s); err != nil {
		return "", fmt.Errorf("%w: store session: %v", ErrPersistence, err)
	}
	r.saveEvent(userID, workflowID, 0, "STARTED", def.Title)
	return def.Steps[0].Prompt, nil
}

// CancelActive discards the user's session without invoking any completion
// handler. Cancelling with no session active is a no-op.
func (r *Runner) CancelActive(ctx context.Context, userID int64) (string, error) {
	return r.HandleInput(ctx, userID, CancelInput())
}

// HandleInput feeds one inbound event into the user's active session and
// returns the user-facing reply. A non-nil error is a system failure (the
// reply still carries a human-readable message); validation problems are
// replies only, never errors.
func (r *Runner) HandleInput(ctx context.Context, userID int64, in Input) (string, error) {
	s, ok, err := r.store.Get(userID)
	if err != nil {
		return "Temporary failure, please try again.", fmt.Errorf("%w: load session: %v", ErrPersistence, err)
	}
	if !ok {
		if in.Cancel {
			return "Nothing to cancel.", nil
		}
		return "No active operation. Start one first.", ErrNoActiveSession
	}

	def, err := r.registry.Lookup(s.WorkflowID)
	if err != nil {
		// stale session for a workflow no longer registered
		_ = r.store.Delete(userID)
		return "That operation is no longer available.", err
	}
	if s.StepIndex < 0 || s.StepIndex >= len(def.Steps) {
		// stored row outlived a definition whose step table shrank
		_ = r.store.Delete(userID)
		r.saveEvent(userID, s.WorkflowID, s.StepIndex, "STALE", "step index out of range")
		return "That operation is no longer available.", nil
	}

	out := Advance(def, s, in)
	switch out.Kind {
	case OutcomeReprompt:
		r.saveEvent(userID, s.WorkflowID, s.StepIndex, "REPROMPT", out.Message)
		return out.Message, nil

	case OutcomeCancelled:
		if err := r.store.Delete(userID); err != nil {
			return "Temporary failure, please try again.", fmt.Errorf("%w: delete session: %v", ErrPersistence, err)
		}
		r.saveEvent(userID, s.WorkflowID, s.StepIndex, "CANCELLED", "cancelled by user")
		return "Operation cancelled.", nil

	case OutcomeAdvanced:
		if err := r.store.Put(out.Session); err != nil {
			return "Temporary failure, please send that again.", fmt.Errorf("%w: store session: %v", ErrPersistence, err)
		}
		r.saveEvent(userID, s.WorkflowID, out.Session.StepIndex, "STEP", def.Steps[s.StepIndex].Field)
		return out.Message, nil

	case OutcomeCompleted:
		return r.complete(ctx, def, s, out, userID)
	}

	panic(fmt.Sprintf("unhandled outcome kind %s", out.Kind))
}

func (r *Runner) complete(ctx context.Context, def *Definition, s Session, out Outcome, userID int64) (string, error) {
	summary, err := def.Complete(ctx, out.Form, userID)

	var refErr *ReferenceError
	switch {
	case errors.As(err, &refErr):
		// The referenced entity vanished between selection and completion.
		// Rewind to the selection step instead of aborting the whole run.
		idx := def.StepIndexOfField(refErr.Field)
		if idx < 0 {
			_ = r.store.Delete(userID)
			r.saveEvent(userID, s.WorkflowID, s.StepIndex, "FAILED", refErr.Error())
			return "The selected item no longer exists. Please start again.", err
		}
		rewound := s.RewoundTo(idx, def.FieldsFrom(idx)...)
		if putErr := r.store.Put(rewound); putErr != nil {
			return "Temporary failure, please try again.", fmt.Errorf("%w: store session: %v", ErrPersistence, putErr)
		}
		r.saveEvent(userID, s.WorkflowID, idx, "REWOUND", refErr.Error())
		return fmt.Sprintf("%q no longer exists. %s", refErr.Code, def.Steps[idx].Prompt), err

	case errors.Is(err, ErrPartialWrite):
		// Primary record exists; retrying the completion would double-write.
		if delErr := r.store.Delete(userID); delErr != nil {
			slog.Error("Failed to delete session after partial write", "user_id", userID, "error", delErr)
		}
		r.saveEvent(userID, s.WorkflowID, s.StepIndex, "PARTIAL", err.Error())
		return "Recorded, but a follow-up stock update failed. A manager has to adjust it manually.", err

	case err != nil:
		// Persistence failure: keep the session on its final step so the
		// actor can retry without re-entering everything.
		r.saveEvent(userID, s.WorkflowID, s.StepIndex, "FAILED", err.Error())
		return "Could not save right now, please send that again.", err
	}

	if err := r.store.Delete(userID); err != nil {
		slog.Error("Failed to delete completed session", "user_id", userID, "error", err)
	}
	r.saveEvent(userID, s.WorkflowID, s.StepIndex, "COMPLETED", summary)

	if r.notifier != nil && def.NotifyRole != "" {
		r.notifier.SendToRole(ctx, def.NotifyRole, def.ID, summary)
	}
	return summary, nil
}

func (r *Runner) saveEvent(userID int64, workflowID string, stepIndex int, eventType, text string) {
	if r.events == nil {
		return
	}
	_, _ = r.events.Save(&domain.SessionEvent{
		UserID:     userID,
		WorkflowID: workflowID,
		StepIndex:  stepIndex,
		Type:       eventType,
		Text:       text,
		DateTime:   r.clock.Now(),
	})
}
