package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// ErrAlreadyReconciled means the entry already has a verdict; a second
// confirm or reject is never applied twice.
var ErrAlreadyReconciled = errors.New("entry already reconciled")

// CashEntries is the persistence port for reconciliation. MarkReconciled and
// MarkRejected are conditional writes: they return false when the entry
// already carries a verdict.
type CashEntries interface {
	FindByID(id int64) (*domain.CashEntry, error)
	FindPending(limit int) ([]*domain.CashEntry, error)
	MarkReconciled(id int64, approverID int64, at time.Time) (bool, error)
	MarkRejected(id int64, approverID int64, reason string, at time.Time) (bool, error)
}

// UserNotifier tells the submitting operator about the verdict, best-effort.
type UserNotifier interface {
	SendToUser(ctx context.Context, userID int64, event string, message string)
}

// Service applies manager verdicts to pending cash entries.
type Service struct {
	entries  CashEntries
	notifier UserNotifier // optional
	clock    core.Clock
}

func NewService(entries CashEntries, notifier UserNotifier, clock core.Clock) *Service {
	return &Service{entries: entries, notifier: notifier, clock: clock}
}

func (s *Service) Pending(ctx context.Context, limit int) ([]*domain.CashEntry, error) {
	return s.entries.FindPending(limit)
}

// Confirm flips reconciled false -> true exactly once.
func (s *Service) Confirm(ctx context.Context, entryID int64, approverID int64) (*domain.CashEntry, error) {
	entry, err := s.load(entryID)
	if err != nil {
		return nil, err
	}

	ok, err := s.entries.MarkReconciled(entryID, approverID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: mark reconciled: %v", workflow.ErrPersistence, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: entry %d", ErrAlreadyReconciled, entryID)
	}

	if s.notifier != nil {
		s.notifier.SendToUser(ctx, entry.OperatorID, "CASH_RECONCILED",
			fmt.Sprintf("Your cash entry %s (%.2f) was confirmed.", entry.Reference, entry.Amount))
	}
	return s.load(entryID)
}

// Reject marks the entry rejected exactly once, with the manager's reason.
func (s *Service) Reject(ctx context.Context, entryID int64, approverID int64, reason string) (*domain.CashEntry, error) {
	entry, err := s.load(entryID)
	if err != nil {
		return nil, err
	}

	ok, err := s.entries.MarkRejected(entryID, approverID, reason, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: mark rejected: %v", workflow.ErrPersistence, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: entry %d", ErrAlreadyReconciled, entryID)
	}

	if s.notifier != nil {
		s.notifier.SendToUser(ctx, entry.OperatorID, "CASH_REJECTED",
			fmt.Sprintf("Your cash entry %s (%.2f) was rejected: %s", entry.Reference, entry.Amount, reason))
	}
	return s.load(entryID)
}

func (s *Service) load(entryID int64) (*domain.CashEntry, error) {
	entry, err := s.entries.FindByID(entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: cash entry %d", workflow.ErrReferenceNotFound, entryID)
		}
		return nil, fmt.Errorf("%w: find cash entry: %v", workflow.ErrPersistence, err)
	}
	return entry, nil
}
