package approval

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time                         { return c.now }
func (c fakeClock) After(d time.Duration) <-chan time.Time { return time.After(0) }
func (c fakeClock) Sleep(d time.Duration)                  {}

// fakeCashEntries applies the same conditional-write rule as the real
// repository: a verdict only lands while the entry is still pending.
type fakeCashEntries struct {
	entries map[int64]*domain.CashEntry
}

func (f *fakeCashEntries) FindByID(id int64) (*domain.CashEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeCashEntries) FindPending(limit int) ([]*domain.CashEntry, error) {
	var out []*domain.CashEntry
	for _, e := range f.entries {
		if !e.Reconciled && e.Status == domain.CashEntryPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCashEntries) FindByReference(reference string) (*domain.CashEntry, error) {
	for _, e := range f.entries {
		if e.Reference == reference {
			cp := *e
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCashEntries) MarkReconciled(id int64, approverID int64, at time.Time) (bool, error) {
	e, ok := f.entries[id]
	if !ok || e.Reconciled || e.Status != domain.CashEntryPending {
		return false, nil
	}
	e.Reconciled = true
	e.Status = domain.CashEntryApproved
	e.ReconciledBy = sql.NullInt64{Int64: approverID, Valid: true}
	e.ReconciledAt = sql.NullTime{Time: at, Valid: true}
	return true, nil
}

func (f *fakeCashEntries) MarkRejected(id int64, approverID int64, reason string, at time.Time) (bool, error) {
	e, ok := f.entries[id]
	if !ok || e.Reconciled || e.Status != domain.CashEntryPending {
		return false, nil
	}
	e.Status = domain.CashEntryRejected
	e.ReconciledBy = sql.NullInt64{Int64: approverID, Valid: true}
	e.ReconciledAt = sql.NullTime{Time: at, Valid: true}
	e.RejectReason = sql.NullString{String: reason, Valid: true}
	return true, nil
}

type fakeUserNotifier struct {
	userID  int64
	event   string
	message string
	calls   int
}

func (f *fakeUserNotifier) SendToUser(ctx context.Context, userID int64, event string, message string) {
	f.userID, f.event, f.message = userID, event, message
	f.calls++
}

func fixture(t *testing.T) (*Service, *fakeCashEntries, *fakeUserNotifier) {
	t.Helper()
	entries := &fakeCashEntries{entries: map[int64]*domain.CashEntry{
		1: {ID: 1, Reference: "ref-1", OperatorID: 7, Amount: 1500, Status: domain.CashEntryPending},
	}}
	notifier := &fakeUserNotifier{}
	clock := fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	return NewService(entries, notifier, clock), entries, notifier
}

func TestConfirmAppliesVerdictOnce(t *testing.T) {
	svc, entries, notifier := fixture(t)

	e, err := svc.Confirm(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.True(t, e.Reconciled)
	assert.Equal(t, domain.CashEntryApproved, e.Status)
	assert.Equal(t, int64(99), e.ReconciledBy.Int64)
	assert.True(t, e.ReconciledAt.Valid)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, int64(7), notifier.userID, "the submitting operator is told")
	assert.Contains(t, notifier.message, "confirmed")

	pending, _ := entries.FindPending(10)
	assert.Empty(t, pending)
}

func TestConfirmTwiceIsAlreadyReconciled(t *testing.T) {
	svc, _, notifier := fixture(t)

	_, err := svc.Confirm(context.Background(), 1, 99)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAlreadyReconciled)
	assert.Equal(t, 1, notifier.calls, "no second notification")
}

func TestRejectRecordsReason(t *testing.T) {
	svc, _, notifier := fixture(t)

	e, err := svc.Reject(context.Background(), 1, 99, "amount does not match the counter")
	require.NoError(t, err)
	assert.Equal(t, domain.CashEntryRejected, e.Status)
	assert.Equal(t, "amount does not match the counter", e.RejectReason.String)
	assert.False(t, e.Reconciled, "a rejected entry is not reconciled")

	assert.Equal(t, 1, notifier.calls)
	assert.Contains(t, notifier.message, "rejected")
	assert.Contains(t, notifier.message, "amount does not match")
}

func TestRejectAfterConfirmFails(t *testing.T) {
	svc, _, _ := fixture(t)

	_, err := svc.Confirm(context.Background(), 1, 99)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), 1, 99, "too late")
	assert.ErrorIs(t, err, ErrAlreadyReconciled)
}

func TestVerdictOnMissingEntry(t *testing.T) {
	svc, _, _ := fixture(t)

	_, err := svc.Confirm(context.Background(), 42, 99)
	assert.ErrorIs(t, err, workflow.ErrReferenceNotFound)

	_, err = svc.Reject(context.Background(), 42, 99, "gone")
	assert.ErrorIs(t, err, workflow.ErrReferenceNotFound)
}
