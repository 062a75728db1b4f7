package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendhub/vendhub/internal/workflow"
)

func financeFixture(t *testing.T) (*workflow.Runner, *fakeFinanceEntries) {
	t.Helper()
	entries := &fakeFinanceEntries{}
	registry := workflow.NewRegistry()
	require.NoError(t, registry.Register(NewFinanceEntry(entries, testClock).Definition()))
	runner := workflow.NewRunner(registry, workflow.NewMemoryStore(), nil, nil, testClock)
	return runner, entries
}

func TestFinanceEntryBooksExpense(t *testing.T) {
	runner, entries := financeFixture(t)
	ctx := context.Background()

	_, err := runner.StartWorkflow(ctx, 9, WorkflowFinanceEntry)
	require.NoError(t, err)
	_, err = runner.HandleInput(ctx, 9, workflow.TextInput("EXPENSE"))
	require.NoError(t, err)
	_, err = runner.HandleInput(ctx, 9, workflow.TextInput("120.50"))
	require.NoError(t, err)
	_, err = runner.HandleInput(ctx, 9, workflow.TextInput("fuel"))
	require.NoError(t, err)
	_, err = runner.HandleInput(ctx, 9, workflow.TextInput("2026-08-29"))
	require.NoError(t, err)
	reply, err := runner.HandleInput(ctx, 9, workflow.SkipInput())
	require.NoError(t, err)
	assert.Contains(t, reply, "expense 120.50")
	assert.Contains(t, reply, "2026-08-29")

	require.Len(t, entries.saved, 1)
	e := entries.saved[0]
	assert.Equal(t, "EXPENSE", e.Kind)
	assert.Equal(t, 120.5, e.Amount)
	assert.Equal(t, "fuel", e.Category)
	assert.Equal(t, "2026-08-29", e.OccurredOn)
	assert.Equal(t, int64(9), e.EnteredBy)
	assert.False(t, e.Note.Valid)
}

func TestFinanceEntryRejectsBadDate(t *testing.T) {
	runner, entries := financeFixture(t)
	ctx := context.Background()

	_, _ = runner.StartWorkflow(ctx, 9, WorkflowFinanceEntry)
	_, _ = runner.HandleInput(ctx, 9, workflow.TextInput("income"))
	_, _ = runner.HandleInput(ctx, 9, workflow.TextInput("300"))
	_, _ = runner.HandleInput(ctx, 9, workflow.TextInput("rent"))

	reply, err := runner.HandleInput(ctx, 9, workflow.TextInput("29/08/2026"))
	require.NoError(t, err)
	assert.Contains(t, reply, "YYYY-MM-DD")
	assert.Empty(t, entries.saved)
}

func TestFinanceEntryMandatoryCategoryNotSkippable(t *testing.T) {
	runner, _ := financeFixture(t)
	ctx := context.Background()

	_, _ = runner.StartWorkflow(ctx, 9, WorkflowFinanceEntry)
	_, _ = runner.HandleInput(ctx, 9, workflow.TextInput("income"))
	_, _ = runner.HandleInput(ctx, 9, workflow.TextInput("300"))

	reply, err := runner.HandleInput(ctx, 9, workflow.SkipInput())
	require.NoError(t, err)
	assert.Contains(t, reply, "cannot be skipped")
}
