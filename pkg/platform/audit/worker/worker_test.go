package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "election/pkg/platform/audit"
	"election/pkg/platform/audit/store/memory"
)

type rejectingStore struct{}

func (rejectingStore) Append(context.Context, audit.Event) error { return errors.New("rejected") }

func TestRunDrainsUntilClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: string(audit.EventBallotIssued)}
	inbox <- audit.Event{Action: string(audit.EventBallotCounted)}
	close(inbox)

	require.NoError(t, NewWorker(store, inbox).Run(context.Background()))
	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRunStopsOnFirstFailureWithoutHandler(t *testing.T) {
	inbox := make(chan audit.Event, 1)
	inbox <- audit.Event{}
	assert.EqualError(t, NewWorker(rejectingStore{}, inbox).Run(context.Background()), "rejected")
}

func TestErrorHandlerKeepsWorkerRunning(t *testing.T) {
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{}
	inbox <- audit.Event{}
	close(inbox)

	var failures int
	w := NewWorker(rejectingStore{}, inbox, WithErrorHandler(func(audit.Event, error) { failures++ }))
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 2, failures)
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewWorker(memory.NewInMemoryStore(), make(chan audit.Event)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
