package trajectory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/threadstore"
)

type fakeHistory struct {
	checkpoints []threadstore.Checkpoint
	err         error
}

func (f *fakeHistory) GetHistory(_ context.Context, _ string) ([]threadstore.Checkpoint, error) {
	return f.checkpoints, f.err
}

func rawMsg(typ, content string, kwargs map[string]any) threadstore.RawMessage {
	return threadstore.RawMessage{Type: typ, Content: content, AdditionalKwargs: kwargs}
}

func checkpointOf(msgs ...threadstore.RawMessage) threadstore.Checkpoint {
	return threadstore.Checkpoint{Values: threadstore.CheckpointState{Messages: msgs}}
}

func TestReconcile_LastCheckpointWins(t *testing.T) {
	fetcher := &fakeHistory{checkpoints: []threadstore.Checkpoint{
		checkpointOf(rawMsg("human", "old view", nil)),
		checkpointOf(
			rawMsg("human", "turn one", nil),
			rawMsg("ai", "reply one", nil),
			rawMsg("human", "turn two", nil),
			rawMsg("ai", "reply two", nil),
		),
	}}

	result, err := NewReconciler(fetcher).Reconcile(context.Background(), "thread-1")
	require.NoError(t, err)

	require.Len(t, result.Messages, 4)
	assert.Equal(t, api.RoleUser, result.Messages[0].Role)
	assert.Equal(t, api.RoleAssistant, result.Messages[1].Role)
	assert.Equal(t, 2, result.CurrentTurn)
	assert.Equal(t, api.SessionStatusRunning, result.Status)
	assert.True(t, result.ContinuePolling)
}

func TestReconcile_UnknownRolePassesThrough(t *testing.T) {
	fetcher := &fakeHistory{checkpoints: []threadstore.Checkpoint{
		checkpointOf(rawMsg("telemetry", "payload", nil)),
	}}

	result, err := NewReconciler(fetcher).Reconcile(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, api.Role("telemetry"), result.Messages[0].Role)
}

func TestReconcile_StopOnAssistantIsTerminal(t *testing.T) {
	fetcher := &fakeHistory{checkpoints: []threadstore.Checkpoint{
		checkpointOf(
			rawMsg("human", "turn one", nil),
			rawMsg("ai", "reply", nil),
			rawMsg("human", "turn two", nil),
			rawMsg("ai", "all done", map[string]any{"stop": true}),
		),
	}}

	result, err := NewReconciler(fetcher).Reconcile(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Equal(t, api.SessionStatusCompleted, result.Status)
	assert.True(t, result.Stopped)
	assert.False(t, result.ContinuePolling)
	assert.Equal(t, 2, result.CurrentTurn)
}

func TestReconcile_StopOnUserKeepsPolling(t *testing.T) {
	fetcher := &fakeHistory{checkpoints: []threadstore.Checkpoint{
		checkpointOf(
			rawMsg("human", "turn one", nil),
			rawMsg("ai", "reply", nil),
			rawMsg("human", "final prompt", map[string]any{"stop": true}),
		),
	}}

	result, err := NewReconciler(fetcher).Reconcile(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.True(t, result.Stopped)
	assert.True(t, result.ContinuePolling)
	assert.NotEqual(t, api.SessionStatusCompleted, result.Status)
}

func TestReconcile_RewardDecomposition(t *testing.T) {
	fetcher := &fakeHistory{checkpoints: []threadstore.Checkpoint{
		checkpointOf(
			rawMsg("human", "a", map[string]any{"reward": 2.0}),
			rawMsg("ai", "b", nil),
			rawMsg("human", "c", map[string]any{"reward": -1.0}),
			rawMsg("human", "d", map[string]any{"reward": 3.0}),
			rawMsg("human", "e", map[string]any{"reward": -0.5}),
		),
	}}

	result, err := NewReconciler(fetcher).Reconcile(context.Background(), "thread-1")
	require.NoError(t, err)

	assert.InDelta(t, 3.5, result.Rewards.Total, 1e-9)
	assert.InDelta(t, 5.0, result.Rewards.Positive, 1e-9)
	assert.InDelta(t, 1.5, result.Rewards.Penalties, 1e-9)
	assert.InDelta(t, result.Rewards.Total, result.Rewards.Positive-result.Rewards.Penalties, 1e-9)
}

func TestReconcile_EmptyHistoryIsNotAnError(t *testing.T) {
	result, err := NewReconciler(&fakeHistory{}).Reconcile(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Empty(t, result.Messages)
	assert.Equal(t, 0, result.CurrentTurn)
	assert.Equal(t, api.SessionStatusRunning, result.Status)
	assert.True(t, result.ContinuePolling)
}

func TestReconcile_FetchFailurePropagates(t *testing.T) {
	fetcher := &fakeHistory{err: threadstore.ErrThreadNotFound}

	result, err := NewReconciler(fetcher).Reconcile(context.Background(), "thread-1")
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, threadstore.ErrThreadNotFound))
}

func TestNormalize_RewardAndStopDefaults(t *testing.T) {
	messages := Normalize([]threadstore.RawMessage{
		rawMsg("human", "plain", nil),
		rawMsg("ai", "annotated", map[string]any{"reward": 1.5, "stop": true}),
		rawMsg("ai", "junk annotations", map[string]any{"reward": "high", "stop": "yes"}),
	})

	require.Len(t, messages, 3)
	assert.Nil(t, messages[0].Reward)
	assert.False(t, messages[0].Stop)

	require.NotNil(t, messages[1].Reward)
	assert.InDelta(t, 1.5, *messages[1].Reward, 1e-9)
	assert.True(t, messages[1].Stop)

	assert.Nil(t, messages[2].Reward)
	assert.False(t, messages[2].Stop)
}
