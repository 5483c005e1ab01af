// Package trajectory derives normalized simulation state from the
// external thread's checkpoint history. It is recomputed on every poll;
// nothing here owns state.
package trajectory

import (
	"context"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/threadstore"
)

// roleTable maps the runtime's message type tags onto the API roles.
// Tags missing from the table pass through verbatim so that new runtime
// message kinds degrade gracefully instead of failing the poll.
var roleTable = map[string]api.Role{
	"human":     api.RoleUser,
	"user":      api.RoleUser,
	"ai":        api.RoleAssistant,
	"assistant": api.RoleAssistant,
	"system":    api.RoleSystem,
	"tool":      api.RoleTool,
}

// HistoryFetcher is the slice of the thread store the reconciler needs.
type HistoryFetcher interface {
	GetHistory(ctx context.Context, threadID string) ([]threadstore.Checkpoint, error)
}

// Result is one reconciliation pass over a thread.
type Result struct {
	Messages    []api.Message
	Status      api.SessionStatus
	CurrentTurn int
	Rewards     api.RewardSummary

	// Stopped is the raw embedded stop flag on the last message.
	// ContinuePolling is the caller-facing decision: it stays true when
	// the stop flag sits on a user message, because the agent has not
	// answered the final prompt yet and the thread is still moving.
	Stopped         bool
	ContinuePolling bool
}

// Reconciler turns checkpoint history into normalized polling state.
type Reconciler struct {
	threads HistoryFetcher
}

func NewReconciler(threads HistoryFetcher) *Reconciler {
	return &Reconciler{threads: threads}
}

// Reconcile fetches the thread's full history and derives status,
// trajectory, turn count and rewards from the last checkpoint. Fetch
// failures propagate as-is (threadstore.ErrThreadNotFound or
// ErrUnavailable); they are never collapsed into an empty result, so
// "no messages yet" stays distinguishable from "fetch failed".
func (r *Reconciler) Reconcile(ctx context.Context, threadID string) (*Result, error) {
	checkpoints, err := r.threads.GetHistory(ctx, threadID)
	if err != nil {
		return nil, err
	}

	var raw []threadstore.RawMessage
	if len(checkpoints) > 0 {
		// Earlier checkpoints are superseded, never merged.
		raw = checkpoints[len(checkpoints)-1].Values.Messages
	}

	messages := Normalize(raw)
	result := &Result{
		Messages:        messages,
		Status:          api.SessionStatusRunning,
		CurrentTurn:     countUserTurns(messages),
		Rewards:         SummarizeRewards(messages),
		ContinuePolling: true,
	}

	if len(messages) == 0 {
		return result, nil
	}

	last := messages[len(messages)-1]
	result.Stopped = last.Stop
	if last.Stop {
		if last.Role == api.RoleUser {
			// The stop marker landed on the closing user prompt; the
			// agent's reply is still in flight. Documented behavior:
			// keep polling instead of declaring the run terminal.
			result.ContinuePolling = true
		} else {
			result.Status = api.SessionStatusCompleted
			result.ContinuePolling = false
		}
	}

	return result, nil
}

// Normalize maps raw runtime messages onto the canonical schema.
func Normalize(raw []threadstore.RawMessage) []api.Message {
	messages := make([]api.Message, 0, len(raw))
	for _, m := range raw {
		role, ok := roleTable[m.Type]
		if !ok {
			role = api.Role(m.Type)
		}

		msg := api.Message{
			Role:    role,
			Content: m.Content,
			Stop:    m.Stop(),
		}
		if reward, ok := m.Reward(); ok {
			msg.Reward = &reward
		}
		messages = append(messages, msg)
	}
	return messages
}

// countUserTurns counts user-role messages; one user message begins
// each turn.
func countUserTurns(messages []api.Message) int {
	turns := 0
	for _, m := range messages {
		if m.Role == api.RoleUser {
			turns++
		}
	}
	return turns
}
