// Package threadstore is the client for the external agent runtime that
// owns simulation threads. The runtime's checkpointed thread is the
// authoritative record of a simulation trajectory; everything tracked
// locally is a cache over what this package returns.
package threadstore

import "encoding/json"

// RawMessage is one message as the runtime stores it. Type tags and the
// metadata side channel are runtime-specific; normalization into the
// API schema happens in the trajectory package.
type RawMessage struct {
	Type             string         `json:"type"`
	Content          string         `json:"content"`
	AdditionalKwargs map[string]any `json:"additional_kwargs,omitempty"`
}

// Reward extracts the optional reward annotation from the metadata
// side channel.
func (m RawMessage) Reward() (float64, bool) {
	v, ok := m.AdditionalKwargs["reward"]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Stop extracts the embedded stop flag, false when absent.
func (m RawMessage) Stop() bool {
	v, ok := m.AdditionalKwargs["stop"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Checkpoint is one snapshot in a thread's history. Later checkpoints
// supersede earlier ones; the last one holds the full current message
// set.
type Checkpoint struct {
	CheckpointID string          `json:"checkpoint_id"`
	Values       CheckpointState `json:"values"`
}

type CheckpointState struct {
	Messages []RawMessage `json:"messages"`
}

// ThreadMetadata is the opaque metadata attached at thread creation.
type ThreadMetadata map[string]any

// StepParams drives one simulation turn against the runtime.
type StepParams struct {
	PersonaName       string `json:"persona_name"`
	PersonaBackground string `json:"persona_background"`
	GoalObjective     string `json:"goal_objective"`
	SuccessCriteria   string `json:"success_criteria"`
	InitialPrompt     string `json:"initial_prompt,omitempty"`
	Model             string `json:"model,omitempty"`
	ReasoningEffort   string `json:"reasoning_effort,omitempty"`
	Turn              int    `json:"turn"`
	MaxTurns          int    `json:"max_turns"`
}
