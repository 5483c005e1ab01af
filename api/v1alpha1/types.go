// Package v1alpha1 contains the wire types served by the testbed API.
package v1alpha1

import "time"

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SessionStatus is the lifecycle state of a simulation session.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusStopped   SessionStatus = "stopped"
)

func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed || s == SessionStatusStopped
}

// Role is the normalized speaker of a trajectory message. Unrecognized
// source tags pass through verbatim, so the set below is not closed.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one normalized trajectory entry.
type Message struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Reward  *float64 `json:"reward,omitempty"`
	Stop    bool     `json:"stop,omitempty"`
}

// RewardSummary is the reward decomposition over a trajectory.
// Total == Positive - Penalties always holds.
type RewardSummary struct {
	Total     float64 `json:"total"`
	Positive  float64 `json:"positive"`
	Penalties float64 `json:"penalties"`
}

// Job is the polling snapshot of a generation job.
type Job struct {
	ID          string         `json:"id"`
	Status      JobStatus      `json:"status"`
	Stage       string         `json:"stage"`
	Progress    int            `json:"progress"`
	Error       *string        `json:"error,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// CreateJobRequest starts a generation job.
type CreateJobRequest struct {
	Kind         string         `json:"kind" validate:"required,oneof=persona goal"`
	Requirements string         `json:"requirements" validate:"required"`
	Count        int            `json:"count,omitempty" validate:"omitempty,gte=1,lte=20"`
	Options      map[string]any `json:"options,omitempty"`
}

// CreateJobReply carries the id to poll.
type CreateJobReply struct {
	JobID string `json:"job_id"`
}

// CreateSimulationRequest starts a simulation run.
type CreateSimulationRequest struct {
	PersonaID       string `json:"persona_id" validate:"required,uuid"`
	GoalID          string `json:"goal_id" validate:"required,uuid"`
	MaxTurns        int    `json:"max_turns,omitempty" validate:"omitempty,gte=1,lte=100"`
	Model           string `json:"model,omitempty"`
	ReasoningEffort string `json:"reasoning_effort,omitempty" validate:"omitempty,oneof=low medium high"`
}

// CreateSimulationReply carries both the local session id and the
// external thread id; the thread is the authoritative record.
type CreateSimulationReply struct {
	SimulationID string `json:"simulation_id"`
	ThreadID     string `json:"thread_id"`
}

// SimulationStatus is the polling snapshot of a simulation. Trajectory
// and rewards are re-derived from the external thread on every poll;
// registry state fills in only when the thread is unavailable.
type SimulationStatus struct {
	SimulationID          string        `json:"simulation_id"`
	ThreadID              string        `json:"thread_id,omitempty"`
	Status                SessionStatus `json:"status"`
	CurrentTurn           int           `json:"current_turn"`
	MaxTurns              int           `json:"max_turns"`
	Trajectory            []Message     `json:"trajectory"`
	Rewards               RewardSummary `json:"rewards"`
	GoalAchieved          *bool         `json:"goal_achieved,omitempty"`
	Error                 *string       `json:"error,omitempty"`
	ShouldContinuePolling bool          `json:"should_continue_polling"`
	StartedAt             time.Time     `json:"started_at"`
	CompletedAt           *time.Time    `json:"completed_at,omitempty"`
}

// SessionSummary is the list-view projection of a session.
type SessionSummary struct {
	SimulationID string        `json:"simulation_id"`
	PersonaID    string        `json:"persona_id"`
	GoalID       string        `json:"goal_id"`
	Status       SessionStatus `json:"status"`
	CurrentTurn  int           `json:"current_turn"`
	MaxTurns     int           `json:"max_turns"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// StopSimulationReply acknowledges a stop request.
type StopSimulationReply struct {
	Accepted bool `json:"accepted"`
}

// ThreadStatus is the lightweight per-thread status projection.
type ThreadStatus struct {
	Status        string `json:"status"`
	StoppedReason string `json:"stopped_reason,omitempty"`
	CurrentTurn   int    `json:"current_turn,omitempty"`
	MaxTurns      int    `json:"max_turns,omitempty"`
}

// Persona is a generated or hand-authored test persona.
type Persona struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Background     string    `json:"background"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PersonaCreate struct {
	Name           string   `json:"name" validate:"required"`
	Background     string   `json:"background" validate:"required"`
	OrganizationID *string  `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	Tags           []string `json:"tags,omitempty"`
}

type PersonaUpdate struct {
	Name           *string  `json:"name,omitempty"`
	Background     *string  `json:"background,omitempty"`
	OrganizationID *string  `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	Tags           []string `json:"tags,omitempty"`
}

// Goal is a test scenario a persona pursues against the hosted agent.
type Goal struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Objective       string    `json:"objective"`
	SuccessCriteria string    `json:"success_criteria"`
	InitialPrompt   string    `json:"initial_prompt"`
	MaxTurns        int       `json:"max_turns"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type GoalCreate struct {
	Name            string `json:"name" validate:"required"`
	Objective       string `json:"objective" validate:"required"`
	SuccessCriteria string `json:"success_criteria" validate:"required"`
	InitialPrompt   string `json:"initial_prompt" validate:"required"`
	MaxTurns        int    `json:"max_turns,omitempty" validate:"omitempty,gte=1,lte=100"`
}

type GoalUpdate struct {
	Name            *string `json:"name,omitempty"`
	Objective       *string `json:"objective,omitempty"`
	SuccessCriteria *string `json:"success_criteria,omitempty"`
	InitialPrompt   *string `json:"initial_prompt,omitempty"`
	MaxTurns        *int    `json:"max_turns,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// Organization groups personas under a company context.
type Organization struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	Type                   *string   `json:"type,omitempty"`
	Industry               *string   `json:"industry,omitempty"`
	CreatedFromRealCompany bool      `json:"created_from_real_company"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type OrganizationCreate struct {
	Name                   string  `json:"name" validate:"required"`
	Description            string  `json:"description" validate:"required"`
	Type                   *string `json:"type,omitempty"`
	Industry               *string `json:"industry,omitempty"`
	CreatedFromRealCompany bool    `json:"created_from_real_company,omitempty"`
}

type OrganizationUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
	Industry    *string `json:"industry,omitempty"`
}

// Error is the uniform error body.
type Error struct {
	Message   string  `json:"message"`
	RequestID *string `json:"request_id,omitempty"`
}
