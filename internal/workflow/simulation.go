package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/events"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/internal/threadstore"
	"github.com/agentbed/testbed/internal/trajectory"
	"github.com/agentbed/testbed/pkg/metrics"
)

// Stop reasons surfaced on the thread status cache.
const (
	StopReasonRequested = "should_stop_true"
	StopReasonMaxTurns  = "max_turns_reached"
	StopReasonAgentStop = "stop_signal"
	StopReasonError     = "error"
	StopReasonCanceled  = "canceled"
)

// SimulationParams drives one simulation run. Persona and goal content
// is captured at start; later edits to the stored resources do not
// affect a run already in flight.
type SimulationParams struct {
	SimulationID    string
	ThreadID        string
	Persona         api.Persona
	Goal            api.Goal
	MaxTurns        int
	Model           string
	ReasoningEffort string
}

// SimulationRunner drives multi-turn simulation loops. One Run
// goroutine is the only writer for its session; pollers read through
// the registry and the reconciler.
type SimulationRunner struct {
	sessions *registry.SessionRegistry
	statuses *registry.ThreadStatusCache
	threads  threadstore.Store
	producer *events.EventProducer
	log      *zap.SugaredLogger
}

func NewSimulationRunner(sessions *registry.SessionRegistry, statuses *registry.ThreadStatusCache, threads threadstore.Store, producer *events.EventProducer) *SimulationRunner {
	return &SimulationRunner{
		sessions: sessions,
		statuses: statuses,
		threads:  threads,
		producer: producer,
		log:      zap.S().Named("simulation"),
	}
}

// Run executes turns until the first of: a stop request on the
// session, a stop flag embedded in a returned message, the turn budget
// running out, or a runtime error. Each successful turn appends the
// returned messages to the session trajectory and bumps the turn
// counter before the stop conditions are re-checked.
func (r *SimulationRunner) Run(ctx context.Context, p SimulationParams) {
	metrics.UpdateActiveSimulationsMetric(1)
	defer metrics.UpdateActiveSimulationsMetric(-1)

	r.setThreadStatus(p, "running", "")

	for turn := 1; turn <= p.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			r.finish(p, api.SessionStatusStopped, StopReasonCanceled, nil, "")
			return
		}
		if r.sessions.ShouldStop(p.SimulationID) {
			r.finish(p, api.SessionStatusStopped, StopReasonRequested, nil, "")
			return
		}

		raw, err := r.threads.Step(ctx, p.ThreadID, r.stepParams(p, turn))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				r.finish(p, api.SessionStatusStopped, StopReasonCanceled, nil, "")
				return
			}
			r.log.Errorw("simulation turn failed",
				"simulation_id", p.SimulationID, "thread_id", p.ThreadID, "turn", turn, "error", err)
			r.finish(p, api.SessionStatusFailed, StopReasonError, nil, err.Error())
			return
		}

		messages := trajectory.Normalize(raw)
		r.sessions.AppendTrajectory(p.SimulationID, messages)
		r.sessions.Update(p.SimulationID, registry.SessionPatch{CurrentTurn: &turn})
		metrics.IncreaseSimulationTurnsTotalMetric()
		r.setThreadStatus(p, "running", "")

		if stopped(messages) {
			r.finish(p, api.SessionStatusCompleted, StopReasonAgentStop, r.goalAchieved(p), "")
			return
		}
	}

	r.finish(p, api.SessionStatusCompleted, StopReasonMaxTurns, nil, "")
}

func (r *SimulationRunner) stepParams(p SimulationParams, turn int) threadstore.StepParams {
	params := threadstore.StepParams{
		PersonaName:       p.Persona.Name,
		PersonaBackground: p.Persona.Background,
		GoalObjective:     p.Goal.Objective,
		SuccessCriteria:   p.Goal.SuccessCriteria,
		Model:             p.Model,
		ReasoningEffort:   p.ReasoningEffort,
		Turn:              turn,
		MaxTurns:          p.MaxTurns,
	}
	if turn == 1 {
		params.InitialPrompt = p.Goal.InitialPrompt
	}
	return params
}

// goalAchieved decides success for a run the agent ended itself: the
// goal counts as achieved when the accumulated reward is non-negative.
func (r *SimulationRunner) goalAchieved(p SimulationParams) *bool {
	session, ok := r.sessions.Get(p.SimulationID)
	if !ok {
		return nil
	}
	achieved := trajectory.SummarizeRewards(session.Trajectory).Total >= 0
	return &achieved
}

func (r *SimulationRunner) finish(p SimulationParams, status api.SessionStatus, reason string, goalAchieved *bool, errMsg string) {
	patch := registry.SessionPatch{Status: &status, GoalAchieved: goalAchieved}
	if errMsg != "" {
		patch.Error = &errMsg
	}
	r.sessions.Update(p.SimulationID, patch)

	r.setThreadStatus(p, string(status), reason)
	r.emitSimulation(p, errMsg)

	r.log.Infow("simulation finished",
		"simulation_id", p.SimulationID, "thread_id", p.ThreadID, "status", status, "reason", reason)
}

func (r *SimulationRunner) setThreadStatus(p SimulationParams, status, reason string) {
	session, ok := r.sessions.Get(p.SimulationID)
	if !ok {
		return
	}
	patch := registry.ThreadStatusPatch{
		CurrentTurn: &session.CurrentTurn,
		MaxTurns:    &session.MaxTurns,
	}
	if reason != "" {
		patch.StoppedReason = &reason
	}
	r.statuses.Set(p.ThreadID, status, patch)
}

func (r *SimulationRunner) emitSimulation(p SimulationParams, errMsg string) {
	if r.producer == nil {
		return
	}
	session, ok := r.sessions.Get(p.SimulationID)
	if !ok {
		return
	}
	event := events.SimulationEvent{
		SimulationID: session.SimulationID,
		ThreadID:     session.ThreadID,
		Status:       string(session.Status),
		CurrentTurn:  session.CurrentTurn,
		Error:        errMsg,
	}
	if err := r.producer.Emit(events.SimulationMessageKind, event); err != nil {
		r.log.Warnw("failed to emit simulation event", "simulation_id", p.SimulationID, "error", err)
	}
}

func stopped(messages []api.Message) bool {
	for _, m := range messages {
		if m.Stop {
			return true
		}
	}
	return false
}
