package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/threadstore"
	"github.com/agentbed/testbed/internal/trajectory"
	"github.com/agentbed/testbed/internal/workflow"
)

// SimulationService starts simulation runs and answers polls. A poll
// always re-reads the external thread first; the session registry is
// the fallback when the runtime cannot be reached and the only source
// for stop requests and failure reasons.
type SimulationService struct {
	store      store.Store
	sessions   *registry.SessionRegistry
	statuses   *registry.ThreadStatusCache
	threads    threadstore.Store
	reconciler *trajectory.Reconciler
	runner     *workflow.SimulationRunner

	defaultMaxTurns int
	runCtx          context.Context
	log             *zap.SugaredLogger
}

func NewSimulationService(
	runCtx context.Context,
	datastore store.Store,
	sessions *registry.SessionRegistry,
	statuses *registry.ThreadStatusCache,
	threads threadstore.Store,
	runner *workflow.SimulationRunner,
	defaultMaxTurns int,
) *SimulationService {
	return &SimulationService{
		store:           datastore,
		sessions:        sessions,
		statuses:        statuses,
		threads:         threads,
		reconciler:      trajectory.NewReconciler(threads),
		runner:          runner,
		defaultMaxTurns: defaultMaxTurns,
		runCtx:          runCtx,
		log:             zap.S().Named("simulation_service"),
	}
}

func (s *SimulationService) CreateSimulation(ctx context.Context, request api.CreateSimulationRequest) (api.CreateSimulationReply, error) {
	personaID, err := uuid.Parse(request.PersonaID)
	if err != nil {
		return api.CreateSimulationReply{}, NewErrPersonaNotFound(uuid.Nil)
	}
	goalID, err := uuid.Parse(request.GoalID)
	if err != nil {
		return api.CreateSimulationReply{}, NewErrGoalNotFound(uuid.Nil)
	}

	persona, err := s.store.Persona().Get(ctx, personaID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.CreateSimulationReply{}, NewErrPersonaNotFound(personaID)
		}
		return api.CreateSimulationReply{}, err
	}

	goal, err := s.store.Goal().Get(ctx, goalID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.CreateSimulationReply{}, NewErrGoalNotFound(goalID)
		}
		return api.CreateSimulationReply{}, err
	}

	maxTurns := request.MaxTurns
	if maxTurns == 0 {
		maxTurns = goal.MaxTurns
	}
	if maxTurns == 0 {
		maxTurns = s.defaultMaxTurns
	}

	simulationID := uuid.NewString()
	threadID, err := s.threads.CreateThread(ctx, threadstore.ThreadMetadata{
		"simulation_id": simulationID,
		"persona_id":    personaID.String(),
		"goal_id":       goalID.String(),
	})
	if err != nil {
		return api.CreateSimulationReply{}, NewErrAgentUnavailable(err)
	}

	s.sessions.Create(simulationID, personaID.String(), goalID.String(), maxTurns)
	s.sessions.Update(simulationID, registry.SessionPatch{ThreadID: &threadID})
	s.statuses.Set(threadID, "running", registry.ThreadStatusPatch{MaxTurns: &maxTurns})

	go s.runner.Run(s.runCtx, workflow.SimulationParams{
		SimulationID:    simulationID,
		ThreadID:        threadID,
		Persona:         persona.ToApiResource(),
		Goal:            goal.ToApiResource(),
		MaxTurns:        maxTurns,
		Model:           request.Model,
		ReasoningEffort: request.ReasoningEffort,
	})

	s.log.Infow("simulation accepted",
		"simulation_id", simulationID, "thread_id", threadID, "max_turns", maxTurns)
	return api.CreateSimulationReply{SimulationID: simulationID, ThreadID: threadID}, nil
}

// GetSimulationStatus answers a poll. The thread is reconciled on
// every call; when the runtime is unreachable the last session
// snapshot is served instead and the run is never marked failed for a
// poll-side error.
func (s *SimulationService) GetSimulationStatus(ctx context.Context, id string) (api.SimulationStatus, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return api.SimulationStatus{}, NewErrSimulationNotFound(id)
	}

	status := api.SimulationStatus{
		SimulationID: session.SimulationID,
		ThreadID:     session.ThreadID,
		MaxTurns:     session.MaxTurns,
		GoalAchieved: session.GoalAchieved,
		StartedAt:    session.StartedAt,
		CompletedAt:  session.CompletedAt,
	}
	if session.Error != "" {
		msg := session.Error
		status.Error = &msg
	}

	result, err := s.reconcile(ctx, session)
	if err != nil {
		s.log.Warnw("poll falling back to session snapshot",
			"simulation_id", id, "thread_id", session.ThreadID, "error", err)
		status.Status = session.Status
		status.CurrentTurn = session.CurrentTurn
		status.Trajectory = session.Trajectory
		status.Rewards = trajectory.SummarizeRewards(session.Trajectory)
		status.ShouldContinuePolling = !session.Status.IsTerminal()
		return status, nil
	}

	status.CurrentTurn = result.CurrentTurn
	status.Trajectory = result.Messages
	status.Rewards = result.Rewards
	if session.Status.IsTerminal() {
		status.Status = session.Status
		status.ShouldContinuePolling = false
	} else {
		status.Status = result.Status
		status.ShouldContinuePolling = result.ContinuePolling
	}
	return status, nil
}

func (s *SimulationService) reconcile(ctx context.Context, session registry.Session) (*trajectory.Result, error) {
	if session.ThreadID == "" {
		return nil, threadstore.ErrThreadNotFound
	}
	return s.reconciler.Reconcile(ctx, session.ThreadID)
}

// StopSimulation requests a cooperative stop. The request is accepted
// while the run is live and turns into a no-op once it is terminal;
// the turn in flight always finishes.
func (s *SimulationService) StopSimulation(ctx context.Context, id string) (api.StopSimulationReply, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return api.StopSimulationReply{}, NewErrSimulationNotFound(id)
	}
	if session.Status.IsTerminal() {
		return api.StopSimulationReply{Accepted: false}, nil
	}

	s.sessions.Stop(id)
	s.log.Infow("stop requested", "simulation_id", id)
	return api.StopSimulationReply{Accepted: true}, nil
}

func (s *SimulationService) ListSimulations(ctx context.Context) ([]api.SessionSummary, error) {
	sessions := s.sessions.List()
	out := make([]api.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, api.SessionSummary{
			SimulationID: session.SimulationID,
			PersonaID:    session.PersonaID,
			GoalID:       session.GoalID,
			Status:       session.Status,
			CurrentTurn:  session.CurrentTurn,
			MaxTurns:     session.MaxTurns,
			StartedAt:    session.StartedAt,
			CompletedAt:  session.CompletedAt,
		})
	}
	return out, nil
}

// GetThreadStatus serves the cached per-thread status. Threads the
// cache has never seen report "unknown" rather than an error.
func (s *SimulationService) GetThreadStatus(ctx context.Context, threadID string) (api.ThreadStatus, error) {
	entry := s.statuses.Get(threadID)
	return api.ThreadStatus{
		Status:        entry.Status,
		StoppedReason: entry.StoppedReason,
		CurrentTurn:   entry.CurrentTurn,
		MaxTurns:      entry.MaxTurns,
	}, nil
}
