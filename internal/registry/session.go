package registry

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

// Session is the tracked record of a multi-turn simulation run. The
// external thread remains the authoritative trajectory; this record is
// the fallback used when the thread store cannot be reached.
type Session struct {
	SimulationID string
	ThreadID     string
	PersonaID    string
	GoalID       string
	MaxTurns     int
	Status       api.SessionStatus
	CurrentTurn  int
	Trajectory   []api.Message
	GoalAchieved *bool
	Error        string
	ShouldStop   bool
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// SessionPatch is the closed set of fields the simulation workflow may
// update. Trajectory growth goes through AppendTrajectory instead.
type SessionPatch struct {
	Status       *api.SessionStatus
	ThreadID     *string
	CurrentTurn  *int
	GoalAchieved *bool
	Error        *string
}

type sessionEntry struct {
	mu      sync.RWMutex
	session Session
}

// SessionRegistry tracks simulation sessions with the same locking
// discipline as JobRegistry: a short registry lock for the map, a
// per-entry lock for the record.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*sessionEntry)}
}

// Create registers a new running session under the given simulation id.
func (r *SessionRegistry) Create(simulationID, personaID, goalID string, maxTurns int) Session {
	session := Session{
		SimulationID: simulationID,
		PersonaID:    personaID,
		GoalID:       goalID,
		MaxTurns:     maxTurns,
		Status:       api.SessionStatusRunning,
		Trajectory:   []api.Message{},
		StartedAt:    time.Now().UTC(),
	}

	r.mu.Lock()
	r.sessions[simulationID] = &sessionEntry{session: session}
	r.mu.Unlock()

	return session
}

// Get returns a snapshot of the session with its own trajectory copy,
// or false when the id is unknown.
func (r *SessionRegistry) Get(id string) (Session, bool) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return Session{}, false
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()

	snapshot := entry.session
	snapshot.Trajectory = make([]api.Message, len(entry.session.Trajectory))
	copy(snapshot.Trajectory, entry.session.Trajectory)
	return snapshot, true
}

// Update applies the patch. Unknown ids are a no-op. Terminal sessions
// absorb further updates; running -> stopped happens only through an
// explicit stop, never as a side effect of a poll.
func (r *SessionRegistry) Update(id string, patch SessionPatch) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	session := &entry.session
	if session.Status.IsTerminal() {
		return
	}

	if patch.Status != nil && *patch.Status != session.Status {
		if session.Status != api.SessionStatusRunning {
			zap.S().Named("session_registry").Warnw("rejected illegal status transition",
				"simulation_id", id, "from", session.Status, "to", *patch.Status)
			return
		}
		session.Status = *patch.Status
		if session.Status.IsTerminal() && session.CompletedAt == nil {
			now := time.Now().UTC()
			session.CompletedAt = &now
		}
	}
	if patch.ThreadID != nil {
		session.ThreadID = *patch.ThreadID
	}
	if patch.CurrentTurn != nil && *patch.CurrentTurn > session.CurrentTurn {
		session.CurrentTurn = min(*patch.CurrentTurn, session.MaxTurns)
	}
	if patch.GoalAchieved != nil {
		session.GoalAchieved = patch.GoalAchieved
	}
	if patch.Error != nil {
		session.Error = *patch.Error
	}
}

// AppendTrajectory extends the trajectory in order. It never truncates
// or reorders; the trajectory only grows.
func (r *SessionRegistry) AppendTrajectory(id string, messages []api.Message) {
	if len(messages) == 0 {
		return
	}

	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.session.Trajectory = append(entry.session.Trajectory, messages...)
	entry.mu.Unlock()
}

// Stop raises the cooperative stop flag. The flag moves false -> true
// exactly once and never resets; calling Stop again is harmless. The
// return value reports whether the id existed.
func (r *SessionRegistry) Stop(id string) bool {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	entry.mu.Lock()
	entry.session.ShouldStop = true
	entry.mu.Unlock()
	return true
}

// ShouldStop reads the cooperative stop flag. Unknown ids read false.
func (r *SessionRegistry) ShouldStop(id string) bool {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.session.ShouldStop
}

// List returns session snapshots sorted newest first.
func (r *SessionRegistry) List() []Session {
	r.mu.RLock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Session, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, e.session)
		e.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// Cleanup removes terminal sessions whose completion is older than
// maxAge. Running sessions are never swept regardless of age.
func (r *SessionRegistry) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		entry.mu.RLock()
		expired := entry.session.CompletedAt != nil && !entry.session.CompletedAt.After(cutoff)
		entry.mu.RUnlock()
		if expired {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
