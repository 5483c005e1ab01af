// Package registry holds the in-memory tracking state for generation
// jobs and simulation sessions. State is process-lifetime only: records
// are created by request handlers, written by exactly one background
// workflow each, read by any number of pollers, and removed whole by
// the retention sweeper.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

// Job is the tracked record of a single-shot generation request.
type Job struct {
	ID          string
	Status      api.JobStatus
	Stage       string
	Progress    int
	Error       string
	Result      map[string]any
	StartedAt   time.Time
	CompletedAt *time.Time
}

// JobPatch is the closed set of fields a workflow may update. Nil
// fields are left untouched.
type JobPatch struct {
	Status   *api.JobStatus
	Stage    *string
	Progress *int
	Error    *string
	Result   map[string]any
}

type jobEntry struct {
	mu  sync.RWMutex
	job Job
}

// JobRegistry tracks generation jobs. The registry lock only guards the
// map itself; each entry carries its own lock so writers on one id
// never block readers of another.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*jobEntry
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{jobs: make(map[string]*jobEntry)}
}

// Create allocates a fresh job in pending state and returns its snapshot.
func (r *JobRegistry) Create() Job {
	job := Job{
		ID:        uuid.New().String(),
		Status:    api.JobStatusPending,
		Stage:     "Initializing...",
		Progress:  0,
		StartedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.jobs[job.ID] = &jobEntry{job: job}
	r.mu.Unlock()

	return job
}

// Get returns a snapshot of the job, or false when the id is unknown.
// Absence is a normal result, not an error.
func (r *JobRegistry) Get(id string) (Job, bool) {
	r.mu.RLock()
	entry, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return Job{}, false
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.job, true
}

// Update applies the patch to the job. Unknown ids are a no-op: the
// workflow may legitimately race a cleanup sweep. Terminal jobs absorb
// all further updates, progress never decreases, and status moves only
// along pending -> running -> {completed, failed}.
func (r *JobRegistry) Update(id string, patch JobPatch) {
	r.mu.RLock()
	entry, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	job := &entry.job
	if job.Status.IsTerminal() {
		return
	}

	if patch.Status != nil && *patch.Status != job.Status {
		if !legalJobTransition(job.Status, *patch.Status) {
			zap.S().Named("job_registry").Warnw("rejected illegal status transition",
				"job_id", id, "from", job.Status, "to", *patch.Status)
			return
		}
		job.Status = *patch.Status
		if job.Status.IsTerminal() && job.CompletedAt == nil {
			now := time.Now().UTC()
			job.CompletedAt = &now
		}
	}
	if patch.Stage != nil {
		job.Stage = *patch.Stage
	}
	if patch.Progress != nil && *patch.Progress > job.Progress {
		job.Progress = min(*patch.Progress, 100)
	}
	if patch.Error != nil {
		job.Error = *patch.Error
		job.Result = nil
	}
	if patch.Result != nil && job.Error == "" {
		job.Result = patch.Result
	}
}

// List returns snapshots of all jobs, unordered.
func (r *JobRegistry) List() []Job {
	r.mu.RLock()
	entries := make([]*jobEntry, 0, len(r.jobs))
	for _, e := range r.jobs {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Job, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, e.job)
		e.mu.RUnlock()
	}
	return out
}

// Cleanup removes whole records older than maxAge, measured from
// StartedAt. It returns the number of removed jobs.
func (r *JobRegistry) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.jobs {
		entry.mu.RLock()
		expired := entry.job.StartedAt.Before(cutoff) || entry.job.StartedAt.Equal(cutoff)
		entry.mu.RUnlock()
		if expired {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

func legalJobTransition(from, to api.JobStatus) bool {
	switch from {
	case api.JobStatusPending:
		return to == api.JobStatusRunning || to == api.JobStatusFailed
	case api.JobStatusRunning:
		return to == api.JobStatusCompleted || to == api.JobStatusFailed
	default:
		return false
	}
}
