// Package workflow runs the background goroutines behind the polling
// API: staged generation jobs and multi-turn simulation loops. Each run
// is the single writer for its record; everything else only reads.
package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/events"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/pkg/metrics"
)

const errorStageLabel = "Error occurred"

// Stage is one step of a staged job. Progress is the value reported
// while the stage runs; stages must be ordered with increasing
// progress so the polled value never moves backwards.
type Stage struct {
	Label    string
	Progress int
	Run      func(ctx context.Context, state *State) error
}

// State is the scratch space threaded through the stages of one run.
// The final Result is published on the job record on success.
type State struct {
	Result map[string]any
}

// StagedRunner executes an ordered stage list against a job record,
// keeping status, stage label and progress current after every step.
type StagedRunner struct {
	jobs     *registry.JobRegistry
	producer *events.EventProducer
	log      *zap.SugaredLogger
}

// NewStagedRunner builds a runner. The event producer may be nil when
// event emission is disabled.
func NewStagedRunner(jobs *registry.JobRegistry, producer *events.EventProducer) *StagedRunner {
	return &StagedRunner{
		jobs:     jobs,
		producer: producer,
		log:      zap.S().Named("workflow"),
	}
}

// Run executes the stages in order. The first stage moves the job from
// pending to running. Any stage error terminates the run: the job is
// marked failed with the error message and its stage set to the error
// label, and no later stage executes. When every stage succeeds the
// job completes at progress 100 with the state's result attached.
//
// Run never returns an error: a job's outcome is observable only
// through the registry, the same way pollers see it.
func (r *StagedRunner) Run(ctx context.Context, jobID string, stages []Stage) {
	state := &State{}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			r.fail(jobID, fmt.Errorf("run canceled: %w", err))
			return
		}

		running := api.JobStatusRunning
		r.jobs.Update(jobID, registry.JobPatch{
			Status:   &running,
			Stage:    &stage.Label,
			Progress: &stage.Progress,
		})
		r.emitJob(jobID)

		if err := stage.Run(ctx, state); err != nil {
			r.log.Errorw("job stage failed", "job_id", jobID, "stage", stage.Label, "error", err)
			r.fail(jobID, err)
			return
		}
	}

	completed := api.JobStatusCompleted
	progress := 100
	r.jobs.Update(jobID, registry.JobPatch{
		Status:   &completed,
		Progress: &progress,
		Result:   state.Result,
	})
	metrics.IncreaseGenerationJobsTotalMetric(string(api.JobStatusCompleted))
	r.emitJob(jobID)
}

func (r *StagedRunner) fail(jobID string, err error) {
	failed := api.JobStatusFailed
	stage := errorStageLabel
	msg := err.Error()
	r.jobs.Update(jobID, registry.JobPatch{
		Status: &failed,
		Stage:  &stage,
		Error:  &msg,
	})
	metrics.IncreaseGenerationJobsTotalMetric(string(api.JobStatusFailed))
	r.emitJob(jobID)
}

func (r *StagedRunner) emitJob(jobID string) {
	if r.producer == nil {
		return
	}
	job, ok := r.jobs.Get(jobID)
	if !ok {
		return
	}
	event := events.JobEvent{
		JobID:    job.ID,
		Status:   string(job.Status),
		Stage:    job.Stage,
		Progress: job.Progress,
		Error:    job.Error,
	}
	if err := r.producer.Emit(events.JobMessageKind, event); err != nil {
		r.log.Warnw("failed to emit job event", "job_id", jobID, "error", err)
	}
}
