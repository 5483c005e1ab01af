package service

import (
	"context"

	"go.uber.org/zap"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/generation"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/internal/workflow"
)

// JobService starts generation jobs and serves their polling state.
// The workflow goroutine it spawns is the record's only writer; this
// service only ever reads it back.
type JobService struct {
	jobs      *registry.JobRegistry
	runner    *workflow.StagedRunner
	generator generation.Generator

	// runCtx outlives the request that started the job; job goroutines
	// stop when the server shuts down, not when the caller disconnects.
	runCtx context.Context
}

func NewJobService(runCtx context.Context, jobs *registry.JobRegistry, runner *workflow.StagedRunner, generator generation.Generator) *JobService {
	return &JobService{
		jobs:      jobs,
		runner:    runner,
		generator: generator,
		runCtx:    runCtx,
	}
}

func (s *JobService) CreateJob(ctx context.Context, request api.CreateJobRequest) (api.CreateJobReply, error) {
	job := s.jobs.Create()

	stages := workflow.GenerationStages(s.generator, generation.Request{
		Kind:         request.Kind,
		Requirements: request.Requirements,
		Options:      request.Options,
	})
	go s.runner.Run(s.runCtx, job.ID, stages)

	zap.S().Named("job_service").Infow("generation job accepted", "job_id", job.ID, "kind", request.Kind)
	return api.CreateJobReply{JobID: job.ID}, nil
}

func (s *JobService) GetJob(ctx context.Context, id string) (api.Job, error) {
	job, ok := s.jobs.Get(id)
	if !ok {
		return api.Job{}, NewErrJobNotFound(id)
	}
	return jobToApi(job), nil
}

func (s *JobService) ListJobs(ctx context.Context) ([]api.Job, error) {
	jobs := s.jobs.List()
	out := make([]api.Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, jobToApi(job))
	}
	return out, nil
}

func jobToApi(job registry.Job) api.Job {
	out := api.Job{
		ID:          job.ID,
		Status:      job.Status,
		Stage:       job.Stage,
		Progress:    job.Progress,
		Result:      job.Result,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Error != "" {
		msg := job.Error
		out.Error = &msg
	}
	return out
}
