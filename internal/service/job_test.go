package service_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/generation"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/internal/service"
	"github.com/agentbed/testbed/internal/workflow"
)

type cannedGenerator struct {
	result map[string]any
	err    error
}

func (g *cannedGenerator) Generate(context.Context, generation.Request) (map[string]any, error) {
	return g.result, g.err
}

var _ = Describe("job service", Ordered, func() {
	var (
		jobs *registry.JobRegistry
		gen  *cannedGenerator
		svc  *service.JobService
	)

	BeforeEach(func() {
		jobs = registry.NewJobRegistry()
		gen = &cannedGenerator{result: map[string]any{"name": "Dana"}}
		runner := workflow.NewStagedRunner(jobs, nil)
		svc = service.NewJobService(context.Background(), jobs, runner, gen)
	})

	Context("create", func() {
		It("returns an id immediately and finishes in the background", func() {
			reply, err := svc.CreateJob(context.TODO(), api.CreateJobRequest{Kind: "persona", Requirements: "skeptical buyer"})
			Expect(err).To(BeNil())
			Expect(reply.JobID).ToNot(BeEmpty())

			Eventually(func() api.JobStatus {
				job, getErr := svc.GetJob(context.TODO(), reply.JobID)
				Expect(getErr).To(BeNil())
				return job.Status
			}, "2s", "10ms").Should(Equal(api.JobStatusCompleted))

			job, err := svc.GetJob(context.TODO(), reply.JobID)
			Expect(err).To(BeNil())
			Expect(job.Progress).To(Equal(100))
			Expect(job.Result).To(HaveKeyWithValue("name", "Dana"))
			Expect(job.Error).To(BeNil())
			Expect(job.CompletedAt).ToNot(BeNil())
		})

		It("reports a failed generation with the error stage", func() {
			gen.err = generation.ErrNotConfigured
			reply, err := svc.CreateJob(context.TODO(), api.CreateJobRequest{Kind: "goal", Requirements: "pricing talk"})
			Expect(err).To(BeNil())

			Eventually(func() api.JobStatus {
				job, getErr := svc.GetJob(context.TODO(), reply.JobID)
				Expect(getErr).To(BeNil())
				return job.Status
			}, "2s", "10ms").Should(Equal(api.JobStatusFailed))

			job, err := svc.GetJob(context.TODO(), reply.JobID)
			Expect(err).To(BeNil())
			Expect(job.Stage).To(Equal("Error occurred"))
			Expect(job.Error).ToNot(BeNil())
			Expect(job.Result).To(BeNil())
		})
	})

	Context("get", func() {
		It("returns not found for an unknown id", func() {
			_, err := svc.GetJob(context.TODO(), uuid.NewString())
			Expect(err).To(BeAssignableToTypeOf(&service.ErrJobNotFound{}))
		})
	})

	Context("list", func() {
		It("lists every tracked job", func() {
			_, err := svc.CreateJob(context.TODO(), api.CreateJobRequest{Kind: "persona", Requirements: "a"})
			Expect(err).To(BeNil())
			_, err = svc.CreateJob(context.TODO(), api.CreateJobRequest{Kind: "goal", Requirements: "b"})
			Expect(err).To(BeNil())

			list, err := svc.ListJobs(context.TODO())
			Expect(err).To(BeNil())
			Expect(list).To(HaveLen(2))
		})
	})
})
