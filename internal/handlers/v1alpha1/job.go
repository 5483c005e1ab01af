package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

// CreateJob accepts a generation request and returns the id to poll.
// The job itself runs in the background; the 202 carries no result.
func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var request api.CreateJobRequest
	if err := h.decodeAndValidate(r, &request); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	reply, err := h.jobs.CreateJob(r.Context(), request)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusAccepted, reply)
}

func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, job)
}

func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, jobs)
}
