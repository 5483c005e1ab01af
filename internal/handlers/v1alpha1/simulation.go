package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

func (h *ServiceHandler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var request api.CreateSimulationRequest
	if err := h.decodeAndValidate(r, &request); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	reply, err := h.simulations.CreateSimulation(r.Context(), request)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusAccepted, reply)
}

func (h *ServiceHandler) GetSimulationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.simulations.GetSimulationStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, status)
}

func (h *ServiceHandler) StopSimulation(w http.ResponseWriter, r *http.Request) {
	reply, err := h.simulations.StopSimulation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusAccepted, reply)
}

func (h *ServiceHandler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.simulations.ListSimulations(r.Context())
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, sessions)
}

// GetThreadStatus serves the cached status projection. The id here is
// the runtime's thread id, not a simulation id.
func (h *ServiceHandler) GetThreadStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.simulations.GetThreadStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, status)
}
