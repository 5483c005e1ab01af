package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

func (h *ServiceHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.ListGoals(r.Context())
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, goals)
}

func (h *ServiceHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	goal, err := h.goals.GetGoal(r.Context(), id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, goal)
}

func (h *ServiceHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var form api.GoalCreate
	if err := h.decodeAndValidate(r, &form); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	goal, err := h.goals.CreateGoal(r.Context(), form)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusCreated, goal)
}

func (h *ServiceHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var form api.GoalUpdate
	if err := h.decodeAndValidate(r, &form); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	goal, err := h.goals.UpdateGoal(r.Context(), id, form)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, goal)
}

func (h *ServiceHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.goals.DeleteGoal(r.Context(), id); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
