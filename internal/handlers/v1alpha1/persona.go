package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

func (h *ServiceHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	var organizationID *string
	if v := r.URL.Query().Get("organization_id"); v != "" {
		organizationID = &v
	}

	personas, err := h.personas.ListPersonas(r.Context(), organizationID)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, personas)
}

func (h *ServiceHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	persona, err := h.personas.GetPersona(r.Context(), id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, persona)
}

func (h *ServiceHandler) CreatePersona(w http.ResponseWriter, r *http.Request) {
	var form api.PersonaCreate
	if err := h.decodeAndValidate(r, &form); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	persona, err := h.personas.CreatePersona(r.Context(), form)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusCreated, persona)
}

func (h *ServiceHandler) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var form api.PersonaUpdate
	if err := h.decodeAndValidate(r, &form); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	persona, err := h.personas.UpdatePersona(r.Context(), id, form)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, persona)
}

func (h *ServiceHandler) DeletePersona(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.personas.DeletePersona(r.Context(), id); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
