package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

func (h *ServiceHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.organizations.ListOrganizations(r.Context())
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, orgs)
}

func (h *ServiceHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	org, err := h.organizations.GetOrganization(r.Context(), id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, org)
}

func (h *ServiceHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var form api.OrganizationCreate
	if err := h.decodeAndValidate(r, &form); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	org, err := h.organizations.CreateOrganization(r.Context(), form)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusCreated, org)
}

func (h *ServiceHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var form api.OrganizationUpdate
	if err := h.decodeAndValidate(r, &form); err != nil {
		replyError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	org, err := h.organizations.UpdateOrganization(r.Context(), id, form)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyJSON(w, r, http.StatusOK, org)
}

func (h *ServiceHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.organizations.DeleteOrganization(r.Context(), id); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
