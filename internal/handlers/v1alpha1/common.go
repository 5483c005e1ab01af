package v1alpha1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/service"
	"github.com/agentbed/testbed/pkg/requestid"
)

func replyJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

func replyError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: message, RequestID: requestid.FromContextPtr(r.Context())})
}

// replyServiceError maps the service error taxonomy onto status codes.
// Unknown errors become a 500 without leaking internals.
func replyServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch err.(type) {
	case *service.ErrResourceNotFound, *service.ErrJobNotFound, *service.ErrSimulationNotFound:
		replyError(w, r, http.StatusNotFound, err.Error())
	case *service.ErrAgentUnavailable:
		replyError(w, r, http.StatusBadGateway, err.Error())
	case *service.ErrDuplicateResource:
		replyError(w, r, http.StatusConflict, err.Error())
	default:
		replyError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAndValidate fills v from the body and runs its validate tags.
// Both failure modes are the caller's 400.
func (h *ServiceHandler) decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}

func validationMessage(err error) string {
	if _, ok := err.(validator.ValidationErrors); ok {
		return "invalid request: " + err.Error()
	}
	return "malformed request body: " + err.Error()
}

// pathUUID parses the {id} route parameter, writing the 400 itself
// when the value is not a uuid.
func pathUUID(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		replyError(w, r, http.StatusBadRequest, "invalid id: "+raw)
		return uuid.Nil, false
	}
	return id, true
}
