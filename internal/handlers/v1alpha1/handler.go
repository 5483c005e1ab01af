// Package v1alpha1 exposes the tracker's REST surface. Handlers decode
// and validate payloads, delegate to the service layer, and translate
// typed service errors into status codes.
package v1alpha1

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agentbed/testbed/internal/service"
)

type ServiceHandler struct {
	jobs          *service.JobService
	simulations   *service.SimulationService
	personas      *service.PersonaService
	goals         *service.GoalService
	organizations *service.OrganizationService
	validate      *validator.Validate
}

func NewServiceHandler(
	jobs *service.JobService,
	simulations *service.SimulationService,
	personas *service.PersonaService,
	goals *service.GoalService,
	organizations *service.OrganizationService,
) *ServiceHandler {
	return &ServiceHandler{
		jobs:          jobs,
		simulations:   simulations,
		personas:      personas,
		goals:         goals,
		organizations: organizations,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *ServiceHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/generation/jobs", h.CreateJob)
		r.Get("/generation/jobs", h.ListJobs)
		r.Get("/generation/jobs/{id}", h.GetJob)

		r.Post("/simulations", h.CreateSimulation)
		r.Get("/simulations", h.ListSimulations)
		r.Get("/simulations/{id}", h.GetSimulationStatus)
		r.Post("/simulations/{id}/stop", h.StopSimulation)

		r.Get("/threads/{id}/status", h.GetThreadStatus)

		r.Get("/personas", h.ListPersonas)
		r.Post("/personas", h.CreatePersona)
		r.Get("/personas/{id}", h.GetPersona)
		r.Patch("/personas/{id}", h.UpdatePersona)
		r.Delete("/personas/{id}", h.DeletePersona)

		r.Get("/goals", h.ListGoals)
		r.Post("/goals", h.CreateGoal)
		r.Get("/goals/{id}", h.GetGoal)
		r.Patch("/goals/{id}", h.UpdateGoal)
		r.Delete("/goals/{id}", h.DeleteGoal)

		r.Get("/organizations", h.ListOrganizations)
		r.Post("/organizations", h.CreateOrganization)
		r.Get("/organizations/{id}", h.GetOrganization)
		r.Patch("/organizations/{id}", h.UpdateOrganization)
		r.Delete("/organizations/{id}", h.DeleteOrganization)
	})
}
