package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrPersonaNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "persona")
}

func NewErrGoalNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "goal")
}

func NewErrOrganizationNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "organization")
}

type ErrJobNotFound struct {
	error
}

func NewErrJobNotFound(id string) *ErrJobNotFound {
	return &ErrJobNotFound{fmt.Errorf("job %s not found", id)}
}

type ErrSimulationNotFound struct {
	error
}

func NewErrSimulationNotFound(id string) *ErrSimulationNotFound {
	return &ErrSimulationNotFound{fmt.Errorf("simulation %s not found", id)}
}

// ErrAgentUnavailable reports that the agent runtime rejected or never
// received a call the operation depends on.
type ErrAgentUnavailable struct {
	error
}

func NewErrAgentUnavailable(err error) *ErrAgentUnavailable {
	return &ErrAgentUnavailable{fmt.Errorf("agent runtime unavailable: %w", err)}
}

type ErrDuplicateResource struct {
	error
}

func NewErrDuplicateResource(resourceType, name string) *ErrDuplicateResource {
	return &ErrDuplicateResource{fmt.Errorf("%s %q already exists", resourceType, name)}
}
