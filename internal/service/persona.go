package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/store/model"
)

type PersonaService struct {
	store store.Store
}

func NewPersonaService(datastore store.Store) *PersonaService {
	return &PersonaService{store: datastore}
}

func (s *PersonaService) ListPersonas(ctx context.Context, organizationID *string) ([]api.Persona, error) {
	var filter *store.PersonaQueryFilter
	if organizationID != nil {
		filter = store.NewPersonaQueryFilter().ByOrganizationID(*organizationID)
	}

	personas, err := s.store.Persona().List(ctx, filter, store.NewPersonaQueryOptions().WithSortOrder(store.SortByCreatedTime))
	if err != nil {
		return nil, err
	}
	return personas.ToApiResource(), nil
}

func (s *PersonaService) GetPersona(ctx context.Context, id uuid.UUID) (api.Persona, error) {
	persona, err := s.store.Persona().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.Persona{}, NewErrPersonaNotFound(id)
		}
		return api.Persona{}, err
	}
	return persona.ToApiResource(), nil
}

func (s *PersonaService) CreatePersona(ctx context.Context, form api.PersonaCreate) (api.Persona, error) {
	persona := model.Persona{
		ID:         uuid.New(),
		Name:       form.Name,
		Background: form.Background,
		Tags:       model.MakeTags(form.Tags),
	}

	if form.OrganizationID != nil {
		orgID, err := uuid.Parse(*form.OrganizationID)
		if err != nil {
			return api.Persona{}, NewErrOrganizationNotFound(uuid.Nil)
		}
		if _, err := s.store.Organization().Get(ctx, orgID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return api.Persona{}, NewErrOrganizationNotFound(orgID)
			}
			return api.Persona{}, err
		}
		persona.OrganizationID = &orgID
	}

	created, err := s.store.Persona().Create(ctx, persona)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return api.Persona{}, NewErrDuplicateResource("persona", form.Name)
		}
		return api.Persona{}, err
	}
	return created.ToApiResource(), nil
}

func (s *PersonaService) UpdatePersona(ctx context.Context, id uuid.UUID, form api.PersonaUpdate) (api.Persona, error) {
	persona := model.Persona{ID: id}
	if form.Name != nil {
		persona.Name = *form.Name
	}
	if form.Background != nil {
		persona.Background = *form.Background
	}
	if form.Tags != nil {
		persona.Tags = model.MakeTags(form.Tags)
	}
	if form.OrganizationID != nil {
		orgID, err := uuid.Parse(*form.OrganizationID)
		if err != nil {
			return api.Persona{}, NewErrOrganizationNotFound(uuid.Nil)
		}
		if _, err := s.store.Organization().Get(ctx, orgID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return api.Persona{}, NewErrOrganizationNotFound(orgID)
			}
			return api.Persona{}, err
		}
		persona.OrganizationID = &orgID
	}

	updated, err := s.store.Persona().Update(ctx, persona)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.Persona{}, NewErrPersonaNotFound(id)
		}
		return api.Persona{}, err
	}
	return updated.ToApiResource(), nil
}

func (s *PersonaService) DeletePersona(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Persona().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrPersonaNotFound(id)
		}
		return err
	}
	return nil
}
