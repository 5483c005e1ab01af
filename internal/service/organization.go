package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/store/model"
)

type OrganizationService struct {
	store store.Store
}

func NewOrganizationService(datastore store.Store) *OrganizationService {
	return &OrganizationService{store: datastore}
}

func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]api.Organization, error) {
	orgs, err := s.store.Organization().List(ctx)
	if err != nil {
		return nil, err
	}
	return orgs.ToApiResource(), nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, id uuid.UUID) (api.Organization, error) {
	org, err := s.store.Organization().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.Organization{}, NewErrOrganizationNotFound(id)
		}
		return api.Organization{}, err
	}
	return org.ToApiResource(), nil
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, form api.OrganizationCreate) (api.Organization, error) {
	created, err := s.store.Organization().Create(ctx, model.Organization{
		ID:                     uuid.New(),
		Name:                   form.Name,
		Description:            form.Description,
		Type:                   form.Type,
		Industry:               form.Industry,
		CreatedFromRealCompany: form.CreatedFromRealCompany,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return api.Organization{}, NewErrDuplicateResource("organization", form.Name)
		}
		return api.Organization{}, err
	}
	return created.ToApiResource(), nil
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, id uuid.UUID, form api.OrganizationUpdate) (api.Organization, error) {
	org := model.Organization{ID: id}
	if form.Name != nil {
		org.Name = *form.Name
	}
	if form.Description != nil {
		org.Description = *form.Description
	}
	if form.Type != nil {
		org.Type = form.Type
	}
	if form.Industry != nil {
		org.Industry = form.Industry
	}

	updated, err := s.store.Organization().Update(ctx, org)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.Organization{}, NewErrOrganizationNotFound(id)
		}
		if errors.Is(err, store.ErrDuplicateKey) {
			return api.Organization{}, NewErrDuplicateResource("organization", org.Name)
		}
		return api.Organization{}, err
	}
	return updated.ToApiResource(), nil
}

func (s *OrganizationService) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Organization().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrOrganizationNotFound(id)
		}
		return err
	}
	return nil
}
