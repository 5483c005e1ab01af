package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

type Organization struct {
	gorm.Model
	ID                     uuid.UUID `gorm:"primaryKey;"`
	Name                   string    `gorm:"uniqueIndex;not null"`
	Description            string
	Type                   *string
	Industry               *string
	CreatedFromRealCompany bool
	Personas               []Persona `gorm:"constraint:OnDelete:SET NULL;"`
}

type OrganizationList []Organization

func (o Organization) String() string {
	val, _ := json.Marshal(o)
	return string(val)
}

func (o Organization) ToApiResource() api.Organization {
	return api.Organization{
		ID:                     o.ID.String(),
		Name:                   o.Name,
		Description:            o.Description,
		Type:                   o.Type,
		Industry:               o.Industry,
		CreatedFromRealCompany: o.CreatedFromRealCompany,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}

func (ol OrganizationList) ToApiResource() []api.Organization {
	out := make([]api.Organization, 0, len(ol))
	for _, o := range ol {
		out = append(out, o.ToApiResource())
	}
	return out
}
