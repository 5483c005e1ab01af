package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

type Persona struct {
	gorm.Model
	ID             uuid.UUID `gorm:"primaryKey;"`
	Name           string    `gorm:"not null"`
	Background     string    `gorm:"type:TEXT"`
	OrganizationID *uuid.UUID
	Tags           []byte `gorm:"type:jsonb"`
}

type PersonaList []Persona

func (p Persona) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}

func (p Persona) ToApiResource() api.Persona {
	out := api.Persona{
		ID:         p.ID.String(),
		Name:       p.Name,
		Background: p.Background,
		Tags:       []string{},
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.OrganizationID != nil {
		id := p.OrganizationID.String()
		out.OrganizationID = &id
	}
	if len(p.Tags) > 0 {
		_ = json.Unmarshal(p.Tags, &out.Tags)
	}
	return out
}

func (pl PersonaList) ToApiResource() []api.Persona {
	out := make([]api.Persona, 0, len(pl))
	for _, p := range pl {
		out = append(out, p.ToApiResource())
	}
	return out
}

// MakeTags serializes the tag list for the jsonb column.
func MakeTags(tags []string) []byte {
	if tags == nil {
		tags = []string{}
	}
	val, _ := json.Marshal(tags)
	return val
}
