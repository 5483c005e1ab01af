package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	api "github.com/agentbed/testbed/api/v1alpha1"
)

type Goal struct {
	gorm.Model
	ID              uuid.UUID `gorm:"primaryKey;"`
	Name            string    `gorm:"not null"`
	Objective       string    `gorm:"type:TEXT"`
	SuccessCriteria string    `gorm:"type:TEXT"`
	InitialPrompt   string    `gorm:"type:TEXT"`
	MaxTurns        int
}

type GoalList []Goal

func (g Goal) String() string {
	val, _ := json.Marshal(g)
	return string(val)
}

func (g Goal) ToApiResource() api.Goal {
	return api.Goal{
		ID:              g.ID.String(),
		Name:            g.Name,
		Objective:       g.Objective,
		SuccessCriteria: g.SuccessCriteria,
		InitialPrompt:   g.InitialPrompt,
		MaxTurns:        g.MaxTurns,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func (gl GoalList) ToApiResource() []api.Goal {
	out := make([]api.Goal, 0, len(gl))
	for _, g := range gl {
		out = append(out, g.ToApiResource())
	}
	return out
}
