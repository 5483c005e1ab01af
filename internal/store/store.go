package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentbed/testbed/internal/store/model"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Persona() Persona
	Goal() Goal
	Organization() Organization
	InitialMigration(ctx context.Context) error
	Seed() error
	Close() error
}

type DataStore struct {
	db           *gorm.DB
	log          logrus.FieldLogger
	persona      Persona
	goal         Goal
	organization Organization
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		persona:      NewPersonaStore(db),
		goal:         NewGoalStore(db),
		organization: NewOrganizationStore(db),
		log:          logrus.New(),
		db:           db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db, s.log)
}

func (s *DataStore) Persona() Persona {
	return s.persona
}

func (s *DataStore) Goal() Goal {
	return s.goal
}

func (s *DataStore) Organization() Organization {
	return s.organization
}

func (s *DataStore) InitialMigration(ctx context.Context) error {
	if err := s.organization.InitialMigration(ctx); err != nil {
		return err
	}
	if err := s.persona.InitialMigration(ctx); err != nil {
		return err
	}
	return s.goal.InitialMigration(ctx)
}

// Seed creates or refreshes the example persona and goal so a fresh
// deployment can run a simulation without any setup.
func (s *DataStore) Seed() error {
	tx, err := newTransaction(s.db, s.log)
	if err != nil {
		return err
	}

	persona := model.Persona{
		ID:         uuid.UUID{},
		Name:       "Example Persona",
		Background: "A pragmatic operations manager evaluating new tooling for a mid-size company.",
		Tags:       model.MakeTags([]string{"example"}),
	}
	if err := tx.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "background", "tags"}),
	}).Create(&persona).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	goal := model.Goal{
		ID:              uuid.UUID{},
		Name:            "Example Goal",
		Objective:       "Learn what the product does and whether it fits the team's workflow.",
		SuccessCriteria: "The persona gets a clear answer about product capabilities.",
		InitialPrompt:   "Hi! Can you tell me what your product does?",
		MaxTurns:        10,
	}
	if err := tx.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "objective", "success_criteria", "initial_prompt", "max_turns"}),
	}).Create(&goal).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
