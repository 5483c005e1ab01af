package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentbed/testbed/internal/store/model"
)

type Goal interface {
	List(ctx context.Context, opts *GoalQueryOptions) (model.GoalList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Goal, error)
	Create(ctx context.Context, goal model.Goal) (*model.Goal, error)
	Update(ctx context.Context, goal model.Goal) (*model.Goal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InitialMigration(ctx context.Context) error
}

type GoalStore struct {
	db *gorm.DB
}

func NewGoalStore(db *gorm.DB) Goal {
	return &GoalStore{db: db}
}

func (g *GoalStore) InitialMigration(ctx context.Context) error {
	return g.getDB(ctx).AutoMigrate(&model.Goal{})
}

func (g *GoalStore) List(ctx context.Context, opts *GoalQueryOptions) (model.GoalList, error) {
	var goals model.GoalList
	tx := g.getDB(ctx)

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Model(&goals).Find(&goals).Error; err != nil {
		return nil, err
	}

	return goals, nil
}

func (g *GoalStore) Get(ctx context.Context, id uuid.UUID) (*model.Goal, error) {
	goal := &model.Goal{ID: id}

	if err := g.getDB(ctx).WithContext(ctx).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return goal, nil
}

func (g *GoalStore) Create(ctx context.Context, goal model.Goal) (*model.Goal, error) {
	if err := g.getDB(ctx).WithContext(ctx).Create(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &goal, nil
}

func (g *GoalStore) Update(ctx context.Context, goal model.Goal) (*model.Goal, error) {
	if err := g.getDB(ctx).WithContext(ctx).First(&model.Goal{ID: goal.ID}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if tx := g.getDB(ctx).WithContext(ctx).Clauses(clause.Returning{}).Updates(&goal); tx.Error != nil {
		return nil, tx.Error
	}

	return &goal, nil
}

func (g *GoalStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := g.getDB(ctx).WithContext(ctx).Delete(&model.Goal{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *GoalStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return g.db
}
