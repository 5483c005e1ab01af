package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/store/model"
)

type GoalService struct {
	store store.Store
}

func NewGoalService(datastore store.Store) *GoalService {
	return &GoalService{store: datastore}
}

func (s *GoalService) ListGoals(ctx context.Context) ([]api.Goal, error) {
	goals, err := s.store.Goal().List(ctx, store.NewGoalQueryOptions().WithSortOrder(store.SortByCreatedTime))
	if err != nil {
		return nil, err
	}
	return goals.ToApiResource(), nil
}

func (s *GoalService) GetGoal(ctx context.Context, id uuid.UUID) (api.Goal, error) {
	goal, err := s.store.Goal().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.Goal{}, NewErrGoalNotFound(id)
		}
		return api.Goal{}, err
	}
	return goal.ToApiResource(), nil
}

func (s *GoalService) CreateGoal(ctx context.Context, form api.GoalCreate) (api.Goal, error) {
	created, err := s.store.Goal().Create(ctx, model.Goal{
		ID:              uuid.New(),
		Name:            form.Name,
		Objective:       form.Objective,
		SuccessCriteria: form.SuccessCriteria,
		InitialPrompt:   form.InitialPrompt,
		MaxTurns:        form.MaxTurns,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return api.Goal{}, NewErrDuplicateResource("goal", form.Name)
		}
		return api.Goal{}, err
	}
	return created.ToApiResource(), nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, id uuid.UUID, form api.GoalUpdate) (api.Goal, error) {
	goal := model.Goal{ID: id}
	if form.Name != nil {
		goal.Name = *form.Name
	}
	if form.Objective != nil {
		goal.Objective = *form.Objective
	}
	if form.SuccessCriteria != nil {
		goal.SuccessCriteria = *form.SuccessCriteria
	}
	if form.InitialPrompt != nil {
		goal.InitialPrompt = *form.InitialPrompt
	}
	if form.MaxTurns != nil {
		goal.MaxTurns = *form.MaxTurns
	}

	updated, err := s.store.Goal().Update(ctx, goal)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return api.Goal{}, NewErrGoalNotFound(id)
		}
		return api.Goal{}, err
	}
	return updated.ToApiResource(), nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Goal().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrGoalNotFound(id)
		}
		return err
	}
	return nil
}
