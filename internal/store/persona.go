package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentbed/testbed/internal/store/model"
)

type Persona interface {
	List(ctx context.Context, filter *PersonaQueryFilter, opts *PersonaQueryOptions) (model.PersonaList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Persona, error)
	Create(ctx context.Context, persona model.Persona) (*model.Persona, error)
	Update(ctx context.Context, persona model.Persona) (*model.Persona, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InitialMigration(ctx context.Context) error
}

type PersonaStore struct {
	db *gorm.DB
}

func NewPersonaStore(db *gorm.DB) Persona {
	return &PersonaStore{db: db}
}

func (p *PersonaStore) InitialMigration(ctx context.Context) error {
	return p.getDB(ctx).AutoMigrate(&model.Persona{})
}

func (p *PersonaStore) List(ctx context.Context, filter *PersonaQueryFilter, opts *PersonaQueryOptions) (model.PersonaList, error) {
	var personas model.PersonaList
	tx := p.getDB(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Model(&personas).Find(&personas).Error; err != nil {
		return nil, err
	}

	return personas, nil
}

func (p *PersonaStore) Get(ctx context.Context, id uuid.UUID) (*model.Persona, error) {
	persona := &model.Persona{ID: id}

	if err := p.getDB(ctx).WithContext(ctx).First(&persona).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return persona, nil
}

func (p *PersonaStore) Create(ctx context.Context, persona model.Persona) (*model.Persona, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&persona).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &persona, nil
}

func (p *PersonaStore) Update(ctx context.Context, persona model.Persona) (*model.Persona, error) {
	if err := p.getDB(ctx).WithContext(ctx).First(&model.Persona{ID: persona.ID}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if tx := p.getDB(ctx).WithContext(ctx).Clauses(clause.Returning{}).Updates(&persona); tx.Error != nil {
		return nil, tx.Error
	}

	return &persona, nil
}

func (p *PersonaStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := p.getDB(ctx).WithContext(ctx).Delete(&model.Persona{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *PersonaStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return p.db
}
