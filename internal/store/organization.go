package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentbed/testbed/internal/store/model"
)

type Organization interface {
	List(ctx context.Context) (model.OrganizationList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	Create(ctx context.Context, org model.Organization) (*model.Organization, error)
	Update(ctx context.Context, org model.Organization) (*model.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InitialMigration(ctx context.Context) error
}

type OrganizationStore struct {
	db *gorm.DB
}

func NewOrganizationStore(db *gorm.DB) Organization {
	return &OrganizationStore{db: db}
}

func (o *OrganizationStore) InitialMigration(ctx context.Context) error {
	return o.getDB(ctx).AutoMigrate(&model.Organization{})
}

func (o *OrganizationStore) List(ctx context.Context) (model.OrganizationList, error) {
	var orgs model.OrganizationList
	if err := o.getDB(ctx).Model(&orgs).Order("created_at").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (o *OrganizationStore) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	org := &model.Organization{ID: id}

	if err := o.getDB(ctx).WithContext(ctx).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return org, nil
}

func (o *OrganizationStore) Create(ctx context.Context, org model.Organization) (*model.Organization, error) {
	if err := o.getDB(ctx).WithContext(ctx).Create(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &org, nil
}

func (o *OrganizationStore) Update(ctx context.Context, org model.Organization) (*model.Organization, error) {
	if err := o.getDB(ctx).WithContext(ctx).First(&model.Organization{ID: org.ID}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if tx := o.getDB(ctx).WithContext(ctx).Clauses(clause.Returning{}).Updates(&org); tx.Error != nil {
		return nil, tx.Error
	}

	return &org, nil
}

func (o *OrganizationStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := o.getDB(ctx).WithContext(ctx).Delete(&model.Organization{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (o *OrganizationStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return o.db
}
