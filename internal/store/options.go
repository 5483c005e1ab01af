package store

import (
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByID
	SortByUpdatedTime
	SortByCreatedTime
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type PersonaQueryFilter BaseQuerier

func NewPersonaQueryFilter() *PersonaQueryFilter {
	return &PersonaQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *PersonaQueryFilter) ByOrganizationID(orgID string) *PersonaQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("organization_id = ?", orgID)
	})
	return qf
}

func (qf *PersonaQueryFilter) ByName(name string) *PersonaQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name = ?", name)
	})
	return qf
}

type PersonaQueryOptions BaseQuerier

func NewPersonaQueryOptions() *PersonaQueryOptions {
	return &PersonaQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *PersonaQueryOptions) WithSortOrder(sort SortOrder) *PersonaQueryOptions {
	o.QueryFn = append(o.QueryFn, sortFn(sort))
	return o
}

type GoalQueryOptions BaseQuerier

func NewGoalQueryOptions() *GoalQueryOptions {
	return &GoalQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *GoalQueryOptions) WithSortOrder(sort SortOrder) *GoalQueryOptions {
	o.QueryFn = append(o.QueryFn, sortFn(sort))
	return o
}

func sortFn(sort SortOrder) func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByID:
			return tx.Order("id")
		case SortByUpdatedTime:
			return tx.Order("updated_at")
		case SortByCreatedTime:
			return tx.Order("created_at")
		default:
			return tx
		}
	}
}
