package repository

import (
	"context"

	"gorm.io/gorm"

	"maturity-assessment-backend/internal/db"
	"maturity-assessment-backend/internal/model"
)

type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, org *model.Organization) error
	GetOrganizationByID(ctx context.Context, id uint) (*model.Organization, error)
	GetOrganizationByAccessCode(ctx context.Context, code string) (*model.Organization, error)
	AccessCodeExists(ctx context.Context, code string) (bool, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	DeleteOrganization(ctx context.Context, id uint) error
}

type organizationRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

func NewOrganizationRepository(gdb *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *organizationRepository) CreateOrganization(ctx context.Context, org *model.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *organizationRepository) GetOrganizationByID(ctx context.Context, id uint) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

func (r *organizationRepository) GetOrganizationByAccessCode(ctx context.Context, code string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Where("access_code = ?", code).First(&org).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

func (r *organizationRepository) AccessCodeExists(ctx context.Context, code string) (bool, error) {
	return r.qe.Exists(ctx, &model.Organization{}, map[string]any{"access_code": code})
}

// ListOrganizations returns every organization with its assessments, newest
// assessment first.
func (r *organizationRepository) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	err := r.db.WithContext(ctx).
		Preload("Assessments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at desc")
		}).
		Order("created_at desc").
		Find(&orgs).Error
	return orgs, err
}

func (r *organizationRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&model.Organization{}).
		Where("id = ?", id).
		Update("hashed_password", hashedPassword)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOrganization removes the organization and its assessments in one
// transaction.
func (r *organizationRepository) DeleteOrganization(ctx context.Context, id uint) error {
	return r.qe.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&model.Assessment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Organization{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
