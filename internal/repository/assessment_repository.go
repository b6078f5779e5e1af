package repository

import (
	"context"

	"gorm.io/gorm"

	"maturity-assessment-backend/internal/db"
	"maturity-assessment-backend/internal/model"
)

// Stats summarizes every organization and assessment.
type Stats struct {
	TotalOrganizations    int64    `json:"total_organizations"`
	TotalAssessments      int64    `json:"total_assessments"`
	CompletedAssessments  int64    `json:"completed_assessments"`
	InProgressAssessments int64    `json:"in_progress_assessments"`
	AverageMaturity       *float64 `json:"average_maturity"`
}

type AssessmentRepository interface {
	CreateAssessment(ctx context.Context, assessment *model.Assessment) error
	GetAssessmentByID(ctx context.Context, id uint) (*model.Assessment, error)
	GetOrganizationAssessment(ctx context.Context, orgID, id uint) (*model.Assessment, error)
	ListByOrganization(ctx context.Context, orgID uint) ([]model.Assessment, error)
	ListCompleted(ctx context.Context, orgID uint, program string) ([]model.Assessment, error)
	SaveAssessment(ctx context.Context, assessment *model.Assessment) error
	DeleteAssessment(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*Stats, error)
}

type assessmentRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

func NewAssessmentRepository(gdb *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *assessmentRepository) CreateAssessment(ctx context.Context, assessment *model.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) GetAssessmentByID(ctx context.Context, id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	if err := r.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}

func (r *assessmentRepository) GetOrganizationAssessment(ctx context.Context, orgID, id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&assessment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}

// ListByOrganization returns the organization's assessments, newest first.
func (r *assessmentRepository) ListByOrganization(ctx context.Context, orgID uint) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at desc, id desc").
		Find(&assessments).Error
	return assessments, err
}

// ListCompleted returns completed assessments of a program, oldest first.
func (r *assessmentRepository) ListCompleted(ctx context.Context, orgID uint, program string) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND program = ? AND status = ?", orgID, program, model.StatusCompleted).
		Order("completed_at asc, id asc").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) SaveAssessment(ctx context.Context, assessment *model.Assessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *assessmentRepository) DeleteAssessment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Assessment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assessmentRepository) Stats(ctx context.Context) (*Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.TotalOrganizations, err = r.qe.Count(ctx, &model.Organization{}, nil); err != nil {
		return nil, err
	}
	if s.TotalAssessments, err = r.qe.Count(ctx, &model.Assessment{}, nil); err != nil {
		return nil, err
	}
	completed := map[string]any{"status": model.StatusCompleted}
	if s.CompletedAssessments, err = r.qe.Count(ctx, &model.Assessment{}, completed); err != nil {
		return nil, err
	}
	if s.InProgressAssessments, err = r.qe.Count(ctx, &model.Assessment{}, map[string]any{"status": model.StatusInProgress}); err != nil {
		return nil, err
	}
	if s.AverageMaturity, err = r.qe.Average(ctx, &model.Assessment{}, "maturity_level", completed); err != nil {
		return nil, err
	}
	return &s, nil
}
