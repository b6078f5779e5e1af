package repository

import (
	"context"

	"gorm.io/gorm"

	"maturity-assessment-backend/internal/db"
	"maturity-assessment-backend/internal/model"
)

type QuestionRepository interface {
	// SeedProgram inserts questions when the program has none yet and
	// returns how many rows were written.
	SeedProgram(ctx context.Context, program string, questions []model.Question) (int, error)
	ListByProgram(ctx context.Context, program string) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

func NewQuestionRepository(gdb *gorm.DB) QuestionRepository {
	return &questionRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *questionRepository) SeedProgram(ctx context.Context, program string, questions []model.Question) (int, error) {
	inserted := 0
	err := r.qe.Transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Question{}).Where("program = ?", program).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].Program = program
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		inserted = len(questions)
		return nil
	})
	return inserted, err
}

// ListByProgram returns the program's questions in presentation order.
func (r *questionRepository) ListByProgram(ctx context.Context, program string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Where("program = ?", program).
		Order("sort_order asc, id asc").
		Find(&questions).Error
	return questions, err
}
