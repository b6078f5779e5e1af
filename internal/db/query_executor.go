package db

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// QueryExecutor runs the small aggregate queries shared by repositories.
type QueryExecutor struct {
	DB *gorm.DB
}

// NewQueryExecutor creates a new instance of QueryExecutor.
func NewQueryExecutor(db *gorm.DB) *QueryExecutor {
	return &QueryExecutor{DB: db}
}

// Count returns the number of rows of model that match conditions.
func (qe *QueryExecutor) Count(ctx context.Context, model any, conditions map[string]any) (int64, error) {
	var count int64
	q := qe.DB.WithContext(ctx).Model(model)
	if len(conditions) > 0 {
		q = q.Where(conditions)
	}
	err := q.Count(&count).Error
	return count, err
}

// Exists checks if a row of model matching conditions exists.
func (qe *QueryExecutor) Exists(ctx context.Context, model any, conditions map[string]any) (bool, error) {
	n, err := qe.Count(ctx, model, conditions)
	return n > 0, err
}

// Average returns the mean of column over the matching rows, or nil when no
// row has a value.
func (qe *QueryExecutor) Average(ctx context.Context, model any, column string, conditions map[string]any) (*float64, error) {
	q := qe.DB.WithContext(ctx).Model(model).Select("AVG(" + qe.DB.Statement.Quote(column) + ")")
	if len(conditions) > 0 {
		q = q.Where(conditions)
	}
	var avg sql.NullFloat64
	if err := q.Row().Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Transaction executes a set of operations within a database transaction.
func (qe *QueryExecutor) Transaction(ctx context.Context, txFunc func(tx *gorm.DB) error) error {
	return qe.DB.WithContext(ctx).Transaction(txFunc)
}
