package db

import (
	"context"

	"gorm.io/gorm"

	"arc-backend/internal/db/query"
)

// QueryExecutor runs filter predicates against gorm models.
type QueryExecutor struct {
	DB *gorm.DB
}

// NewQueryExecutor creates a new instance of QueryExecutor.
func NewQueryExecutor(db *gorm.DB) *QueryExecutor {
	return &QueryExecutor{DB: db}
}

// Find loads every row of dest's model matching the predicate, ordered by order
// when it is non-empty.
func (qe *QueryExecutor) Find(ctx context.Context, dest any, p *query.FilterPredicate, order string) error {
	tx, err := qe.where(ctx, p)
	if err != nil {
		return err
	}
	if order != "" {
		tx = tx.Order(order)
	}
	return tx.Find(dest).Error
}

// Count returns the number of rows of model matching the predicate.
func (qe *QueryExecutor) Count(ctx context.Context, model any, p *query.FilterPredicate) (int64, error) {
	tx, err := qe.where(ctx, p)
	if err != nil {
		return 0, err
	}
	var n int64
	err = tx.Model(model).Count(&n).Error
	return n, err
}

// Transaction executes a set of operations within a database transaction.
func (qe *QueryExecutor) Transaction(ctx context.Context, txFunc func(tx *gorm.DB) error) error {
	return qe.DB.WithContext(ctx).Transaction(txFunc)
}

func (qe *QueryExecutor) where(ctx context.Context, p *query.FilterPredicate) (*gorm.DB, error) {
	tx := qe.DB.WithContext(ctx)
	if p == nil || p.Empty() {
		return tx, nil
	}
	clause, args, err := p.Build()
	if err != nil {
		return nil, err
	}
	return tx.Where(clause, args...), nil
}
