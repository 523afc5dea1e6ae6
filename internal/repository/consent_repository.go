package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"arc-backend/internal/db"
	"arc-backend/internal/db/query"
	"arc-backend/internal/model"
)

type ConsentRepository interface {
	CreateConsent(ctx context.Context, record *model.ConsentRecord) error
	GetConsentsByUser(ctx context.Context, userID string) ([]model.ConsentRecord, error)
	// GetActiveConsent returns the newest non-withdrawn record of a type.
	GetActiveConsent(ctx context.Context, userID, consentType string) (*model.ConsentRecord, error)
	// WithdrawConsent stamps every active record of the type; an empty type
	// withdraws all of them.
	WithdrawConsent(ctx context.Context, userID, consentType string, at time.Time) (int64, error)
}

type consentRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

func NewConsentRepository(gdb *gorm.DB) ConsentRepository {
	return &consentRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *consentRepository) CreateConsent(ctx context.Context, record *model.ConsentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *consentRepository) GetConsentsByUser(ctx context.Context, userID string) ([]model.ConsentRecord, error) {
	var records []model.ConsentRecord
	p := query.NewFilterPredicate().Equal("user_id", userID)
	err := r.qe.Find(ctx, &records, p, "accepted_at DESC")
	return records, err
}

func (r *consentRepository) GetActiveConsent(ctx context.Context, userID, consentType string) (*model.ConsentRecord, error) {
	var record model.ConsentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND consent_type = ? AND withdrawn_at IS NULL", userID, consentType).
		Order("accepted_at DESC").
		First(&record).Error
	return &record, notFound(err)
}

func (r *consentRepository) WithdrawConsent(ctx context.Context, userID, consentType string, at time.Time) (int64, error) {
	p := query.NewFilterPredicate().Equal("user_id", userID).And().IsNull("withdrawn_at")
	if consentType != "" {
		p.And().Equal("consent_type", consentType)
	}
	clause, args, err := p.Build()
	if err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Model(&model.ConsentRecord{}).
		Where(clause, args...).
		Update("withdrawn_at", at)
	return res.RowsAffected, res.Error
}
