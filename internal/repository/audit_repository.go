package repository

import (
	"context"

	"gorm.io/gorm"

	"arc-backend/internal/model"
)

type AuditRepository interface {
	CreateAuditEvent(ctx context.Context, e *model.AuditEvent) error
	GetAuditEventsByUser(ctx context.Context, userID string) ([]model.AuditEvent, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateAuditEvent(ctx context.Context, e *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepository) GetAuditEventsByUser(ctx context.Context, userID string) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&events).Error
	return events, err
}
