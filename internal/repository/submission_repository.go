package repository

import (
	"context"

	"gorm.io/gorm"

	"arc-backend/internal/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s *model.QuestionnaireSubmission) error
	GetLatestSubmission(ctx context.Context, userID string) (*model.QuestionnaireSubmission, error)
	GetSubmissionsByUser(ctx context.Context, userID string) ([]model.QuestionnaireSubmission, error)
	CountSubmissions(ctx context.Context, userID string) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) CreateSubmission(ctx context.Context, s *model.QuestionnaireSubmission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *submissionRepository) GetLatestSubmission(ctx context.Context, userID string) (*model.QuestionnaireSubmission, error) {
	var s model.QuestionnaireSubmission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").First(&s).Error
	return &s, notFound(err)
}

func (r *submissionRepository) GetSubmissionsByUser(ctx context.Context, userID string) ([]model.QuestionnaireSubmission, error) {
	var list []model.QuestionnaireSubmission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&list).Error
	return list, err
}

func (r *submissionRepository) CountSubmissions(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.QuestionnaireSubmission{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
