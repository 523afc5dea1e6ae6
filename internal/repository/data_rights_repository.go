package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"arc-backend/internal/db"
	"arc-backend/internal/model"
)

// ErasureResult counts what an erasure removed or withdrew.
type ErasureResult struct {
	Submissions int64 `json:"submissions"`
	Consents    int64 `json:"consents"`
}

type DataRightsRepository interface {
	CreateDeletionRequest(ctx context.Context, req *model.DeletionRequest) error
	GetDeletionRequest(ctx context.Context, id string) (*model.DeletionRequest, error)
	// Erase deletes the user's submissions, withdraws their consents and
	// completes the request in one transaction.
	Erase(ctx context.Context, req *model.DeletionRequest, at time.Time) (ErasureResult, error)
}

type dataRightsRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

func NewDataRightsRepository(gdb *gorm.DB) DataRightsRepository {
	return &dataRightsRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *dataRightsRepository) CreateDeletionRequest(ctx context.Context, req *model.DeletionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *dataRightsRepository) GetDeletionRequest(ctx context.Context, id string) (*model.DeletionRequest, error) {
	var req model.DeletionRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	return &req, notFound(err)
}

func (r *dataRightsRepository) Erase(ctx context.Context, req *model.DeletionRequest, at time.Time) (ErasureResult, error) {
	var res ErasureResult
	err := r.qe.Transaction(ctx, func(tx *gorm.DB) error {
		del := tx.Where("user_id = ?", req.UserID).Delete(&model.QuestionnaireSubmission{})
		if del.Error != nil {
			return del.Error
		}
		res.Submissions = del.RowsAffected

		upd := tx.Model(&model.ConsentRecord{}).
			Where("user_id = ? AND withdrawn_at IS NULL", req.UserID).
			Update("withdrawn_at", at)
		if upd.Error != nil {
			return upd.Error
		}
		res.Consents = upd.RowsAffected

		req.Status = model.DeletionCompleted
		req.CompletedAt = &at
		return tx.Model(req).Updates(map[string]any{
			"status":       req.Status,
			"completed_at": at,
		}).Error
	})
	return res, err
}
