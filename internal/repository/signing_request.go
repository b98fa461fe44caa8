package repository

import (
	"context"
	"time"

	constant "github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SigningRequestRepository struct {
	*baseRepository
}

// Create persists the request together with its slots in one transaction via
// gorm association handling.
func (srr SigningRequestRepository) Create(ctx context.Context, tx *gorm.DB, req *model.SigningRequest) (*model.SigningRequest, error) {
	srr.logger.Debugf("Create signing request for document id: %s, slots: %d", req.DocumentID, len(req.Slots))

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.SigningRequest{}).Create(req).Error; err != nil {
		return req, err
	}

	return req, nil
}

func (srr SigningRequestRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.SigningRequest, error) {
	srr.logger.Debugf("Get signing request by id: %s", id)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var req model.SigningRequest
	if err := db.WithContext(ctx).Model(&model.SigningRequest{}).Where(model.SigningRequest{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Preload("Document").Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Order("signing_order asc")
	}).First(&req).Error; err != nil {
		return &req, err
	}

	return &req, nil
}

// GetByIdForUpdate locks the request row (SELECT ... FOR UPDATE) so that
// concurrent sign and reject attempts on the same request serialize. Must be
// called inside a transaction, the lock is released on commit or rollback.
func (srr SigningRequestRepository) GetByIdForUpdate(ctx context.Context, tx *gorm.DB, id string) (*model.SigningRequest, error) {
	srr.logger.Debugf("Get signing request by id for update: %s", id)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var req model.SigningRequest
	if err := db.WithContext(ctx).Model(&model.SigningRequest{}).Clauses(clause.Locking{Strength: "UPDATE"}).Where(model.SigningRequest{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).First(&req).Error; err != nil {
		return &req, err
	}

	if err := db.WithContext(ctx).Model(&model.SignerSlot{}).Where(model.SignerSlot{
		SigningRequestID: id,
	}).Order("signing_order asc").Find(&req.Slots).Error; err != nil {
		return &req, err
	}

	return &req, nil
}

func (srr SigningRequestRepository) GetActiveByDocumentId(ctx context.Context, tx *gorm.DB, documentId string) (*model.SigningRequest, error) {
	srr.logger.Debugf("Get active signing request by document id: %s", documentId)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	// RequestStatusActive is the enum zero value, so a struct condition would
	// drop it from the query.
	var req model.SigningRequest
	if err := db.WithContext(ctx).Model(&model.SigningRequest{}).
		Where("document_id = ? AND status = ?", documentId, constant.RequestStatusActive).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("signing_order asc")
		}).First(&req).Error; err != nil {
		return &req, err
	}

	return &req, nil
}

// GetLatestByDocumentId returns the most recent request for a document
// regardless of status. Verification uses it to report on documents whose
// request already reached a terminal state.
func (srr SigningRequestRepository) GetLatestByDocumentId(ctx context.Context, tx *gorm.DB, documentId string) (*model.SigningRequest, error) {
	srr.logger.Debugf("Get latest signing request by document id: %s", documentId)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var req model.SigningRequest
	if err := db.WithContext(ctx).Model(&model.SigningRequest{}).Where(model.SigningRequest{
		DocumentID: documentId,
	}).Order("created_at desc").Preload("Document").Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Order("signing_order asc")
	}).First(&req).Error; err != nil {
		return &req, err
	}

	return &req, nil
}

func (srr SigningRequestRepository) UpdateSlot(ctx context.Context, tx *gorm.DB, slotId string, updates map[string]any) error {
	srr.logger.Debugf("Update signer slot id: %s", slotId)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.SignerSlot{}).Where(model.SignerSlot{
		BaseModel: model.BaseModel{
			ID: slotId,
		},
	}).Updates(updates).Error
}

// UpdateProgress advances the signed counter and the next expected order
// after a successful slot signature.
func (srr SigningRequestRepository) UpdateProgress(ctx context.Context, tx *gorm.DB, id string, signedCount, nextOrder int) error {
	srr.logger.Debugf("Update signing request id: %s progress, signed: %d, next order: %d", id, signedCount, nextOrder)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.SigningRequest{}).Where(model.SigningRequest{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Updates(map[string]any{
		"signed_count": signedCount,
		"next_order":   nextOrder,
	}).Error
}

func (srr SigningRequestRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	srr.logger.Debugf("Mark signing request id: %s completed", id)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.SigningRequest{}).Where(model.SigningRequest{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Updates(map[string]any{
		"status":       constant.RequestStatusCompleted,
		"completed_at": &at,
	}).Error
}

func (srr SigningRequestRepository) MarkRejected(ctx context.Context, tx *gorm.DB, id string, reason string) error {
	srr.logger.Debugf("Mark signing request id: %s rejected", id)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.SigningRequest{}).Where(model.SigningRequest{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Updates(map[string]any{
		"status":        constant.RequestStatusRejected,
		"reject_reason": reason,
	}).Error
}

func (srr SigningRequestRepository) MarkExpired(ctx context.Context, tx *gorm.DB, id string) error {
	srr.logger.Debugf("Mark signing request id: %s expired", id)

	db := srr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.SigningRequest{}).Where(model.SigningRequest{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Update("status", constant.RequestStatusExpired).Error
}
