package repository

import (
	"context"

	constant "github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/pkg/coseal"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	*baseRepository
}

func (dr DocumentRepository) Create(ctx context.Context, tx *gorm.DB, doc *model.Document) (*model.Document, error) {
	dr.logger.Debugf("Create document, original hash: %s", doc.OriginalHash)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Document{}).Create(doc).Error; err != nil {
		return doc, err
	}

	return doc, nil
}

func (dr DocumentRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Document, error) {
	dr.logger.Debugf("Get document by id: %s", id)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var doc model.Document
	if err := db.WithContext(ctx).Model(&model.Document{}).Where(model.Document{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).First(&doc).Error; err != nil {
		return &doc, err
	}

	return &doc, nil
}

// GetByEitherHash resolves a document whether the digest is the original
// upload hash or the hash of the finalized artifact. Both columns are
// indexed so the two lookups stay cheap.
func (dr DocumentRepository) GetByEitherHash(ctx context.Context, tx *gorm.DB, digest coseal.Digest) (*model.Document, error) {
	dr.logger.Debugf("Get document by hash: %s", digest)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var doc model.Document
	err := db.WithContext(ctx).Model(&model.Document{}).Where(model.Document{
		OriginalHash: string(digest),
	}).First(&doc).Error
	if err == nil {
		return &doc, nil
	}
	if err != gorm.ErrRecordNotFound {
		return &doc, err
	}

	if err := db.WithContext(ctx).Model(&model.Document{}).Where("final_hash = ?", string(digest)).First(&doc).Error; err != nil {
		return &doc, err
	}

	return &doc, nil
}

// AttachFinal records the finalized artifact for a document. Composition is
// at-least-once, re-runs produce the same hash and key so overwriting is safe.
func (dr DocumentRepository) AttachFinal(ctx context.Context, tx *gorm.DB, id string, finalHash coseal.Digest, storageKeyFinal string) error {
	dr.logger.Debugf("Attach final artifact to document id: %s, final hash: %s", id, finalHash)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	fh := string(finalHash)
	return db.WithContext(ctx).Model(&model.Document{}).Where(model.Document{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Updates(map[string]any{
		"final_hash":        &fh,
		"storage_key_final": &storageKeyFinal,
		"status":            constant.DocumentStatusFinalized,
	}).Error
}

func (dr DocumentRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status constant.DocumentStatus) error {
	dr.logger.Debugf("Update document id: %s status to: %d", id, status)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Document{}).Where(model.Document{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Update("status", status).Error
}
