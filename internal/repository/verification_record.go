package repository

import (
	"context"

	constant "github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"gorm.io/gorm"
)

type VerificationRecordRepository struct {
	*baseRepository
}

func (vrr VerificationRecordRepository) Create(ctx context.Context, tx *gorm.DB, rec *model.VerificationRecord) (*model.VerificationRecord, error) {
	vrr.logger.Debugf("Create verification record, result: %s", rec.Result)

	db := vrr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.VerificationRecord{}).Create(rec).Error; err != nil {
		return rec, err
	}

	return rec, nil
}

func (vrr VerificationRecordRepository) GetByDocumentId(ctx context.Context, tx *gorm.DB, documentId string, page, pageSize uint) (*[]model.VerificationRecord, int64, error) {
	vrr.logger.Debugf("Get verification records by document id: %s", documentId)

	db := vrr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var records []model.VerificationRecord
	total := int64(0)

	if err := db.WithContext(ctx).Model(&model.VerificationRecord{}).Where(model.VerificationRecord{
		DocumentID: documentId,
	}).Count(&total).Error; err != nil {
		return &records, total, err
	}

	if err := db.WithContext(ctx).Model(&model.VerificationRecord{}).Where(model.VerificationRecord{
		DocumentID: documentId,
	}).Order("verified_at desc").Offset(int((page - 1) * pageSize)).Limit(int(pageSize)).Find(&records).Error; err != nil {
		return &records, total, err
	}

	return &records, total, nil
}
