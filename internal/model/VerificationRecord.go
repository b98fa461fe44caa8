package model

import (
	"time"

	"github.com/cosealhq/coseal/internal/constant"
)

// VerificationRecord is append-only. Rows are created on every verify
// call and never updated.
type VerificationRecord struct {
	BaseModel
	DocumentID       string                      `gorm:"type:text;index" json:"documentId,omitempty"`
	SigningRequestID string                      `gorm:"type:text;index" json:"signingRequestId,omitempty"`
	Payload          string                      `gorm:"type:text;not null" json:"payload"`
	Result           constant.VerificationResult `gorm:"type:integer;not null" json:"result"`
	Detail           string                      `gorm:"type:text" json:"detail,omitempty"`
	VerifiedAt       time.Time                   `gorm:"type:timestamptz;not null" json:"verifiedAt"`
}

func (vr VerificationRecord) TableName() string {
	return "verification_records"
}
