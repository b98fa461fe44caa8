package model

import (
	"time"

	"github.com/cosealhq/coseal/internal/constant"
)

type SigningRequest struct {
	BaseModel
	DocumentID string `gorm:"type:text;not null;index" json:"documentId"`
	// Opaque identity of whoever opened the request.
	Initiator string `gorm:"type:text;not null" json:"initiator"`

	RequiredCount int `gorm:"type:int;not null" json:"requiredCount"`
	SignedCount   int `gorm:"type:int;not null;default:0" json:"signedCount"`
	// Order expected to sign next, only meaningful while StrictOrder is set.
	NextOrder   int  `gorm:"type:int;not null;default:0" json:"nextOrder"`
	StrictOrder bool `gorm:"type:boolean;default:true" json:"strictOrder"`

	Status       constant.RequestStatus `gorm:"type:integer;default:0;index" json:"status"`
	RejectReason string                 `gorm:"type:text" json:"rejectReason,omitempty"`
	CompletedAt  *time.Time             `gorm:"type:timestamptz" json:"completedAt,omitempty"`
	ExpiresAt    *time.Time             `gorm:"type:timestamptz" json:"expiresAt,omitempty"`

	Document Document     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Slots    []SignerSlot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"slots,omitempty"`
}

func (sr SigningRequest) TableName() string {
	return "signing_requests"
}
