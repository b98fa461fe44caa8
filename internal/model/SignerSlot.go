package model

import (
	"time"

	"github.com/cosealhq/coseal/internal/constant"
)

type SignerSlot struct {
	BaseModel
	SigningRequestID string `gorm:"type:text;not null;index;uniqueIndex:idx_slot_request_order" json:"-"`
	// Opaque identity supplied by the external identity provider, never
	// parsed by the core.
	SignerID string `gorm:"type:text;not null;index" json:"signerId"`
	Email    string `gorm:"type:citext;not null" json:"email"`
	// 0-based seat in the signing order, unique per request.
	Order int `gorm:"column:signing_order;type:int;not null;uniqueIndex:idx_slot_request_order" json:"order"`

	Status constant.SlotStatus `gorm:"type:integer;default:0" json:"status"`
	// Base64 Ed25519 signature over the document's original hash.
	Signature string     `gorm:"type:text" json:"signature,omitempty"`
	PublicKey string     `gorm:"type:text" json:"publicKey,omitempty"`
	SignedAt  *time.Time `gorm:"type:timestamptz" json:"signedAt,omitempty"`

	// Optional hand-drawn signature appearance stored in the blob store.
	SignatureFileKey string `gorm:"type:text" json:"-"`
}

func (ss SignerSlot) TableName() string {
	return "signer_slots"
}
