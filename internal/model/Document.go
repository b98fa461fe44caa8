package model

import (
	"github.com/cosealhq/coseal/internal/constant"
)

type Document struct {
	BaseModel
	FileName string `gorm:"type:text;not null" json:"fileName" form:"fileName" binding:"required"`
	// Content hash taken at upload time, before any stamp is composed.
	// This is the value every signature is produced over, immutable.
	OriginalHash string `gorm:"type:text;not null;uniqueIndex" json:"originalHash"`
	// Hash of the composed final artifact. Set exactly once, only after
	// every slot reached Signed. Indexed because verifiers usually upload
	// the final artifact, not the original.
	FinalHash *string `gorm:"type:text;index" json:"finalHash,omitempty"`
	HashAlgo  string  `gorm:"type:text;not null" json:"hashAlgo"`

	BucketName string `gorm:"type:text;not null" json:"-"`
	// Object keys in the blob store. The original is stored under its
	// hash and never mutated, the final artifact is a separate object.
	StorageKey      string  `gorm:"type:text;not null" json:"-"`
	StorageKeyFinal *string `gorm:"type:text" json:"-"`
	Size            int64   `gorm:"type:bigint;not null" json:"size"`

	Status constant.DocumentStatus `gorm:"type:integer;default:0" json:"status"`
}

func (d Document) TableName() string {
	return "documents"
}
