package verification

import (
	"time"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/pkg/coseal"
)

type SlotReport struct {
	Order          int                 `json:"order"`
	Email          string              `json:"email"`
	Status         constant.SlotStatus `json:"status"`
	SignedAt       *time.Time          `json:"signedAt,omitempty"`
	SignatureValid bool                `json:"signatureValid"`
}

type Report struct {
	Result       constant.VerificationResult `json:"-"`
	ResultLabel  string                      `json:"result"`
	Detail       string                      `json:"detail,omitempty"`
	DocumentID   string                      `json:"documentId,omitempty"`
	DocumentName string                      `json:"documentName,omitempty"`
	OriginalHash string                      `json:"originalHash,omitempty"`
	FinalHash    *string                     `json:"finalHash,omitempty"`
	RequestID    string                      `json:"requestId,omitempty"`
	SignedCount  int                         `json:"signedCount"`
	TotalSigners int                         `json:"totalSigners"`
	Slots        []SlotReport                `json:"slots,omitempty"`
	VerifiedAt   time.Time                   `json:"verifiedAt"`
}

func notFoundReport(detail string) Report {
	return Report{
		Result:      constant.VerificationResultNotFound,
		ResultLabel: constant.VerificationResultNotFound.String(),
		Detail:      detail,
		VerifiedAt:  time.Now(),
	}
}

// BuildReport checks every collected signature against the document's
// original hash and folds the request state into a single verdict. Signature
// checks fail closed: a slot with a malformed signature or key is reported
// invalid, never skipped.
func BuildReport(doc *model.Document, req *model.SigningRequest) Report {
	report := Report{
		DocumentID:   doc.ID,
		DocumentName: doc.FileName,
		OriginalHash: doc.OriginalHash,
		FinalHash:    doc.FinalHash,
		VerifiedAt:   time.Now(),
	}

	if req == nil {
		report.Result = constant.VerificationResultNotFound
		report.Detail = "no signing request exists for this document"
		report.ResultLabel = report.Result.String()
		return report
	}

	report.RequestID = req.ID
	report.TotalSigners = len(req.Slots)

	allSignedValid := true
	anyInvalid := false
	for _, slot := range req.Slots {
		sr := SlotReport{
			Order:    slot.Order,
			Email:    slot.Email,
			Status:   slot.Status,
			SignedAt: slot.SignedAt,
		}

		if slot.Status == constant.SlotStatusSigned {
			// Every signature is over the original hash, the stamped
			// artifact's hash is only a lookup key.
			sr.SignatureValid = coseal.Verify(coseal.Digest(doc.OriginalHash), slot.Signature, slot.PublicKey)
			if sr.SignatureValid {
				report.SignedCount++
			} else {
				anyInvalid = true
			}
		} else {
			allSignedValid = false
		}

		report.Slots = append(report.Slots, sr)
		if slot.Status == constant.SlotStatusSigned && !sr.SignatureValid {
			allSignedValid = false
		}
	}

	switch {
	case anyInvalid:
		report.Result = constant.VerificationResultInvalid
		report.Detail = "one or more signatures do not verify against the document hash"
	case req.Status == constant.RequestStatusRejected:
		report.Result = constant.VerificationResultInvalid
		report.Detail = "the signing request was rejected"
	case req.Status == constant.RequestStatusExpired:
		report.Result = constant.VerificationResultInvalid
		report.Detail = "the signing request expired before completion"
	case req.Status == constant.RequestStatusCompleted && allSignedValid:
		report.Result = constant.VerificationResultValid
	default:
		report.Result = constant.VerificationResultInProgress
		report.Detail = "signing is still in progress"
	}

	report.ResultLabel = report.Result.String()
	return report
}
