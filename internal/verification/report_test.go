package verification

import (
	"testing"
	"time"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/pkg/coseal"
)

func newSignedRequest(t *testing.T, doc *model.Document, signerCount int) *model.SigningRequest {
	t.Helper()

	req := &model.SigningRequest{
		BaseModel:     model.BaseModel{ID: "req-1"},
		DocumentID:    doc.ID,
		RequiredCount: signerCount,
		Status:        constant.RequestStatusCompleted,
	}

	now := time.Now()
	for i := range signerCount {
		pub, priv, err := coseal.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair() error: %v", err)
		}

		sig, err := coseal.Sign(coseal.Digest(doc.OriginalHash), priv)
		if err != nil {
			t.Fatalf("Sign() error: %v", err)
		}

		req.Slots = append(req.Slots, model.SignerSlot{
			SignerID:  string(rune('A' + i)),
			Email:     string(rune('a'+i)) + "@example.com",
			Order:     i,
			Status:    constant.SlotStatusSigned,
			Signature: sig,
			PublicKey: pub,
			SignedAt:  &now,
		})
	}

	return req
}

func newTestDocument() *model.Document {
	return &model.Document{
		BaseModel:    model.BaseModel{ID: "doc-1"},
		FileName:     "lease.pdf",
		OriginalHash: string(coseal.HashBytes([]byte("original document bytes"))),
		HashAlgo:     coseal.HashAlgo,
	}
}

func TestBuildReportValid(t *testing.T) {
	doc := newTestDocument()
	req := newSignedRequest(t, doc, 4)

	report := BuildReport(doc, req)

	if report.Result != constant.VerificationResultValid {
		t.Errorf("Expected valid, got %s (%s)", report.ResultLabel, report.Detail)
	}
	if report.SignedCount != 4 {
		t.Errorf("Expected 4 verified signatures, got %d", report.SignedCount)
	}
	for _, slot := range report.Slots {
		if !slot.SignatureValid {
			t.Errorf("Expected slot %d signature to verify", slot.Order)
		}
	}
}

// Signatures are over the original hash, so the report must come out the
// same whether the verifier found the document via its original hash or the
// stamped artifact's hash. The lookup key never enters signature checks.
func TestBuildReportHashSymmetry(t *testing.T) {
	doc := newTestDocument()
	finalHash := string(coseal.HashBytes([]byte("stamped artifact bytes")))
	doc.FinalHash = &finalHash
	req := newSignedRequest(t, doc, 2)

	report := BuildReport(doc, req)

	if report.Result != constant.VerificationResultValid {
		t.Errorf("Expected valid, got %s", report.ResultLabel)
	}
	if report.FinalHash == nil || *report.FinalHash != finalHash {
		t.Error("Expected final hash to be carried into the report")
	}
}

func TestBuildReportTamperedSignature(t *testing.T) {
	doc := newTestDocument()
	req := newSignedRequest(t, doc, 3)

	// A signature produced over a different hash must flip the verdict.
	otherDigest := coseal.HashBytes([]byte("some other document"))
	pub, priv, err := coseal.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	sig, err := coseal.Sign(otherDigest, priv)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	req.Slots[1].Signature = sig
	req.Slots[1].PublicKey = pub

	report := BuildReport(doc, req)

	if report.Result != constant.VerificationResultInvalid {
		t.Errorf("Expected invalid, got %s", report.ResultLabel)
	}
	if report.Slots[1].SignatureValid {
		t.Error("Expected slot 1 signature to fail verification")
	}
	if !report.Slots[0].SignatureValid || !report.Slots[2].SignatureValid {
		t.Error("Expected untouched signatures to still verify")
	}
}

func TestBuildReportInProgress(t *testing.T) {
	doc := newTestDocument()
	req := newSignedRequest(t, doc, 3)
	req.Status = constant.RequestStatusActive
	req.Slots[2].Status = constant.SlotStatusPending
	req.Slots[2].Signature = ""
	req.Slots[2].PublicKey = ""

	report := BuildReport(doc, req)

	if report.Result != constant.VerificationResultInProgress {
		t.Errorf("Expected in_progress, got %s", report.ResultLabel)
	}
	if report.SignedCount != 2 {
		t.Errorf("Expected 2 verified signatures, got %d", report.SignedCount)
	}
}

func TestBuildReportTerminalStates(t *testing.T) {
	tests := []struct {
		name   string
		status constant.RequestStatus
	}{
		{"rejected", constant.RequestStatusRejected},
		{"expired", constant.RequestStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newTestDocument()
			req := newSignedRequest(t, doc, 2)
			req.Status = tt.status
			req.Slots[1].Status = constant.SlotStatusPending
			req.Slots[1].Signature = ""

			report := BuildReport(doc, req)

			if report.Result != constant.VerificationResultInvalid {
				t.Errorf("Expected invalid for %s request, got %s", tt.name, report.ResultLabel)
			}
		})
	}
}

func TestBuildReportNoRequest(t *testing.T) {
	report := BuildReport(newTestDocument(), nil)

	if report.Result != constant.VerificationResultNotFound {
		t.Errorf("Expected not_found, got %s", report.ResultLabel)
	}
}
