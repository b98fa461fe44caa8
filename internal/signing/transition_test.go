package signing

import (
	"errors"
	"testing"
	"time"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
)

func newTestRequest(signerCount int, strictOrder bool) *model.SigningRequest {
	req := &model.SigningRequest{
		BaseModel:     model.BaseModel{ID: "req-1"},
		DocumentID:    "doc-1",
		Initiator:     "initiator-1",
		RequiredCount: signerCount,
		NextOrder:     0,
		StrictOrder:   strictOrder,
		Status:        constant.RequestStatusActive,
	}
	for i := range signerCount {
		req.Slots = append(req.Slots, model.SignerSlot{
			BaseModel: model.BaseModel{ID: string(rune('a' + i))},
			SignerID:  string(rune('A' + i)),
			Email:     string(rune('a'+i)) + "@example.com",
			Order:     i,
			Status:    constant.SlotStatusPending,
		})
	}
	return req
}

// applySign mutates the request the way the workflow persists a decision.
func applySign(req *model.SigningRequest, d SignDecision) {
	if d.AlreadySigned {
		return
	}
	req.Slots[d.SlotIndex].Status = constant.SlotStatusSigned
	req.SignedCount = d.SignedCount
	req.NextOrder = d.NextOrder
	if d.Completed {
		req.Status = constant.RequestStatusCompleted
	}
}

func TestDecideSignStrictOrder(t *testing.T) {
	req := newTestRequest(3, true)

	// Out of turn.
	if _, err := DecideSign(req, "B"); !errors.Is(err, ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict for out of turn signer, got %v", err)
	}

	// Unknown signer.
	if _, err := DecideSign(req, "Z"); !errors.Is(err, ErrUnauthorizedSigner) {
		t.Errorf("Expected ErrUnauthorizedSigner, got %v", err)
	}

	// Sign in order.
	for i, signerId := range []string{"A", "B", "C"} {
		d, err := DecideSign(req, signerId)
		if err != nil {
			t.Fatalf("DecideSign(%s) error: %v", signerId, err)
		}
		if d.SignedCount != i+1 {
			t.Errorf("Expected signed count %d, got %d", i+1, d.SignedCount)
		}
		wantCompleted := i == 2
		if d.Completed != wantCompleted {
			t.Errorf("Expected completed=%v after %s signed", wantCompleted, signerId)
		}
		applySign(req, d)
	}

	if req.Status != constant.RequestStatusCompleted {
		t.Errorf("Expected request to be completed, got %d", req.Status)
	}
}

func TestDecideSignParallelOrder(t *testing.T) {
	req := newTestRequest(3, false)

	// Any signer may go first when ordering is not strict.
	d, err := DecideSign(req, "C")
	if err != nil {
		t.Fatalf("DecideSign(C) error: %v", err)
	}
	applySign(req, d)

	if req.NextOrder != 0 {
		t.Errorf("Expected next pending order 0, got %d", req.NextOrder)
	}

	d, err = DecideSign(req, "A")
	if err != nil {
		t.Fatalf("DecideSign(A) error: %v", err)
	}
	applySign(req, d)

	if req.NextOrder != 1 {
		t.Errorf("Expected next pending order 1, got %d", req.NextOrder)
	}
}

func TestDecideSignIdempotentRetry(t *testing.T) {
	req := newTestRequest(2, true)

	d, err := DecideSign(req, "A")
	if err != nil {
		t.Fatalf("DecideSign(A) error: %v", err)
	}
	applySign(req, d)

	// Same signer retries.
	d, err = DecideSign(req, "A")
	if err != nil {
		t.Fatalf("Expected idempotent retry to succeed, got %v", err)
	}
	if !d.AlreadySigned {
		t.Error("Expected AlreadySigned on retry")
	}

	// Retry after completion is also an idempotent success.
	d, err = DecideSign(req, "B")
	if err != nil {
		t.Fatalf("DecideSign(B) error: %v", err)
	}
	applySign(req, d)

	d, err = DecideSign(req, "B")
	if err != nil || !d.AlreadySigned {
		t.Errorf("Expected idempotent retry on completed request, got d=%+v err=%v", d, err)
	}
}

// Two signers race for the last slot: applying decisions serially, the way
// the row lock forces it, must produce exactly one completion.
func TestDecideSignLastSlotRace(t *testing.T) {
	req := newTestRequest(2, false)

	d, err := DecideSign(req, "A")
	if err != nil {
		t.Fatalf("DecideSign(A) error: %v", err)
	}

	// Both B and a retrying A observe the same snapshot before A's write
	// lands. The lock serializes them, so the second decision is computed
	// against the updated state.
	applySign(req, d)

	completions := 0
	for _, signerId := range []string{"B", "A", "B"} {
		d, err := DecideSign(req, signerId)
		if err != nil {
			t.Fatalf("DecideSign(%s) error: %v", signerId, err)
		}
		if d.Completed && !d.AlreadySigned {
			completions++
		}
		applySign(req, d)
	}

	if completions != 1 {
		t.Errorf("Expected exactly one completion, got %d", completions)
	}
}

func TestDecideSignAfterRejection(t *testing.T) {
	req := newTestRequest(2, true)

	rd, err := DecideReject(req, "B")
	if err != nil {
		t.Fatalf("DecideReject(B) error: %v", err)
	}
	req.Slots[rd.SlotIndex].Status = constant.SlotStatusDeclined
	req.Status = constant.RequestStatusRejected

	// Rejection is final, nobody can sign anymore.
	if _, err := DecideSign(req, "A"); !errors.Is(err, ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict after rejection, got %v", err)
	}

	// Re-reject is an idempotent no-op.
	rd, err = DecideReject(req, "B")
	if err != nil || !rd.AlreadyRejected {
		t.Errorf("Expected idempotent re-reject, got rd=%+v err=%v", rd, err)
	}
}

func TestDecideRejectAfterSigning(t *testing.T) {
	req := newTestRequest(2, true)

	d, err := DecideSign(req, "A")
	if err != nil {
		t.Fatalf("DecideSign(A) error: %v", err)
	}
	applySign(req, d)

	// A signer who already signed cannot decline their own signature.
	if _, err := DecideReject(req, "A"); !errors.Is(err, ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}

	// But a later signer still can.
	if _, err := DecideReject(req, "B"); err != nil {
		t.Errorf("Expected pending signer to be able to decline, got %v", err)
	}
}

func TestDecideExpire(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		status     constant.RequestStatus
		expiresAt  *time.Time
		force      bool
		wantExpire bool
		wantErr    error
	}{
		{"past deadline", constant.RequestStatusActive, &past, false, true, nil},
		{"future deadline", constant.RequestStatusActive, &future, false, false, ErrStateConflict},
		{"no deadline", constant.RequestStatusActive, nil, false, false, ErrStateConflict},
		{"no deadline forced", constant.RequestStatusActive, nil, true, true, nil},
		{"already expired", constant.RequestStatusExpired, &past, false, false, nil},
		{"completed", constant.RequestStatusCompleted, &past, false, false, ErrStateConflict},
		{"rejected", constant.RequestStatusRejected, &past, true, false, ErrStateConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newTestRequest(1, true)
			req.Status = tt.status
			req.ExpiresAt = tt.expiresAt

			expire, err := DecideExpire(req, now, tt.force)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecideExpire() error: %v", err)
			}
			if expire != tt.wantExpire {
				t.Errorf("Expected expire=%v, got %v", tt.wantExpire, expire)
			}
		})
	}
}
