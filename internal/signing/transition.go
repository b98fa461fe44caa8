package signing

import (
	"fmt"
	"time"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
)

// SignDecision is the outcome of applying one signature to a request. It is
// computed from an in-memory snapshot only, the caller persists it while
// holding the request row lock.
type SignDecision struct {
	// Index into req.Slots of the slot being signed.
	SlotIndex int
	// AlreadySigned reports an idempotent retry, nothing to persist.
	AlreadySigned bool
	SignedCount   int
	NextOrder     int
	Completed     bool
}

// DecideSign validates that signerId may sign req right now and computes the
// resulting counters. Slots must be sorted by order.
func DecideSign(req *model.SigningRequest, signerId string) (SignDecision, error) {
	slotIndex := findSlot(req, signerId)

	switch req.Status {
	case constant.RequestStatusRejected:
		return SignDecision{}, fmt.Errorf("%w: request has been rejected", ErrStateConflict)
	case constant.RequestStatusExpired:
		return SignDecision{}, fmt.Errorf("%w: request has expired", ErrStateConflict)
	case constant.RequestStatusCompleted:
		if slotIndex >= 0 && req.Slots[slotIndex].Status == constant.SlotStatusSigned {
			return SignDecision{SlotIndex: slotIndex, AlreadySigned: true}, nil
		}
		return SignDecision{}, fmt.Errorf("%w: request is already completed", ErrStateConflict)
	}

	if slotIndex < 0 {
		return SignDecision{}, ErrUnauthorizedSigner
	}
	slot := req.Slots[slotIndex]

	switch slot.Status {
	case constant.SlotStatusSigned:
		return SignDecision{SlotIndex: slotIndex, AlreadySigned: true}, nil
	case constant.SlotStatusDeclined:
		return SignDecision{}, fmt.Errorf("%w: signer already declined", ErrStateConflict)
	}

	if req.StrictOrder && slot.Order != req.NextOrder {
		return SignDecision{}, fmt.Errorf("%w: it is not this signer's turn yet, expected order %d", ErrStateConflict, req.NextOrder)
	}

	signedCount := req.SignedCount + 1
	return SignDecision{
		SlotIndex:   slotIndex,
		SignedCount: signedCount,
		NextOrder:   nextPendingOrder(req, slot.Order),
		Completed:   signedCount >= req.RequiredCount,
	}, nil
}

type RejectDecision struct {
	SlotIndex int
	// AlreadyRejected reports an idempotent retry on a rejected request.
	AlreadyRejected bool
}

// DecideReject validates that signerId may decline req. Any pending signer
// may decline regardless of ordering.
func DecideReject(req *model.SigningRequest, signerId string) (RejectDecision, error) {
	slotIndex := findSlot(req, signerId)

	switch req.Status {
	case constant.RequestStatusRejected:
		return RejectDecision{SlotIndex: slotIndex, AlreadyRejected: true}, nil
	case constant.RequestStatusCompleted:
		return RejectDecision{}, fmt.Errorf("%w: request is already completed", ErrStateConflict)
	case constant.RequestStatusExpired:
		return RejectDecision{}, fmt.Errorf("%w: request has expired", ErrStateConflict)
	}

	if slotIndex < 0 {
		return RejectDecision{}, ErrUnauthorizedSigner
	}

	if req.Slots[slotIndex].Status == constant.SlotStatusSigned {
		return RejectDecision{}, fmt.Errorf("%w: signer already signed", ErrStateConflict)
	}

	return RejectDecision{SlotIndex: slotIndex}, nil
}

// DecideExpire reports whether req should transition to expired. Expiring an
// already expired request is a no-op, expiring a completed or rejected one is
// a conflict.
func DecideExpire(req *model.SigningRequest, now time.Time, force bool) (bool, error) {
	switch req.Status {
	case constant.RequestStatusExpired:
		return false, nil
	case constant.RequestStatusCompleted, constant.RequestStatusRejected:
		return false, fmt.Errorf("%w: request is already %s", ErrStateConflict, statusName(req.Status))
	}

	if force {
		return true, nil
	}

	if req.ExpiresAt == nil || now.Before(*req.ExpiresAt) {
		return false, fmt.Errorf("%w: request has not reached its deadline", ErrStateConflict)
	}

	return true, nil
}

func findSlot(req *model.SigningRequest, signerId string) int {
	for i, slot := range req.Slots {
		if slot.SignerID == signerId {
			return i
		}
	}
	return -1
}

// nextPendingOrder returns the smallest pending order after signingOrder is
// taken, or -1 when nothing is left.
func nextPendingOrder(req *model.SigningRequest, signingOrder int) int {
	next := -1
	for _, slot := range req.Slots {
		if slot.Order == signingOrder || slot.Status != constant.SlotStatusPending {
			continue
		}
		if next == -1 || slot.Order < next {
			next = slot.Order
		}
	}
	return next
}

func statusName(status constant.RequestStatus) string {
	switch status {
	case constant.RequestStatusActive:
		return "active"
	case constant.RequestStatusCompleted:
		return "completed"
	case constant.RequestStatusRejected:
		return "rejected"
	case constant.RequestStatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}
