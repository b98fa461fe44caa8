package signing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/mailer"
	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/internal/queue"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/cosealhq/coseal/pkg/coseal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service drives a signing request through its lifecycle. All state
// transitions run inside one database transaction holding the request row
// lock, so two concurrent signers can never both observe "one slot left" and
// both mark the request completed.
type Service struct {
	repo   *repository.Repository
	logger *zap.SugaredLogger
	queue  *queue.RabbitMQ
	cfg    *config.Config
}

func NewService(repo *repository.Repository, logger *zap.SugaredLogger, q *queue.RabbitMQ, cfg *config.Config) *Service {
	return &Service{repo: repo, logger: logger, queue: q, cfg: cfg}
}

type SignerInput struct {
	SignerID string `json:"signerId" binding:"required,strNotEmpty,cmax=255"`
	Email    string `json:"email" binding:"required,email"`
	Order    int    `json:"order"`
}

type CreateRequestParams struct {
	DocumentID  string
	Initiator   auth.JWTPayload
	Signers     []SignerInput
	StrictOrder *bool
	ExpiresAt   *time.Time
}

func (s *Service) CreateRequest(ctx context.Context, params CreateRequestParams) (*model.SigningRequest, error) {
	if len(params.Signers) == 0 {
		return nil, fmt.Errorf("%w: at least one signer is required", ErrValidation)
	}

	signers := make([]SignerInput, len(params.Signers))
	copy(signers, params.Signers)
	sort.Slice(signers, func(i, j int) bool { return signers[i].Order < signers[j].Order })
	for i, signer := range signers {
		if signer.Order != i {
			return nil, fmt.Errorf("%w: signer orders must be contiguous starting at 0, got %d at position %d", ErrValidation, signer.Order, i)
		}
	}

	seen := make(map[string]struct{}, len(signers))
	for _, signer := range signers {
		if _, ok := seen[signer.SignerID]; ok {
			return nil, fmt.Errorf("%w: duplicate signer %s", ErrValidation, signer.SignerID)
		}
		seen[signer.SignerID] = struct{}{}
	}

	strictOrder := s.cfg.Signing.StrictOrder
	if params.StrictOrder != nil {
		strictOrder = *params.StrictOrder
	}

	var created *model.SigningRequest
	err := s.repo.DB.Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.Document.GetById(ctx, tx, params.DocumentID)
		if err != nil {
			return err
		}

		if doc.Status == constant.DocumentStatusFinalized {
			return fmt.Errorf("%w: document is already finalized", ErrStateConflict)
		}

		if _, err := s.repo.SigningRequest.GetActiveByDocumentId(ctx, tx, doc.ID); err == nil {
			return fmt.Errorf("%w: document already has an active signing request", ErrStateConflict)
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		req := &model.SigningRequest{
			DocumentID:    doc.ID,
			Initiator:     params.Initiator.ID,
			RequiredCount: len(signers),
			NextOrder:     0,
			StrictOrder:   strictOrder,
			Status:        constant.RequestStatusActive,
			ExpiresAt:     params.ExpiresAt,
		}
		for _, signer := range signers {
			req.Slots = append(req.Slots, model.SignerSlot{
				SignerID: signer.SignerID,
				Email:    signer.Email,
				Order:    signer.Order,
				Status:   constant.SlotStatusPending,
			})
		}

		if _, err := s.repo.SigningRequest.Create(ctx, tx, req); err != nil {
			return err
		}

		if err := s.repo.Document.UpdateStatus(ctx, tx, doc.ID, constant.DocumentStatusSigning); err != nil {
			return err
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload with the Document association so the signer-turn mail carries
	// the document name.
	req, err := s.repo.SigningRequest.GetById(ctx, nil, created.ID)
	if err != nil {
		return created, err
	}

	s.notifyPendingSigners(req)

	return req, nil
}

type SignParams struct {
	RequestID string
	Signer    auth.JWTPayload
	// Base64 Ed25519 signature over the document's original hash.
	Signature string
	PublicKey string
	// Optional key of an uploaded hand-drawn signature image.
	SignatureFileKey string
}

// Sign records one signer's signature and, when it was the last one, marks
// the request completed and enqueues composition of the final artifact.
func (s *Service) Sign(ctx context.Context, params SignParams) (*model.SigningRequest, bool, error) {
	if params.Signature == "" || params.PublicKey == "" {
		return nil, false, fmt.Errorf("%w: signature and public key are required", ErrValidation)
	}

	completed := false
	var signedReq *model.SigningRequest
	err := s.repo.DB.Transaction(func(tx *gorm.DB) error {
		req, err := s.repo.SigningRequest.GetByIdForUpdate(ctx, tx, params.RequestID)
		if err != nil {
			return err
		}

		doc, err := s.repo.Document.GetById(ctx, tx, req.DocumentID)
		if err != nil {
			return err
		}

		// Signatures are always over the original hash, never the stamped
		// artifact's, so signing order cannot invalidate earlier signatures.
		if !coseal.Verify(coseal.Digest(doc.OriginalHash), params.Signature, params.PublicKey) {
			return fmt.Errorf("%w: signature does not verify against the document hash", ErrValidation)
		}

		decision, err := DecideSign(req, params.Signer.ID)
		if err != nil {
			return err
		}

		signedReq = req
		if decision.AlreadySigned {
			return nil
		}

		now := time.Now()
		slot := req.Slots[decision.SlotIndex]
		if err := s.repo.SigningRequest.UpdateSlot(ctx, tx, slot.ID, map[string]any{
			"status":             constant.SlotStatusSigned,
			"signature":          params.Signature,
			"public_key":         params.PublicKey,
			"signed_at":          &now,
			"signature_file_key": params.SignatureFileKey,
		}); err != nil {
			return err
		}

		if err := s.repo.SigningRequest.UpdateProgress(ctx, tx, req.ID, decision.SignedCount, decision.NextOrder); err != nil {
			return err
		}

		if decision.Completed {
			if err := s.repo.SigningRequest.MarkCompleted(ctx, tx, req.ID, now); err != nil {
				return err
			}
			completed = true
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	req, err := s.repo.SigningRequest.GetById(ctx, nil, params.RequestID)
	if err != nil {
		return signedReq, completed, err
	}

	if completed {
		s.enqueueFinalize(req.ID)
		s.notifyCompleted(req)
	} else {
		s.notifyPendingSigners(req)
	}

	return req, completed, nil
}

type RejectParams struct {
	RequestID string
	Signer    auth.JWTPayload
	Reason    string
}

// Reject declines the request on behalf of one signer. Rejection is final
// for the whole request.
func (s *Service) Reject(ctx context.Context, params RejectParams) (*model.SigningRequest, error) {
	err := s.repo.DB.Transaction(func(tx *gorm.DB) error {
		req, err := s.repo.SigningRequest.GetByIdForUpdate(ctx, tx, params.RequestID)
		if err != nil {
			return err
		}

		decision, err := DecideReject(req, params.Signer.ID)
		if err != nil {
			return err
		}
		if decision.AlreadyRejected {
			return nil
		}

		slot := req.Slots[decision.SlotIndex]
		if err := s.repo.SigningRequest.UpdateSlot(ctx, tx, slot.ID, map[string]any{
			"status": constant.SlotStatusDeclined,
		}); err != nil {
			return err
		}

		return s.repo.SigningRequest.MarkRejected(ctx, tx, req.ID, params.Reason)
	})
	if err != nil {
		return nil, err
	}

	req, err := s.repo.SigningRequest.GetById(ctx, nil, params.RequestID)
	if err != nil {
		return nil, err
	}

	s.notifyRejected(req, params.Signer, params.Reason)

	return req, nil
}

// Expire transitions an overdue request to expired. With force it ignores
// the deadline, which the sweeper never does but an operator endpoint may.
func (s *Service) Expire(ctx context.Context, requestId string, force bool) (*model.SigningRequest, error) {
	err := s.repo.DB.Transaction(func(tx *gorm.DB) error {
		req, err := s.repo.SigningRequest.GetByIdForUpdate(ctx, tx, requestId)
		if err != nil {
			return err
		}

		expire, err := DecideExpire(req, time.Now(), force)
		if err != nil {
			return err
		}
		if !expire {
			return nil
		}

		return s.repo.SigningRequest.MarkExpired(ctx, tx, req.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.SigningRequest.GetById(ctx, nil, requestId)
}

func (s *Service) GetStatus(ctx context.Context, requestId string) (*model.SigningRequest, error) {
	return s.repo.SigningRequest.GetById(ctx, nil, requestId)
}

// RegenerateFinalArtifact re-enqueues composition for a completed request.
// Composition is deterministic, so regenerating overwrites the same derived
// artifact.
func (s *Service) RegenerateFinalArtifact(ctx context.Context, requestId string) error {
	req, err := s.repo.SigningRequest.GetById(ctx, nil, requestId)
	if err != nil {
		return err
	}

	if req.Status != constant.RequestStatusCompleted {
		return fmt.Errorf("%w: only completed requests can be regenerated", ErrStateConflict)
	}

	s.enqueueFinalize(req.ID)
	return nil
}

func (s *Service) enqueueFinalize(requestId string) {
	if s.queue == nil {
		s.logger.Warnf("No queue configured, skip finalize job for request %s", requestId)
		return
	}

	if err := s.queue.PublishFinalizeJob(queue.NewFinalizePayload(requestId)); err != nil {
		s.logger.Errorf("Failed to enqueue finalize job for request %s: %v", requestId, err)
	}
}

// notifyPendingSigners emails whoever can act next: the next slot in strict
// mode, every pending slot otherwise. Mail failures are logged, never
// surfaced to the signer.
func (s *Service) notifyPendingSigners(req *model.SigningRequest) {
	if s.queue == nil || req == nil || req.Status != constant.RequestStatusActive {
		return
	}

	for _, slot := range req.Slots {
		if slot.Status != constant.SlotStatusPending {
			continue
		}
		if req.StrictOrder && slot.Order != req.NextOrder {
			continue
		}

		job, err := queue.NewSignerTurnMailJob(slot.Email, mailer.SignerTurnData{
			SignerName:   slot.Email,
			DocumentName: req.Document.FileName,
			Initiator:    req.Initiator,
			SignURL:      fmt.Sprintf(s.cfg.Signing.SignURLPattern, req.ID),
			AppName:      util.GetAppName(),
		})
		if err != nil {
			s.logger.Errorf("Failed to build signer turn mail for %s: %v", slot.Email, err)
			continue
		}

		if err := s.queue.PublishMailJob(job); err != nil {
			s.logger.Errorf("Failed to enqueue signer turn mail for %s: %v", slot.Email, err)
		}
	}
}

func (s *Service) notifyCompleted(req *model.SigningRequest) {
	if s.queue == nil {
		return
	}

	for _, slot := range req.Slots {
		job, err := queue.NewRequestCompletedMailJob(slot.Email, mailer.RequestCompletedData{
			RecipientName: slot.Email,
			DocumentName:  req.Document.FileName,
			VerifyURL:     fmt.Sprintf(s.cfg.Signing.VerifyURLPattern, req.ID),
			AppName:       util.GetAppName(),
		})
		if err != nil {
			s.logger.Errorf("Failed to build completed mail for %s: %v", slot.Email, err)
			continue
		}

		if err := s.queue.PublishMailJob(job); err != nil {
			s.logger.Errorf("Failed to enqueue completed mail for %s: %v", slot.Email, err)
		}
	}
}

func (s *Service) notifyRejected(req *model.SigningRequest, rejectedBy auth.JWTPayload, reason string) {
	if s.queue == nil {
		return
	}

	for _, slot := range req.Slots {
		if slot.SignerID == rejectedBy.ID {
			continue
		}

		job, err := queue.NewRequestRejectedMailJob(slot.Email, mailer.RequestRejectedData{
			RecipientName: slot.Email,
			DocumentName:  req.Document.FileName,
			RejectedBy:    rejectedBy.Email,
			Reason:        reason,
			AppName:       util.GetAppName(),
		})
		if err != nil {
			s.logger.Errorf("Failed to build rejected mail for %s: %v", slot.Email, err)
			continue
		}

		if err := s.queue.PublishMailJob(job); err != nil {
			s.logger.Errorf("Failed to enqueue rejected mail for %s: %v", slot.Email, err)
		}
	}
}
