package verification

import (
	"context"
	"fmt"

	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/cosealhq/coseal/pkg/coseal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers "is this document genuinely signed" for anyone holding a
// QR payload or a copy of the file. Every lookup is recorded, verification
// itself never mutates signing state.
type Service struct {
	repo   *repository.Repository
	logger *zap.SugaredLogger
}

func NewService(repo *repository.Repository, logger *zap.SugaredLogger) *Service {
	return &Service{repo: repo, logger: logger}
}

// VerifyPayload resolves a scanned QR payload to a report. Unknown or
// malformed payloads produce a not-found report, not an error.
func (s *Service) VerifyPayload(ctx context.Context, rawPayload string) (Report, error) {
	payload, err := coseal.ParseVerificationPayload(rawPayload)
	if err != nil {
		report := notFoundReport("unrecognized verification payload")
		return report, s.record(ctx, rawPayload, report)
	}

	var report Report
	switch payload.Kind {
	case coseal.PayloadKindMultiSign:
		report = s.verifyByRequestId(ctx, payload.RequestID)
	default:
		report = s.verifyByDigest(ctx, payload.Digest)
	}

	return report, s.record(ctx, rawPayload, report)
}

// VerifyDigest reports on a document identified by a content hash, which may
// be either the original upload's or the final artifact's.
func (s *Service) VerifyDigest(ctx context.Context, digest coseal.Digest) (Report, error) {
	report := s.verifyByDigest(ctx, digest)
	return report, s.record(ctx, coseal.EncodeDigestPayload(digest), report)
}

// VerifyFile hashes an uploaded copy of a document and reports on it. The
// verifier usually holds the stamped artifact, the final hash index resolves
// that to the same document.
func (s *Service) VerifyFile(ctx context.Context, path string) (Report, error) {
	digest, err := coseal.HashFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to hash uploaded file: %w", err)
	}

	return s.VerifyDigest(ctx, digest)
}

func (s *Service) verifyByDigest(ctx context.Context, digest coseal.Digest) Report {
	doc, err := s.repo.Document.GetByEitherHash(ctx, nil, digest)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logger.Errorf("Failed to look up document by hash %s: %v", digest, err)
		}
		return notFoundReport("no document matches this hash")
	}

	req, err := s.repo.SigningRequest.GetLatestByDocumentId(ctx, nil, doc.ID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logger.Errorf("Failed to look up request for document %s: %v", doc.ID, err)
		}
		return BuildReport(doc, nil)
	}

	return BuildReport(doc, req)
}

func (s *Service) verifyByRequestId(ctx context.Context, requestId string) Report {
	req, err := s.repo.SigningRequest.GetById(ctx, nil, requestId)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logger.Errorf("Failed to look up request %s: %v", requestId, err)
		}
		return notFoundReport("no signing request matches this code")
	}

	return BuildReport(&req.Document, req)
}

// record appends to the verification audit trail. Failures are logged, a
// verifier still gets their report.
func (s *Service) record(ctx context.Context, payload string, report Report) error {
	_, err := s.repo.VerificationRecord.Create(ctx, nil, &model.VerificationRecord{
		DocumentID:       report.DocumentID,
		SigningRequestID: report.RequestID,
		Payload:          payload,
		Result:           report.Result,
		Detail:           report.Detail,
		VerifiedAt:       report.VerifiedAt,
	})
	if err != nil {
		s.logger.Errorf("Failed to record verification: %v", err)
	}
	return nil
}
