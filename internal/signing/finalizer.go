package signing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/internal/queue"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/cosealhq/coseal/pkg/coseal"
)

// FinalizeRequest composes the stamped final artifact for a completed
// request. It is a queue.FinalizeJobHandler: the bool result tells the
// consumer whether the job is worth retrying.
func FinalizeRequest(jobPayload queue.FinalizePayload, app *queue.ConsumerContext) (bool, error) {
	ctx := context.Background()

	req, err := app.Repository.SigningRequest.GetById(ctx, nil, jobPayload.RequestID)
	if err != nil {
		return false, fmt.Errorf("failed to load request %s: %w", jobPayload.RequestID, err)
	}

	if req.Status != constant.RequestStatusCompleted {
		return false, fmt.Errorf("%w: request %s is not completed", ErrStateConflict, req.ID)
	}

	doc := req.Document
	if doc.Status == constant.DocumentStatusFinalized && doc.FinalHash != nil {
		// A previous delivery already finished the job.
		app.Logger.Infof("Request %s already finalized with hash %s, skipping", req.ID, *doc.FinalHash)
		return false, nil
	}

	originalFile, err := util.DownloadFileFromS3ToLocal(ctx, app.S3, doc.BucketName, doc.StorageKey)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrCompositionFailure, err)
	}
	defer os.Remove(originalFile)

	slots, cleanup, err := buildSlotStamps(ctx, app, req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrCompositionFailure, err)
	}
	defer cleanup()

	payload := coseal.EncodeDigestPayload(coseal.Digest(doc.OriginalHash))
	if req.RequiredCount > 1 {
		payload = coseal.EncodeMultiSignPayload(req.ID)
	}

	composer := coseal.NewComposer(req.ID, *coseal.NewDefaultConfig(app.Config.Signing.VerifyURLPattern))
	finalFile, finalHash, err := composer.Compose(originalFile, slots, payload)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrCompositionFailure, err)
	}
	defer os.RemoveAll(composer.OutputDir())

	// The final artifact is keyed by its own digest, so retries overwrite
	// the same object instead of accumulating copies.
	renamed := filepath.Join(filepath.Dir(finalFile), fmt.Sprintf("%s.pdf", finalHash))
	if err := os.Rename(finalFile, renamed); err != nil {
		return true, fmt.Errorf("%w: %v", ErrCompositionFailure, err)
	}

	finalKey := util.ToFinalArtifactDirectoryPath(doc.ID, filepath.Base(renamed))
	if _, err := util.UploadFileToS3ByPath(renamed, &util.FileUploadOptions{
		DirectoryPath: util.GetFinalArtifactDirectoryPath(doc.ID),
		Bucket:        doc.BucketName,
		S3:            app.S3,
	}); err != nil {
		return true, fmt.Errorf("%w: failed to upload final artifact: %v", ErrCompositionFailure, err)
	}

	if err := app.Repository.Document.AttachFinal(ctx, nil, doc.ID, finalHash, finalKey); err != nil {
		return true, fmt.Errorf("failed to record final artifact for document %s: %w", doc.ID, err)
	}

	app.Logger.Infof("Finalized request %s, document %s, final hash %s", req.ID, doc.ID, finalHash)

	return false, nil
}

// buildSlotStamps converts the persisted slots into composer inputs,
// downloading hand-drawn signature images where present. The returned
// cleanup removes the downloaded files.
func buildSlotStamps(ctx context.Context, app *queue.ConsumerContext, req *model.SigningRequest) ([]coseal.SlotStamp, func(), error) {
	var localFiles []string
	cleanup := func() {
		for _, f := range localFiles {
			os.Remove(f)
		}
	}

	slots := make([]coseal.SlotStamp, 0, len(req.Slots))
	for _, slot := range req.Slots {
		stamp := coseal.SlotStamp{
			Order:    slot.Order,
			SignerID: slot.Email,
			Status:   slotStampStatus(slot.Status),
			SignedAt: slot.SignedAt,
		}

		if slot.Status == constant.SlotStatusSigned && slot.SignatureFileKey != "" {
			local, err := util.DownloadFileFromS3ToLocal(ctx, app.S3, req.Document.BucketName, slot.SignatureFileKey)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to download signature image for slot %d: %w", slot.Order, err)
			}
			localFiles = append(localFiles, local)
			stamp.SignatureImagePath = local
		}

		slots = append(slots, stamp)
	}

	return slots, cleanup, nil
}

func slotStampStatus(status constant.SlotStatus) coseal.StampStatus {
	switch status {
	case constant.SlotStatusSigned:
		return coseal.StampSigned
	case constant.SlotStatusDeclined:
		return coseal.StampDeclined
	default:
		return coseal.StampPending
	}
}
