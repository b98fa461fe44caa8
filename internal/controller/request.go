package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/cosealhq/coseal/internal/signing"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/gin-gonic/gin"
)

type RequestController struct {
	*baseController
}

type createRequestBody struct {
	DocumentID  string                `json:"documentId" binding:"required,strNotEmpty"`
	Signers     []signing.SignerInput `json:"signers" binding:"required,dive"`
	StrictOrder *bool                 `json:"strictOrder"`
	ExpiresAt   *time.Time            `json:"expiresAt"`
}

func (rc RequestController) CreateRequest(ctx *gin.Context) {
	signer, err := rc.getAuthSigner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body createRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request body", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := rc.app.Signing.CreateRequest(ctx, signing.CreateRequestParams{
		DocumentID:  body.DocumentID,
		Initiator:   *signer,
		Signers:     body.Signers,
		StrictOrder: body.StrictOrder,
		ExpiresAt:   body.ExpiresAt,
	})
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to create signing request", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"request": req})
}

func (rc RequestController) GetRequest(ctx *gin.Context) {
	requestId := ctx.Params.ByName("requestId")
	if requestId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Request ID is required", util.GenerateErrorMessages(errors.New("request id is required"), "requestId"), nil)
		return
	}

	req, err := rc.app.Signing.GetStatus(ctx, requestId)
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to load signing request", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"request": req})
}

// Sign accepts a multipart form: the detached signature and public key as
// fields, plus an optional hand-drawn signature image.
func (rc RequestController) Sign(ctx *gin.Context) {
	signer, err := rc.getAuthSigner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	requestId := ctx.Params.ByName("requestId")
	signature := ctx.PostForm("signature")
	publicKey := ctx.PostForm("publicKey")

	signatureFileKey := ""
	if imageHeader, err := ctx.FormFile("signatureImage"); err == nil {
		info, err := util.UploadFileToS3ByFileHeader(imageHeader, &util.FileUploadOptions{
			DirectoryPath: util.GetSignatureImageDirectoryPath(requestId),
			UniquePrefix:  true,
			Bucket:        rc.app.Config.Minio.BUCKET,
			S3:            rc.app.S3,
		})
		if err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store signature image", util.GenerateErrorMessages(err), nil)
			return
		}
		signatureFileKey = info.Key
	}

	req, completed, err := rc.app.Signing.Sign(ctx, signing.SignParams{
		RequestID:        requestId,
		Signer:           *signer,
		Signature:        signature,
		PublicKey:        publicKey,
		SignatureFileKey: signatureFileKey,
	})
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to sign", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"request": req, "completed": completed})
}

type rejectBody struct {
	Reason string `json:"reason" binding:"omitempty,cmin=2,cmax=500"`
}

func (rc RequestController) Reject(ctx *gin.Context) {
	signer, err := rc.getAuthSigner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body rejectBody
	if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request body", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := rc.app.Signing.Reject(ctx, signing.RejectParams{
		RequestID: ctx.Params.ByName("requestId"),
		Signer:    *signer,
		Reason:    body.Reason,
	})
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to reject", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"request": req})
}

// Expire is restricted to the request's initiator. The sweeper bypasses this
// handler and talks to the service directly.
func (rc RequestController) Expire(ctx *gin.Context) {
	signer, err := rc.getAuthSigner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	requestId := ctx.Params.ByName("requestId")
	req, err := rc.app.Signing.GetStatus(ctx, requestId)
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to load signing request", util.GenerateErrorMessages(err), nil)
		return
	}

	if req.Initiator != signer.ID {
		util.ResponseFailed(ctx, http.StatusForbidden, "Only the initiator can expire a request", util.GenerateErrorMessages(errors.New("only the initiator can expire a request")), nil)
		return
	}

	force := ctx.Query("force") == "true"
	req, err = rc.app.Signing.Expire(ctx, requestId, force)
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to expire", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"request": req})
}

func (rc RequestController) Regenerate(ctx *gin.Context) {
	signer, err := rc.getAuthSigner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	requestId := ctx.Params.ByName("requestId")
	req, err := rc.app.Signing.GetStatus(ctx, requestId)
	if err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to load signing request", util.GenerateErrorMessages(err), nil)
		return
	}

	if req.Initiator != signer.ID {
		util.ResponseFailed(ctx, http.StatusForbidden, "Only the initiator can regenerate the final artifact", util.GenerateErrorMessages(errors.New("only the initiator can regenerate the final artifact")), nil)
		return
	}

	if err := rc.app.Signing.RegenerateFinalArtifact(ctx, requestId); err != nil {
		util.ResponseFailed(ctx, statusFromError(err), "Failed to regenerate", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"queued": true})
}
