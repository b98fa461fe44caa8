package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/cosealhq/coseal/pkg/coseal"
	"github.com/gin-gonic/gin"
)

type VerificationController struct {
	*baseController
}

// Verify resolves a scanned QR payload. Public, no auth: anyone holding the
// document may check it.
func (vc VerificationController) Verify(ctx *gin.Context) {
	payload := ctx.Params.ByName("payload")
	if payload == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Verification payload is required", util.GenerateErrorMessages(errors.New("verification payload is required"), "payload"), nil)
		return
	}

	report, err := vc.app.Verification.VerifyPayload(ctx, payload)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Verification failed", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"report": report})
}

// VerifyUpload hashes an uploaded copy of a document and reports on it.
func (vc VerificationController) VerifyUpload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "A file is required", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	tmp, err := util.CreateTemp("verify_*.pdf")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store upload", util.GenerateErrorMessages(err), nil)
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := ctx.SaveUploadedFile(fileHeader, tmp.Name()); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store upload", util.GenerateErrorMessages(err), nil)
		return
	}

	report, err := vc.app.Verification.VerifyFile(ctx, tmp.Name())
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Verification failed", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"report": report})
}

// VerifyQR renders the QR code for a payload as svg, for embedding in
// verification pages.
func (vc VerificationController) VerifyQR(ctx *gin.Context) {
	payload := ctx.Params.ByName("payload")
	if payload == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Verification payload is required", util.GenerateErrorMessages(errors.New("verification payload is required"), "payload"), nil)
		return
	}

	svg, err := coseal.GenerateQRCodeSVG(fmt.Sprintf(vc.app.Config.Signing.VerifyURLPattern, payload))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to render QR code", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// DownloadBundle streams a zip holding the stamped final artifact and the
// verification report for a valid document.
func (vc VerificationController) DownloadBundle(ctx *gin.Context) {
	payload := ctx.Params.ByName("payload")
	if payload == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Verification payload is required", util.GenerateErrorMessages(errors.New("verification payload is required"), "payload"), nil)
		return
	}

	report, err := vc.app.Verification.VerifyPayload(ctx, payload)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Verification failed", util.GenerateErrorMessages(err), nil)
		return
	}

	if report.Result != constant.VerificationResultValid || report.FinalHash == nil {
		util.ResponseFailed(ctx, http.StatusConflict, "Document is not finalized", util.GenerateErrorMessages(errors.New("only valid finalized documents can be downloaded")), nil)
		return
	}

	doc, err := vc.app.Repository.Document.GetById(ctx, nil, report.DocumentID)
	if err != nil || doc.StorageKeyFinal == nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Final artifact not found", util.GenerateErrorMessages(err), nil)
		return
	}

	bundleDir, err := os.MkdirTemp(util.GetTempDir(), "bundle_*")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build bundle", util.GenerateErrorMessages(err), nil)
		return
	}
	defer os.RemoveAll(bundleDir)

	finalFile, err := util.DownloadFileFromS3ToLocal(ctx, vc.app.S3, doc.BucketName, *doc.StorageKeyFinal)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to fetch final artifact", util.GenerateErrorMessages(err), nil)
		return
	}
	defer os.Remove(finalFile)

	if err := os.Rename(finalFile, filepath.Join(bundleDir, "signed.pdf")); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build bundle", util.GenerateErrorMessages(err), nil)
		return
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build bundle", util.GenerateErrorMessages(err), nil)
		return
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "report.json"), reportJSON, 0644); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build bundle", util.GenerateErrorMessages(err), nil)
		return
	}

	zipSuffix, err := util.GenerateNChar(8)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build bundle", util.GenerateErrorMessages(err), nil)
		return
	}
	zipFile := filepath.Join(util.GetTempDir(), fmt.Sprintf("%s_%s_bundle.zip", doc.ID, zipSuffix))
	defer os.Remove(zipFile)
	if err := util.ZipDir(bundleDir, zipFile); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build bundle", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.FileAttachment(zipFile, fmt.Sprintf("%s_signed.zip", doc.FileName))
}
