package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/internal/model"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/cosealhq/coseal/pkg/coseal"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DocumentController struct {
	*baseController
}

const presignedURLExpiry = 15 * time.Minute

// UploadDocument stores a pdf, hashes it and registers it for signing.
// Uploading the same file twice returns the already registered document.
func (dc DocumentController) UploadDocument(ctx *gin.Context) {
	if _, err := dc.getAuthSigner(ctx); err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "A pdf file is required", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Only pdf files are accepted", util.GenerateErrorMessages(errors.New("only pdf files are accepted"), "file"), nil)
		return
	}

	tmp, err := util.CreateTemp("upload_*.pdf")
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

	digest, err := coseal.HashFile(tmp.Name())
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to hash upload", util.GenerateErrorMessages(err), nil)
		return
	}

	// Re-uploading a known file is an idempotent no-op.
	if existing, err := dc.app.Repository.Document.GetByEitherHash(ctx, nil, digest); err == nil {
		util.ResponseSuccess(ctx, gin.H{"document": existing, "alreadyExists": true})
		return
	} else if err != gorm.ErrRecordNotFound {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to look up document", util.GenerateErrorMessages(err), nil)
		return
	}

	// The original is stored under its own hash and never mutated.
	storedName := filepath.Join(filepath.Dir(tmp.Name()), fmt.Sprintf("%s.pdf", digest))
	if err := os.Rename(tmp.Name(), storedName); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store upload", util.GenerateErrorMessages(err), nil)
		return
	}
	defer os.Remove(storedName)

	storageKey := filepath.Join("originals", filepath.Base(storedName))
	if _, err := util.UploadFileToS3ByPath(storedName, &util.FileUploadOptions{
		DirectoryPath: "originals",
		Bucket:        dc.app.Config.Minio.BUCKET,
		S3:            dc.app.S3,
	}); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload document", util.GenerateErrorMessages(err), nil)
		return
	}

	doc := &model.Document{
		FileName:     fileHeader.Filename,
		OriginalHash: string(digest),
		HashAlgo:     coseal.HashAlgo,
		BucketName:   dc.app.Config.Minio.BUCKET,
		StorageKey:   storageKey,
		Size:         fileHeader.Size,
		Status:       constant.DocumentStatusUploaded,
	}
	if _, err := dc.app.Repository.Document.Create(ctx, nil, doc); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to register document", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"document": doc})
}

// GetDocument returns metadata plus short-lived download links.
func (dc DocumentController) GetDocument(ctx *gin.Context) {
	documentId := ctx.Params.ByName("documentId")
	if documentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Document ID is required", util.GenerateErrorMessages(errors.New("document id is required"), "documentId"), nil)
		return
	}

	doc, err := dc.app.Repository.Document.GetById(ctx, nil, documentId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.ResponseFailed(ctx, http.StatusNotFound, "Document not found", util.GenerateErrorMessages(err, "documentId"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to load document", util.GenerateErrorMessages(err), nil)
		return
	}

	originalURL, err := util.GetPresignedURL(ctx, dc.app.S3, doc.BucketName, doc.StorageKey, presignedURLExpiry)
	if err != nil {
		dc.app.Logger.Errorf("Failed to presign original for document %s: %v", doc.ID, err)
	}

	var finalURL string
	if doc.StorageKeyFinal != nil {
		finalURL, err = util.GetPresignedURL(ctx, dc.app.S3, doc.BucketName, *doc.StorageKeyFinal, presignedURLExpiry)
		if err != nil {
			dc.app.Logger.Errorf("Failed to presign final artifact for document %s: %v", doc.ID, err)
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"document":    doc,
		"originalUrl": originalURL,
		"finalUrl":    finalURL,
	})
}

// GetVerificationHistory pages through the audit trail of verify lookups
// recorded against a document.
func (dc DocumentController) GetVerificationHistory(ctx *gin.Context) {
	documentId := ctx.Params.ByName("documentId")
	if documentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Document ID is required", util.GenerateErrorMessages(errors.New("document id is required"), "documentId"), nil)
		return
	}

	page, err := strconv.ParseUint(ctx.DefaultQuery("page", "1"), 10, 32)
	if err != nil || page == 0 {
		page = 1
	}
	pageSize, err := strconv.ParseUint(ctx.DefaultQuery("pageSize", "20"), 10, 32)
	if err != nil || pageSize == 0 {
		pageSize = uint64(constant.DefaultPageSize)
	}

	records, total, err := dc.app.Repository.VerificationRecord.GetByDocumentId(ctx, nil, documentId, uint(page), uint(pageSize))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to load verification history", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"records":   records,
		"total":     total,
		"totalPage": util.CalculateTotalPage(total, uint(pageSize)),
	})
}
