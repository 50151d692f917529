package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/services"
	"admissions_backend/pkg/apperrors"
)

// multipartOverhead leaves room for boundaries and other form fields.
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	*BaseHandler
	documentService services.DocumentService
	maxUpload       int64
}

func NewDocumentHandler(base *BaseHandler, documentService services.DocumentService, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     base,
		documentService: documentService,
		maxUpload:       maxUpload,
	}
}

func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup, guards *Guards) {
	rg.POST("/upload_single_document", guards.Student, h.UploadSingle)

	internal := rg.Group("/student/internal")
	internal.Use(guards.Student)
	{
		internal.GET("/documents", h.List)
		internal.GET("/documents/:id/download", h.Download)
		internal.POST("/upload_document", h.Upload)
	}
}

// Upload godoc
// @Summary Upload or replace a document
// @Description One document per type; a new upload replaces the previous file.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document_type query string true "Document type"
// @Param file formData file true "pdf, jpg, jpeg or png up to 5MB"
// @Success 200 {object} dto.DocumentView
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /api/student/internal/upload_document [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	h.upload(c, c.Query("document_type"))
}

// UploadSingle is the same operation keyed by file_key.
func (h *DocumentHandler) UploadSingle(c *gin.Context) {
	h.upload(c, c.Query("file_key"))
}

func (h *DocumentHandler) upload(c *gin.Context, docType string) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if docType == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("document type is required"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperrors.HandleError(c, apperrors.ErrFileTooLarge)
			return
		}
		logger.CtxWithError(c.Request.Context(), "Failed to read upload", err)
		apperrors.HandleError(c, apperrors.NewBadRequestError("file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to open uploaded file"))
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), h.GetDB(c), userID, docType, &services.FileUpload{
		Name:    header.Filename,
		Size:    header.Size,
		Content: file,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	docs, err := h.documentService.List(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	docID, err := ParseParamUint(c, "id")
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	file, err := h.documentService.Open(c.Request.Context(), h.GetDB(c), userID, docID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer file.Body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strconv.Quote(file.Name)))
	c.DataFromReader(http.StatusOK, file.Size, contentType, io.Reader(file.Body), nil)
}
