package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"admissions_backend/internal/config"
	"admissions_backend/internal/imageprocessor"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/internal/storage"
	"admissions_backend/internal/validator"
	"admissions_backend/pkg/apperrors"
)

// sniffLen covers the magic bytes of every accepted format.
const sniffLen = 3072

// expectedMIME pins the sniffed content type for known extensions.
var expectedMIME = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// FileUpload is an opened multipart file.
type FileUpload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// DocumentFile is a stored document opened for download.
type DocumentFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type DocumentService interface {
	Upload(ctx context.Context, db *gorm.DB, userID uint, docType string, file *FileUpload) (*dto.DocumentView, error)
	List(ctx context.Context, db *gorm.DB, userID uint) ([]dto.DocumentView, error)
	Open(ctx context.Context, db *gorm.DB, userID, documentID uint) (*DocumentFile, error)
}

type DocumentServiceImpl struct {
	repo       repositories.DocumentRepository
	store      storage.Storage
	thumbnails *imageprocessor.Thumbnailer
	maxSize    int64
	allowed    map[string]bool
	now        func() time.Time
}

func NewDocumentService(repo repositories.DocumentRepository, store storage.Storage, cfg config.UploadConfig) DocumentService {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &DocumentServiceImpl{
		repo:       repo,
		store:      store,
		thumbnails: imageprocessor.NewThumbnailer(80, imageprocessor.SizeThumbnail),
		maxSize:    cfg.MaxSize,
		allowed:    allowed,
		now:        time.Now,
	}
}

func (s *DocumentServiceImpl) Upload(ctx context.Context, db *gorm.DB, userID uint, docType string, file *FileUpload) (*dto.DocumentView, error) {
	if s.store == nil {
		return nil, apperrors.ErrStorageNotConfigured
	}
	if !validator.IsDocumentType(docType) {
		return nil, apperrors.NewBadRequestError("invalid document type")
	}
	if file == nil || file.Content == nil {
		return nil, apperrors.NewBadRequestError("file is required")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Name), "."))
	if !s.allowed[ext] {
		return nil, apperrors.ErrInvalidFileType
	}
	if file.Size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewBadRequestError("unreadable upload")
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if want, ok := expectedMIME[ext]; ok && !detected.Is(want) {
		logger.CtxWarn(ctx, "upload content does not match extension",
			"user_id", userID, "extension", ext, "detected", detected.String())
		return nil, apperrors.ErrInvalidFileType
	}

	// The declared size may lie; count what actually arrives.
	var body io.Reader = io.LimitReader(io.MultiReader(bytes.NewReader(head), file.Content), s.maxSize+1)
	var imageCopy *bytes.Buffer
	if isImage(detected) {
		imageCopy = &bytes.Buffer{}
		body = io.TeeReader(body, imageCopy)
	}
	counter := &countingReader{r: body}

	// same-second uploads must never share a key
	stem := fmt.Sprintf("%d/%s_%s_%s", userID, docType, s.now().UTC().Format("20060102150405"), uuid.NewString()[:8])
	key := stem + "." + ext
	contentType := detected.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	if err := s.store.Save(ctx, key, counter, contentType); err != nil {
		logger.CtxWithError(ctx, "failed to store document", err, "key", key)
		return nil, apperrors.ErrStorageFailure.WithError(err)
	}
	if counter.n > s.maxSize {
		s.discard(ctx, key)
		return nil, apperrors.ErrFileTooLarge
	}

	thumbKey := ""
	if imageCopy != nil {
		thumbKey = s.storeThumbnail(ctx, stem+"_thumb.jpg", imageCopy)
	}

	var (
		doc      *models.Document
		replaced []string
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByUserAndTypeForUpdate(tx, userID, docType)
		if err != nil && !errors.Is(err, repositories.ErrDocumentNotFound) {
			return err
		}

		if existing != nil {
			replaced = []string{existing.FilePath, existing.ThumbnailPath}
			doc = existing
		} else {
			doc = &models.Document{UserID: userID, DocumentType: docType}
		}
		doc.FileName = filepath.Base(file.Name)
		doc.FilePath = key
		doc.FileURL = s.store.URL(key)
		doc.StorageProvider = s.store.Provider()
		doc.ThumbnailPath = thumbKey
		doc.ThumbnailURL = ""
		if thumbKey != "" {
			doc.ThumbnailURL = s.store.URL(thumbKey)
		}
		doc.FileSize = counter.n
		doc.MimeType = contentType
		doc.UploadedAt = s.now()

		if existing != nil {
			return s.repo.Save(tx, doc)
		}
		return s.repo.Create(tx, doc)
	})
	if err != nil {
		s.discard(ctx, key)
		if thumbKey != "" {
			s.discard(ctx, thumbKey)
		}
		if repositories.IsUniqueViolation(err) {
			return nil, apperrors.ErrConflict(err, "document", "A concurrent upload replaced this document")
		}
		return nil, mapRepoError(err)
	}

	for _, old := range replaced {
		if old != "" && old != key && old != thumbKey {
			s.discard(ctx, old)
		}
	}

	logger.CtxInfo(ctx, "document uploaded",
		"user_id", userID, "document_type", docType, "size", counter.n, "provider", doc.StorageProvider)
	view := dto.NewDocumentView(doc)
	return &view, nil
}

func isImage(m *mimetype.MIME) bool {
	return m.Is("image/jpeg") || m.Is("image/png")
}

// storeThumbnail saves a preview next to the original. Failures only lose the preview.
func (s *DocumentServiceImpl) storeThumbnail(ctx context.Context, key string, src io.Reader) string {
	thumb, err := s.thumbnails.Thumbnail(src)
	if err != nil {
		logger.CtxWithError(ctx, "failed to render thumbnail", err, "key", key)
		return ""
	}
	if err := s.store.Save(ctx, key, bytes.NewReader(thumb), "image/jpeg"); err != nil {
		logger.CtxWithError(ctx, "failed to store thumbnail", err, "key", key)
		return ""
	}
	return key
}

func (s *DocumentServiceImpl) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "failed to delete stored object", err, "key", key)
	}
}

func (s *DocumentServiceImpl) List(ctx context.Context, db *gorm.DB, userID uint) ([]dto.DocumentView, error) {
	docs, err := s.repo.ListByUser(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]dto.DocumentView, 0, len(docs))
	for i := range docs {
		out = append(out, dto.NewDocumentView(&docs[i]))
	}
	return out, nil
}

func (s *DocumentServiceImpl) Open(ctx context.Context, db *gorm.DB, userID, documentID uint) (*DocumentFile, error) {
	if s.store == nil {
		return nil, apperrors.ErrStorageNotConfigured
	}
	doc, err := s.repo.FindByIDForUser(db, documentID, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	body, err := s.store.Get(ctx, doc.FilePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.ErrDocumentNotFound.WithMessage("Stored file is missing")
	}
	if err != nil {
		return nil, apperrors.ErrStorageFailure.WithError(err)
	}
	return &DocumentFile{Name: doc.FileName, ContentType: doc.MimeType, Size: doc.FileSize, Body: body}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
