package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/config"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/testutil"
)

func pdfUpload(name, body string) *FileUpload {
	content := "%PDF-1.4\n" + body + "\n%%EOF\n"
	return &FileUpload{Name: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func pngUpload(t *testing.T, name string, w, h int) *FileUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &FileUpload{Name: name, Size: int64(buf.Len()), Content: &buf}
}

func documentService(t *testing.T, env *testEnv) *DocumentServiceImpl {
	t.Helper()
	svc, ok := env.container.DocumentService.(*DocumentServiceImpl)
	require.True(t, ok)
	return svc
}

func (e *testEnv) stored(key string) bool {
	_, err := os.Stat(filepath.Join(e.store.BasePath(), filepath.FromSlash(key)))
	return err == nil
}

func TestUploadStoresDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "doc@example.com")

	view, err := env.container.DocumentService.Upload(ctx, env.db, user.ID, "resume", pdfUpload("My Resume.PDF", "v1"))
	require.NoError(t, err)
	assert.Equal(t, "resume", view.DocumentType)
	assert.Equal(t, "My Resume.PDF", view.FileName)
	assert.Equal(t, "application/pdf", view.MimeType)
	assert.Empty(t, view.ThumbnailURL, "pdfs get no preview")
	assert.True(t, strings.HasPrefix(view.FileURL, "/uploads/"))

	file, err := env.container.DocumentService.Open(ctx, env.db, user.ID, view.ID)
	require.NoError(t, err)
	defer file.Body.Close()
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "v1")
	assert.EqualValues(t, len(body), view.FileSize)
}

func TestUploadReplacesSameType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := documentService(t, env)
	user := testutil.CreateStudent(t, env.db, "twice@example.com")

	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	first, err := svc.Upload(ctx, env.db, user.ID, "resume", pdfUpload("a.pdf", "first"))
	require.NoError(t, err)

	var firstDoc models.Document
	require.NoError(t, env.db.First(&firstDoc, first.ID).Error)
	require.True(t, env.stored(firstDoc.FilePath))

	clock = clock.Add(time.Minute)
	second, err := svc.Upload(ctx, env.db, user.ID, "resume", pdfUpload("b.pdf", "second"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "the row is replaced in place")
	assert.Equal(t, "b.pdf", second.FileName)

	var count int64
	require.NoError(t, env.db.Model(&models.Document{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.False(t, env.stored(firstDoc.FilePath), "the old object is removed")

	_, err = svc.Upload(ctx, env.db, user.ID, "photo", pdfUpload("c.pdf", "other"))
	require.NoError(t, err)
	docs, err := svc.List(ctx, env.db, user.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestUploadsInTheSameSecondGetDistinctKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := documentService(t, env)
	user := testutil.CreateStudent(t, env.db, "fast@example.com")

	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, err := svc.Upload(ctx, env.db, user.ID, "resume", pdfUpload("a.pdf", "first"))
	require.NoError(t, err)
	var firstDoc models.Document
	require.NoError(t, env.db.First(&firstDoc, first.ID).Error)

	second, err := svc.Upload(ctx, env.db, user.ID, "resume", pdfUpload("b.pdf", "second"))
	require.NoError(t, err)
	var secondDoc models.Document
	require.NoError(t, env.db.First(&secondDoc, second.ID).Error)

	assert.NotEqual(t, firstDoc.FilePath, secondDoc.FilePath)
	assert.True(t, strings.HasPrefix(secondDoc.FilePath, fmt.Sprintf("%d/resume_20250101100000_", user.ID)))
	assert.True(t, env.stored(secondDoc.FilePath))

	file, err := svc.Open(ctx, env.db, user.ID, second.ID)
	require.NoError(t, err)
	defer file.Body.Close()
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "second")
}

func TestUploadImageGetsThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := documentService(t, env)
	user := testutil.CreateStudent(t, env.db, "photo@example.com")

	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	view, err := svc.Upload(ctx, env.db, user.ID, "photo", pngUpload(t, "me.png", 800, 600))
	require.NoError(t, err)
	assert.Equal(t, "image/png", view.MimeType)
	require.NotEmpty(t, view.ThumbnailURL)

	var doc models.Document
	require.NoError(t, env.db.First(&doc, view.ID).Error)
	assert.True(t, env.stored(doc.ThumbnailPath))
	oldThumb := doc.ThumbnailPath

	clock = clock.Add(time.Minute)
	_, err = svc.Upload(ctx, env.db, user.ID, "photo", pdfUpload("me.pdf", "scan"))
	require.NoError(t, err)
	require.NoError(t, env.db.First(&doc, view.ID).Error)
	assert.Empty(t, doc.ThumbnailPath)
	assert.False(t, env.stored(oldThumb), "replacing an image drops its preview")
}

func TestUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "bad@example.com")
	big := strings.Repeat("x", int(env.cfg.Upload.MaxSize))

	tests := []struct {
		name    string
		docType string
		file    *FileUpload
		status  int
	}{
		{"unsupported extension", "resume", pdfUpload("resume.docx", "x"), http.StatusUnsupportedMediaType},
		{"content does not match extension", "resume", &FileUpload{Name: "resume.pdf", Size: 5, Content: strings.NewReader("hello")}, http.StatusUnsupportedMediaType},
		{"declared too large", "resume", &FileUpload{Name: "r.pdf", Size: env.cfg.Upload.MaxSize + 1, Content: strings.NewReader("%PDF-")}, http.StatusRequestEntityTooLarge},
		{"actually too large", "resume", &FileUpload{Name: "r.pdf", Size: 10, Content: strings.NewReader("%PDF-1.4\n" + big)}, http.StatusRequestEntityTooLarge},
		{"bad document type", "../etc", pdfUpload("r.pdf", "x"), http.StatusBadRequest},
		{"missing file", "resume", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.container.DocumentService.Upload(ctx, env.db, user.ID, tt.docType, tt.file)
			assert.Equal(t, tt.status, testutil.StatusOf(err))
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Document{}).Count(&count).Error)
	assert.Zero(t, count)

	entries, err := os.ReadDir(env.store.BasePath())
	require.NoError(t, err)
	for _, e := range entries {
		inner, _ := os.ReadDir(filepath.Join(env.store.BasePath(), e.Name()))
		assert.Empty(t, inner, "rejected uploads leave no objects behind")
	}
}

func TestOpenIsScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateStudent(t, env.db, "owner@example.com")
	other := testutil.CreateStudent(t, env.db, "other@example.com")

	view, err := env.container.DocumentService.Upload(ctx, env.db, owner.ID, "resume", pdfUpload("r.pdf", "secret"))
	require.NoError(t, err)

	_, err = env.container.DocumentService.Open(ctx, env.db, other.ID, view.ID)
	assert.Equal(t, http.StatusNotFound, testutil.StatusOf(err))
}

func TestUploadWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDocumentService(repositories.NewDocumentRepository(), nil, config.UploadConfig{MaxSize: 1024, AllowedExtensions: []string{"pdf"}})

	_, err := svc.Upload(context.Background(), env.db, 1, "resume", pdfUpload("r.pdf", "x"))
	assert.Equal(t, http.StatusServiceUnavailable, testutil.StatusOf(err))
}
