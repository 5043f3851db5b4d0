package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/config"
	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/handler"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
	"github.com/skillcam-io/skillcam-api/internal/router"
	"github.com/skillcam-io/skillcam-api/internal/service"
)

var webmPayload = []byte("\x1a\x45\xdf\xa3\x42\x82\x84webm")

type recordingStore struct {
	uploads []string
	deleted []string
}

func (s *recordingStore) Upload(_ context.Context, bucket, path string, _ io.Reader, _ int64, _ string) error {
	s.uploads = append(s.uploads, bucket+"/"+path)
	return nil
}

func (s *recordingStore) SignedURL(_ context.Context, bucket, path string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://store.test/%s/%s?sig=read", bucket, path), nil
}

func (s *recordingStore) SignedUploadURL(_ context.Context, bucket, path string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://store.test/%s/%s?sig=write", bucket, path), nil
}

func (s *recordingStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("https://store.test/%s/%s", bucket, path)
}

func (s *recordingStore) Delete(_ context.Context, bucket, path string) error {
	s.deleted = append(s.deleted, bucket+"/"+path)
	return nil
}

func setupUploadApp(t *testing.T) (*fiber.App, *recordingStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:handler_uploads?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	store := &recordingStore{}

	uploadService := service.NewUploadService(store, repository.NewUserRepository(db), validate, 250, time.Hour, 30*time.Minute, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "SkillCam Test"}, router.Dependencies{
		UploadHandler: handler.NewUploadHandler(uploadService, logger),
		AuthMiddleware: func(c *fiber.Ctx) error {
			if user, ok := testUsers[c.Get("X-Test-User")]; ok {
				middleware.SetCaller(c, user)
			}
			return c.Next()
		},
	})

	return app, store
}

func buildMultipart(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadSubmissionVideoEndpoint(t *testing.T) {
	app, store := setupUploadApp(t)

	body, contentType := buildMultipart(t, "video", "my clip.webm", webmPayload)
	req := httptest.NewRequest("POST", "/api/uploads/submission-video", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Test-User", "trainee-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result dto.UploadResponse
	decodeResponse(t, resp, &result)
	require.Equal(t, "video/webm", result.MimeType)
	require.Equal(t, "my clip.webm", result.OriginalName)
	require.Contains(t, result.Path, "trainee-1/")
	require.Len(t, store.uploads, 1)
}

func TestUploadSubmissionVideoRejectsWrongType(t *testing.T) {
	app, _ := setupUploadApp(t)

	body, contentType := buildMultipart(t, "video", "notes.txt", []byte("plain text, not a video"))
	req := httptest.NewRequest("POST", "/api/uploads/submission-video", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Test-User", "trainee-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadSubmissionVideoRequiresVideoField(t *testing.T) {
	app, _ := setupUploadApp(t)

	body, contentType := buildMultipart(t, "file", "my clip.webm", webmPayload)
	req := httptest.NewRequest("POST", "/api/uploads/submission-video", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Test-User", "trainee-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTrainerAttachmentEndpointRequiresTrainer(t *testing.T) {
	app, _ := setupUploadApp(t)

	body, contentType := buildMultipart(t, "attachment", "note.png", []byte("\x89PNG\r\n\x1a\n0000"))
	req := httptest.NewRequest("POST", "/api/uploads/trainer-attachment", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Test-User", "trainee-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSignedReadURLEndpoint(t *testing.T) {
	app, _ := setupUploadApp(t)

	req := httptest.NewRequest("GET", "/api/uploads/signed-url?bucket=submission-videos&path=trainee-1/1700000000000-clip.webm", nil)
	req.Header.Set("X-Test-User", "trainee-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.SignedReadURLResponse
	decodeResponse(t, resp, &result)
	require.Contains(t, result.URL, "sig=read")

	// A different trainee is refused.
	req = httptest.NewRequest("GET", "/api/uploads/signed-url?bucket=submission-videos&path=trainee-1/1700000000000-clip.webm", nil)
	req.Header.Set("X-Test-User", "trainee-2")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteObjectEndpoint(t *testing.T) {
	app, store := setupUploadApp(t)

	req := httptest.NewRequest("DELETE", "/api/uploads/submission-videos/trainee-1/1700000000000-clip.webm", nil)
	req.Header.Set("X-Test-User", "trainee-2")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Empty(t, store.deleted)

	req = httptest.NewRequest("DELETE", "/api/uploads/submission-videos/trainee-1/1700000000000-clip.webm", nil)
	req.Header.Set("X-Test-User", "trainee-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, store.deleted, 1)
}
