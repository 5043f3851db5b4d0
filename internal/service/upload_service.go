package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/observability"
	"github.com/skillcam-io/skillcam-api/internal/repository"
	"github.com/skillcam-io/skillcam-api/pkg/storage"
)

var (
	// ErrFileRequired indicates an upload request with no file payload.
	ErrFileRequired = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeds the bucket's limit.
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
	// ErrUploadTypeNotAllowed indicates the detected content type is not
	// accepted by the target bucket.
	ErrUploadTypeNotAllowed = errors.New("upload type not allowed")
	// ErrUnknownBucket indicates a bucket outside the managed set.
	ErrUnknownBucket = errors.New("unknown bucket")
)

const (
	maxAttachmentUploadBytes = 25 << 20
	maxAvatarUploadBytes     = 5 << 20
)

// filenameSanitizer collapses every character outside the portable object-key
// alphabet to an underscore, so client filenames cannot smuggle separators or
// control characters into object paths.
var filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// ObjectStorage is the slice of the storage client the upload service needs.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	SignedUploadURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	PublicURL(bucket, path string) string
	Delete(ctx context.Context, bucket, path string) error
}

// UploadService is the gateway between callers and object storage. It owns
// path construction, content-type sniffing, size limits, and the access rules
// for signed URLs and deletion.
type UploadService interface {
	UploadSubmissionVideo(ctx context.Context, caller middleware.AuthUser, fileName string, data []byte) (dto.UploadResponse, error)
	UploadTrainerAttachment(ctx context.Context, caller middleware.AuthUser, fileName string, data []byte) (dto.UploadResponse, error)
	UploadProfileAvatar(ctx context.Context, caller middleware.AuthUser, fileName string, data []byte) (dto.AvatarUploadResponse, error)
	// CreateSignedUploadURL grants direct-to-storage write access for one
	// submission video object, bypassing the API for the payload itself.
	CreateSignedUploadURL(ctx context.Context, caller middleware.AuthUser, payload dto.SignedUploadURLRequest) (dto.SignedUploadURLResponse, error)
	CreateSignedReadURL(ctx context.Context, caller middleware.AuthUser, bucket, path string) (dto.SignedReadURLResponse, error)
	Delete(ctx context.Context, caller middleware.AuthUser, bucket, path string) error
}

type uploadService struct {
	store     ObjectStorage
	users     repository.UserRepository
	validator *validator.Validate
	tracer    trace.Tracer
	logger    zerolog.Logger

	maxVideoBytes int64
	readTTL       time.Duration
	uploadTTL     time.Duration

	// now is injectable so path construction is deterministic in tests.
	now func() time.Time
}

// NewUploadService constructs an UploadService instance.
func NewUploadService(
	store ObjectStorage,
	users repository.UserRepository,
	validate *validator.Validate,
	maxVideoUploadMB int,
	readTTL, uploadTTL time.Duration,
	logger zerolog.Logger,
) UploadService {
	return &uploadService{
		store:         store,
		users:         users,
		validator:     validate,
		tracer:        otel.Tracer("skillcam.upload"),
		logger:        logger.With().Str("component", "upload_service").Logger(),
		maxVideoBytes: int64(maxVideoUploadMB) << 20,
		readTTL:       readTTL,
		uploadTTL:     uploadTTL,
		now:           time.Now,
	}
}

// sanitizeFilename keeps letters, digits, dots and hyphens; everything else
// becomes an underscore.
func sanitizeFilename(name string) string {
	return filenameSanitizer.ReplaceAllString(name, "_")
}

// objectPath namespaces every object under its owner so access checks reduce
// to a prefix comparison.
func (s *uploadService) objectPath(ownerID, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", ownerID, s.now().UnixMilli(), sanitizeFilename(fileName))
}

func ownsPath(callerID, path string) bool {
	return strings.HasPrefix(path, callerID+"/")
}

func (s *uploadService) UploadSubmissionVideo(ctx context.Context, caller middleware.AuthUser, fileName string, data []byte) (dto.UploadResponse, error) {
	return s.upload(ctx, caller, storage.BucketSubmissionVideos, "video", fileName, data, s.maxVideoBytes, func(mime string) bool {
		return strings.HasPrefix(mime, "video/")
	})
}

func (s *uploadService) UploadTrainerAttachment(ctx context.Context, caller middleware.AuthUser, fileName string, data []byte) (dto.UploadResponse, error) {
	if !caller.IsTrainer() {
		return dto.UploadResponse{}, ErrForbidden
	}

	return s.upload(ctx, caller, storage.BucketTrainerAttachments, "attachment", fileName, data, maxAttachmentUploadBytes, func(mime string) bool {
		switch mime {
		case "image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf":
			return true
		default:
			return false
		}
	})
}

func (s *uploadService) UploadProfileAvatar(ctx context.Context, caller middleware.AuthUser, fileName string, data []byte) (dto.AvatarUploadResponse, error) {
	stored, err := s.upload(ctx, caller, storage.BucketProfileAvatars, "avatar", fileName, data, maxAvatarUploadBytes, func(mime string) bool {
		switch mime {
		case "image/jpeg", "image/png", "image/webp":
			return true
		default:
			return false
		}
	})
	if err != nil {
		return dto.AvatarUploadResponse{}, err
	}

	publicURL := s.store.PublicURL(storage.BucketProfileAvatars, stored.Path)
	if err := s.users.UpdateAvatarURL(ctx, caller.ID, publicURL); err != nil {
		return dto.AvatarUploadResponse{}, err
	}

	return dto.AvatarUploadResponse{
		Path:      stored.Path,
		PublicURL: publicURL,
		Size:      stored.Size,
		MimeType:  stored.MimeType,
	}, nil
}

func (s *uploadService) upload(
	ctx context.Context,
	caller middleware.AuthUser,
	bucket, kind, fileName string,
	data []byte,
	maxBytes int64,
	allowed func(mime string) bool,
) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload",
		trace.WithAttributes(
			attribute.String("bucket", bucket),
			attribute.String("type", kind),
			attribute.Int("size", len(data)),
		))
	defer span.End()

	started := s.now()

	if len(data) == 0 || strings.TrimSpace(fileName) == "" {
		observability.UploadRejected().WithLabelValues("empty").Inc()
		return dto.UploadResponse{}, ErrFileRequired
	}

	if int64(len(data)) > maxBytes {
		observability.UploadRejected().WithLabelValues("too_large").Inc()
		return dto.UploadResponse{}, fmt.Errorf("%w: %d bytes over %d byte limit", ErrUploadTooLarge, len(data), maxBytes)
	}

	// Content type comes from the bytes, not the client's claim.
	mime := mimetype.Detect(data).String()
	if base, _, found := strings.Cut(mime, ";"); found {
		mime = strings.TrimSpace(base)
	}
	if !allowed(mime) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return dto.UploadResponse{}, fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, mime)
	}

	path := s.objectPath(caller.ID, fileName)
	if err := s.store.Upload(ctx, bucket, path, bytes.NewReader(data), int64(len(data)), mime); err != nil {
		return dto.UploadResponse{}, err
	}

	observability.UploadRequests().WithLabelValues(kind).Inc()
	observability.UploadLatency().Observe(time.Since(started).Seconds())
	s.logger.Info().
		Str("bucket", bucket).
		Str("path", path).
		Str("mime", mime).
		Int("size", len(data)).
		Msg("upload accepted")

	return dto.UploadResponse{
		Path:         path,
		Size:         int64(len(data)),
		MimeType:     mime,
		OriginalName: fileName,
	}, nil
}

func (s *uploadService) CreateSignedUploadURL(ctx context.Context, caller middleware.AuthUser, payload dto.SignedUploadURLRequest) (dto.SignedUploadURLResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SignedUploadURLResponse{}, err
	}

	path := s.objectPath(caller.ID, payload.FileName)
	signed, err := s.store.SignedUploadURL(ctx, storage.BucketSubmissionVideos, path, s.uploadTTL)
	if err != nil {
		return dto.SignedUploadURLResponse{}, err
	}

	return dto.SignedUploadURLResponse{
		Path:      path,
		SignedURL: signed,
		ExpiresIn: int(s.uploadTTL.Seconds()),
		MimeType:  payload.MimeType,
	}, nil
}

func (s *uploadService) CreateSignedReadURL(ctx context.Context, caller middleware.AuthUser, bucket, path string) (dto.SignedReadURLResponse, error) {
	if !storage.KnownBucket(bucket) {
		return dto.SignedReadURLResponse{}, ErrUnknownBucket
	}

	// Avatars are world-readable; hand back the durable URL directly.
	if bucket == storage.BucketProfileAvatars {
		return dto.SignedReadURLResponse{URL: s.store.PublicURL(bucket, path)}, nil
	}

	// Videos and attachments are private; only the path's owner or a
	// trainer may read them.
	if !caller.IsTrainer() && !ownsPath(caller.ID, path) {
		return dto.SignedReadURLResponse{}, ErrForbidden
	}

	url, err := s.store.SignedURL(ctx, bucket, path, s.readTTL)
	if err != nil {
		return dto.SignedReadURLResponse{}, err
	}

	return dto.SignedReadURLResponse{URL: url}, nil
}

func (s *uploadService) Delete(ctx context.Context, caller middleware.AuthUser, bucket, path string) error {
	if !storage.KnownBucket(bucket) {
		return ErrUnknownBucket
	}

	// Deletion is strictly owner-only. Trainers get no exemption here.
	if !ownsPath(caller.ID, path) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, bucket, path); err != nil {
		return err
	}

	s.logger.Info().Str("bucket", bucket).Str("path", path).Str("user_id", caller.ID).Msg("object removed")

	return nil
}
