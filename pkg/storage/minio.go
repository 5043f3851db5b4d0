package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Bucket names partition storage by purpose. Videos and attachments are
// private; avatars are served from a public bucket.
const (
	BucketSubmissionVideos   = "submission-videos"
	BucketTrainerAttachments = "trainer-attachments"
	BucketProfileAvatars     = "profile-avatars"
)

// KnownBucket reports whether the name is one of the three managed buckets.
func KnownBucket(name string) bool {
	switch name {
	case BucketSubmissionVideos, BucketTrainerAttachments, BucketProfileAvatars:
		return true
	default:
		return false
	}
}

// Config contains credentials required to talk to the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// PublicEndpoint, when set, is used to build public URLs instead of
	// Endpoint (e.g. a CDN hostname in front of the store).
	PublicEndpoint string
}

// Client wraps the MinIO SDK with the gateway operations the API needs.
type Client struct {
	mc             *minio.Client
	publicEndpoint string
	useSSL         bool
	logger         zerolog.Logger
}

// New constructs a storage client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	publicEndpoint := cfg.PublicEndpoint
	if publicEndpoint == "" {
		publicEndpoint = cfg.Endpoint
	}

	return &Client{
		mc:             mc,
		publicEndpoint: publicEndpoint,
		useSSL:         cfg.UseSSL,
		logger:         logger.With().Str("component", "storage").Logger(),
	}, nil
}

// EnsureBuckets creates the three managed buckets when absent and marks the
// avatar bucket world-readable.
func (c *Client) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{BucketSubmissionVideos, BucketTrainerAttachments, BucketProfileAvatars} {
		exists, err := c.mc.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}

		if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		c.logger.Info().Str("bucket", bucket).Msg("bucket created")
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, BucketProfileAvatars)
	if err := c.mc.SetBucketPolicy(ctx, BucketProfileAvatars, policy); err != nil {
		return fmt.Errorf("failed to set avatar bucket policy: %w", err)
	}

	return nil
}

// Upload stores an object under the given bucket and path.
func (c *Client) Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error {
	_, err := c.mc.PutObject(ctx, bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}

	c.logger.Info().Str("bucket", bucket).Str("path", path).Int64("size", size).Msg("object stored")

	return nil
}

// SignedURL mints a time-limited read URL for a private object.
func (c *Client) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	signed, err := c.mc.PresignedGetObject(ctx, bucket, path, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to sign read url: %w", err)
	}

	return signed.String(), nil
}

// SignedUploadURL mints a time-limited write URL so a client can upload
// directly to storage without passing the payload through the API.
func (c *Client) SignedUploadURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	signed, err := c.mc.PresignedPutObject(ctx, bucket, path, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign upload url: %w", err)
	}

	return signed.String(), nil
}

// PublicURL returns the durable URL of an object in a public bucket.
func (c *Client) PublicURL(bucket, path string) string {
	scheme := "http"
	if c.useSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.publicEndpoint, bucket, path)
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, bucket, path string) error {
	if err := c.mc.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	c.logger.Info().Str("bucket", bucket).Str("path", path).Msg("object deleted")

	return nil
}
