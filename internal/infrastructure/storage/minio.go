package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	"github.com/johnquangdev/cyberon-reporter/pkg/config"
)

// ReportArchive keeps a copy of every rendered report in a MinIO/S3 bucket
// and hands out presigned download links. The bucket stays private.
type ReportArchive struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL used in links when MinIO sits behind a proxy
	urlExpiry time.Duration
	logger    *zap.Logger
}

// NewReportArchive connects to the bucket, creating it when missing
func NewReportArchive(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*ReportArchive, error) {
	archive, err := newReportArchive(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	if logger != nil {
		logger.Info("✅ Report archive ready",
			zap.String("endpoint", cfg.Endpoint),
			zap.String("bucket", cfg.BucketName),
		)
	}
	return archive, nil
}

func newReportArchive(cfg *config.StorageConfig, logger *zap.Logger) (*ReportArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &ReportArchive{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		urlExpiry: cfg.URLExpiry,
		logger:    logger,
	}, nil
}

// ensureBucket ensures the bucket exists
func (a *ReportArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectKey returns reports/{user}/{yyyy-mm-dd}/{run}/{filename}
func ObjectKey(userID int64, runID uuid.UUID, filename string, at time.Time) string {
	return path.Join(
		"reports",
		strconv.FormatInt(userID, 10),
		at.UTC().Format("2006-01-02"),
		runID.String(),
		path.Base(filename),
	)
}

// Archive uploads artifact under key
func (a *ReportArchive) Archive(ctx context.Context, key string, artifact *entities.ReportArtifact) error {
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(artifact.Content), artifact.Size(), minio.PutObjectOptions{
		ContentType: artifact.ContentType,
		// Keep the Cyrillic filename for browsers that download the link
		ContentDisposition: fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(artifact.Filename)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	if a.logger != nil {
		a.logger.Debug("📦 Report archived",
			zap.String("bucket", a.bucket),
			zap.String("key", key),
			zap.Int64("size", artifact.Size()),
		)
	}
	return nil
}

// DownloadURL returns a presigned GET link for key
func (a *ReportArchive) DownloadURL(ctx context.Context, key string) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, a.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return rewriteHost(u, a.publicURL), nil
}

// Ping checks that the bucket is reachable
func (a *ReportArchive) Ping(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", a.bucket)
	}
	return nil
}

// rewriteHost swaps the internal endpoint of a presigned URL for publicURL,
// keeping path and query (which carries the signature)
func rewriteHost(u *url.URL, publicURL string) string {
	if publicURL == "" {
		return u.String()
	}
	return publicURL + u.EscapedPath() + "?" + u.RawQuery
}
