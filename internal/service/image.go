package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/culinario/backend/config"
	"github.com/culinario/backend/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imageKeyPrefix = "recipe-images"

// objectPutter is the part of the S3 client the image service needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService uploads recipe images to S3-compatible storage
type ImageService struct {
	client  objectPutter
	bucket  string
	urlFor  func(key string) string
	newKey  func() string
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config, log *zap.Logger, m *metrics.Metrics) *ImageService {
	return newImageService(s3Config.Client, s3Config.BucketName, s3Config.ObjectURL, log, m)
}

func newImageService(client objectPutter, bucket string, urlFor func(string) string, log *zap.Logger, m *metrics.Metrics) *ImageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{
		client:  client,
		bucket:  bucket,
		urlFor:  urlFor,
		newKey:  uuid.NewString,
		log:     log,
		metrics: m,
	}
}

// Upload reads a local file and uploads it.
func (s *ImageService) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		s.metrics.ImageUploaded(false)
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.UploadReader(ctx, f, filepath.Base(localPath), "")
}

// UploadReader uploads image data under a fresh key and returns the public
// URL. The content type is derived from filename when not given.
func (s *ImageService) UploadReader(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s%s", imageKeyPrefix, s.newKey(), ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.metrics.ImageUploaded(false)
		s.log.Error("image upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.urlFor(key)
	s.metrics.ImageUploaded(true)
	s.log.Info("uploaded recipe image", zap.String("url", url))
	return url, nil
}
