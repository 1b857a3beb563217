package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const imagePrefix = "recipes/images"

// ImageStore persists uploaded recipe images and returns their public URL
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

var imageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>" into the raw
// image bytes and a file extension
func DecodeDataURI(uri string) ([]byte, string, error) {
	invalid := validation.New("image", "Upload a valid image.")

	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, "", invalid
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", invalid
	}
	ext, ok := imageTypes[strings.ToLower(mime)]
	if !ok {
		return nil, "", invalid
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", invalid
	}
	return data, ext, nil
}

// LocalImageStore writes images below a media root served at baseURL
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{root: root, baseURL: baseURL}
}

func (s *LocalImageStore) Save(_ context.Context, data []byte, ext string) (string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(imagePrefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	name := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + imagePrefix + "/" + name, nil
}

// ObjectPutter is the part of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images to an S3 bucket
type S3ImageStore struct {
	client ObjectPutter
	bucket string
}

func NewS3ImageStore(client ObjectPutter, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket}
}

// NewS3ImageStoreFromConfig builds an S3ImageStore from the shared AWS
// configuration chain
func NewS3ImageStoreFromConfig(ctx context.Context, cfg *config.Config) (*S3ImageStore, error) {
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewS3ImageStore(s3Config.Client, s3Config.BucketName), nil
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	key := fmt.Sprintf("%s/%s.%s", imagePrefix, uuid.NewString(), ext)
	contentType := "image/" + ext
	if ext == "jpg" {
		contentType = "image/jpeg"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

// NewImageStore selects the store configured by STORAGE_BACKEND
func NewImageStore(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3ImageStoreFromConfig(ctx, cfg)
	default:
		return NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
}
