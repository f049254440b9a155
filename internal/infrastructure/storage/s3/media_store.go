package s3

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/clipstream/accounts-api/internal/core/ports"
)

// Config captures the settings for the media object store.
type Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the AWS endpoint for S3-compatible stores (MinIO).
	Endpoint string
	// PublicBaseURL is the prefix of publicly served object URLs, e.g.
	// https://media.example.com or the bucket website endpoint.
	PublicBaseURL string
}

// MediaStore uploads user media to an S3 bucket and returns public URLs.
type MediaStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// New builds the S3 client once at startup from static credentials.
func New(ctx context.Context, cfg Config) (*MediaStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &MediaStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores the file under a random key and returns its public URL.
func (m *MediaStore) Upload(ctx context.Context, kind ports.MediaKind, file *ports.FileUpload) (string, error) {
	key := objectKey(kind, file.Filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   file.Content,
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	if _, err := m.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return m.publicBaseURL + "/" + key, nil
}

// objectKey builds a collision-free key: <kind>/<yyyy>/<mm>/<uuid><ext>.
func objectKey(kind ports.MediaKind, filename string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%s%s", kind, now.Year(), now.Month(), uuid.New(), path.Ext(filename))
}
