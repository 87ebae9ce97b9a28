package s3

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mietwerk/billing-core/internal/config"
	ierr "github.com/mietwerk/billing-core/internal/errors"
)

// Service is the object storage used to mirror provider-hosted invoice
// PDFs. Deployments without an S3 bucket run with a nil Service and skip
// PDF caching.
type Service interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
}

// NewService builds the S3-backed object store, or nil when disabled
func NewService(cfg *config.Configuration) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		config: &cfg.S3,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

func (s *s3ServiceImpl) objectKey(key string) string {
	if s.config.KeyPrefix != "" {
		return s.config.KeyPrefix + "/" + key
	}
	return key
}

func (s *s3ServiceImpl) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to upload object %s", key).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}
