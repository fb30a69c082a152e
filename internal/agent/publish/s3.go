package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// S3Config holds the shared-storage connection settings. BaseEndpoint should
// point at the MinIO/S3 endpoint of the data marketplace.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// S3Publisher uploads payloads to an S3-compatible bucket.
type S3Publisher struct {
	client *s3.Client
	bucket string
}

// NewS3Publisher builds the client from static credentials.
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
	})

	return &S3Publisher{client: client, bucket: cfg.Bucket}, nil
}

func (p *S3Publisher) Publish(ctx context.Context, day models.Day, payload []byte) (string, error) {
	key, err := StorageKey(day)
	if err != nil {
		return "", err
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put payload %s: %w", key, err)
	}
	return key, nil
}
