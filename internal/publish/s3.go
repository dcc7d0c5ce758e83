package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds configuration for S3Publisher.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string // Optional custom endpoint (MinIO, LocalStack)
	Prefix       string // Optional key prefix, e.g. "congress/"
	CacheControl string // Optional Cache-Control header for the objects
}

// putObjectAPI is the subset of *s3.Client used by S3Publisher.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads objects to an S3 bucket under a fixed prefix.
type S3Publisher struct {
	client putObjectAPI
	cfg    S3Config
}

// NewS3Publisher loads the default AWS config chain and builds an S3 client.
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 publisher: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	})
	return newS3Publisher(client, cfg), nil
}

func newS3Publisher(client putObjectAPI, cfg S3Config) *S3Publisher {
	return &S3Publisher{client: client, cfg: cfg}
}

// Publish implements Publisher. Returns an s3:// URI.
func (p *S3Publisher) Publish(ctx context.Context, obj Object) (string, error) {
	if obj.Name == "" {
		return "", ErrInvalidObject
	}

	key := p.cfg.Prefix + obj.Name
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(obj.Data),
		ContentType: aws.String(contentType),
	}
	if p.cfg.CacheControl != "" {
		input.CacheControl = aws.String(p.cfg.CacheControl)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put failed for %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.cfg.Bucket, key), nil
}

var _ Publisher = (*S3Publisher)(nil)
