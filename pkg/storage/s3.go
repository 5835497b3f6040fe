package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JaimeStill/depot/pkg/lifecycle"
)

// S3API is the subset of the S3 client used by the s3 backend.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type s3Store struct {
	client     S3API
	bucket     string
	region     string
	endpoint   string
	publicBase string
	logger     *slog.Logger
}

// NewS3 wraps an existing S3 client. New uses it after loading the shared
// AWS configuration.
func NewS3(client S3API, cfg *Config, logger *slog.Logger) System {
	return &s3Store{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		endpoint:   cfg.Endpoint,
		publicBase: cfg.PublicBase,
		logger:     logger.With("system", "storage", "provider", ProviderS3),
	}
}

func newS3(cfg *Config, logger *slog.Logger) (System, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, awsconfig.WithSharedCredentialsFiles([]string{cfg.CredentialsFile}))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3(client, cfg, logger), nil
}

func (s *s3Store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system", "bucket", s.bucket, "region", s.region)

	lc.OnStartup(func() {
		_, err := s.client.HeadBucket(lc.Context(), &s3.HeadBucketInput{
			Bucket: aws.String(s.bucket),
		})
		if err != nil {
			s.logger.Warn("storage bucket check failed", "bucket", s.bucket, "error", err)
			return
		}
		s.logger.Info("storage bucket ready", "bucket", s.bucket)
	})

	return nil
}

func (s *s3Store) Put(ctx context.Context, in PutInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
		Body:   in.Body,
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", in.Key, err)
	}

	return s.objectURL(in.Bucket, in.Key), nil
}

func (s *s3Store) Provider() string { return ProviderS3 }

func (s *s3Store) Bucket() string { return s.bucket }

// objectURL mirrors the URL S3 reports for a put: virtual-hosted style on
// AWS, path style against a custom endpoint.
func (s *s3Store) objectURL(bucket, key string) string {
	switch {
	case s.publicBase != "":
		return joinURL(s.publicBase, escapeKey(key))
	case s.endpoint != "":
		return joinURL(s.endpoint, bucket, escapeKey(key))
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, escapeKey(key))
	}
}
