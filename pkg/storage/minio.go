package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JaimeStill/depot/pkg/lifecycle"
)

type minioStore struct {
	client     *minio.Client
	bucket     string
	region     string
	publicBase string
	logger     *slog.Logger
}

func newMinio(cfg *Config, logger *slog.Logger) (System, error) {
	host, secure := minioHost(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(host, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &minioStore{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		publicBase: cfg.PublicBase,
		logger:     logger.With("system", "storage", "provider", ProviderMinio),
	}, nil
}

// minioHost accepts either host:port or a full URL. A URL scheme overrides useSSL.
func minioHost(endpoint string, useSSL bool) (string, bool) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, useSSL
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https"
}

func (m *minioStore) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting storage system", "bucket", m.bucket)

	lc.OnStartup(func() {
		ctx := lc.Context()

		exists, err := m.client.BucketExists(ctx, m.bucket)
		if err != nil {
			m.logger.Error("storage bucket check failed", "error", err)
			return
		}
		if !exists {
			if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
				m.logger.Error("storage bucket creation failed", "error", err)
				return
			}
			m.logger.Info("created storage bucket", "bucket", m.bucket)
		}

		m.logger.Info("storage bucket ready", "bucket", m.bucket)
	})

	return nil
}

func (m *minioStore) Put(ctx context.Context, in PutInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	_, err := m.client.PutObject(ctx, in.Bucket, in.Key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", in.Key, err)
	}

	if m.publicBase != "" {
		return joinURL(m.publicBase, escapeKey(in.Key)), nil
	}
	return joinURL(m.client.EndpointURL().String(), in.Bucket, escapeKey(in.Key)), nil
}

func (m *minioStore) Provider() string { return ProviderMinio }

func (m *minioStore) Bucket() string { return m.bucket }
