package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/depot/pkg/lifecycle"
)

type azure struct {
	client     *azblob.Client
	container  string
	publicBase string
	logger     *slog.Logger
}

// newAzure prefers a connection string and otherwise authenticates against
// AccountURL with the default Azure credential chain.
func newAzure(cfg *Config, logger *slog.Logger) (System, error) {
	var (
		client *azblob.Client
		err    error
	)

	if cfg.ConnectionString != "" {
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	} else {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("create azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(cfg.AccountURL, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:     client,
		container:  cfg.Bucket,
		publicBase: cfg.PublicBase,
		logger:     logger.With("system", "storage", "provider", ProviderAzure),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system", "container", a.container)

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Put(ctx context.Context, in PutInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	opts := &azblob.UploadStreamOptions{}
	if in.ContentType != "" {
		contentType := in.ContentType
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}

	if _, err := a.client.UploadStream(ctx, in.Bucket, in.Key, in.Body, opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", in.Key, err)
	}

	if a.publicBase != "" {
		return joinURL(a.publicBase, escapeKey(in.Key)), nil
	}
	return a.client.ServiceClient().NewContainerClient(in.Bucket).NewBlobClient(in.Key).URL(), nil
}

func (a *azure) Provider() string { return ProviderAzure }

func (a *azure) Bucket() string { return a.container }
