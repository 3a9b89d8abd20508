package importer

import (
	"bytes"
	"context"
	"fmt"

	"dealflow_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOArchiver keeps a copy of imported source files in object storage.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver connects to the configured object store and ensures the
// bucket exists.
func NewMinIOArchiver(ctx context.Context, cfg config.ArchiveStorageConfig) (*MinIOArchiver, error) {
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	bucket := cfg.GetMinIOBucketDealFiles()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIOArchiver{client: client, bucket: bucket}, nil
}

// Archive uploads one source file under its base name.
func (a *MinIOArchiver) Archive(ctx context.Context, name string, data []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/markdown",
	})
	return err
}
