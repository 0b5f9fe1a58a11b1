package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/echobridge/relay-backend/config"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
	log "github.com/echobridge/relay-backend/pkg/logger"
)

// MinioI is the interface for blob store operations used by the pipeline.
type MinioI interface {
	// UploadFile pushes a local file to the bucket under objectKey.
	UploadFile(ctx context.Context, localPath string, objectKey string, contentType string) error
	// GetPresignedURLForDownload creates a time-bounded, credential-free URL
	// granting read access to one object.
	GetPresignedURLForDownload(ctx context.Context, objectKey string, expiration time.Duration) (*url.URL, error)
	// DeleteFile removes an object from the bucket.
	DeleteFile(ctx context.Context, objectKey string) error
}

type Minio struct {
	client *minio.Client
	bucket string
}

// NewMinioClientAndInitBucket connects to the blob store and makes sure the
// configured bucket exists.
func NewMinioClientAndInitBucket(ctx context.Context) (*Minio, error) {
	cfg := config.Config.Minio
	logger, err := log.GetZapLogger(ctx)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Host+":"+cfg.Port, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.RootUser, cfg.RootPwd, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		logger.Error("cannot connect to minio",
			zap.String("host:port", cfg.Host+":"+cfg.Port),
			zap.String("user", cfg.RootUser),
			zap.Error(err))
		return nil, err
	}

	err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{})
	if err != nil {
		// Check if the bucket already exists
		exists, errBucketExists := client.BucketExists(ctx, cfg.BucketName)
		if errBucketExists == nil && exists {
			logger.Info("Bucket already exists", zap.String("bucket", cfg.BucketName))
		} else {
			logger.Fatal(err.Error(), zap.Error(err))
		}
	} else {
		logger.Info("Successfully created bucket", zap.String("bucket", cfg.BucketName))
	}

	return &Minio{client: client, bucket: cfg.BucketName}, nil
}

// UploadFile pushes the file at localPath to the bucket under objectKey.
func (m *Minio) UploadFile(ctx context.Context, localPath string, objectKey string, contentType string) error {
	logger, err := log.GetZapLogger(ctx)
	if err != nil {
		return err
	}

	_, err = m.client.FPutObject(ctx, m.bucket, objectKey, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload file to MinIO", zap.String("objectKey", objectKey), zap.Error(err))
		return fmt.Errorf("%w: %v", errorsx.ErrUpload, err)
	}

	return nil
}

// GetPresignedURLForDownload creates a presigned URL for downloading an object.
func (m *Minio) GetPresignedURLForDownload(ctx context.Context, objectKey string, expiration time.Duration) (*url.URL, error) {
	logger, err := log.GetZapLogger(ctx)
	if err != nil {
		return nil, err
	}

	// check if the expiration is within the range of 1sec to 7 days.
	if expiration > time.Hour*24*7 {
		return nil, errors.New("expiration time must be within 1sec to 7 days")
	}

	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiration, url.Values{})
	if err != nil {
		logger.Error("Failed to make presigned URL for download", zap.String("objectKey", objectKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errorsx.ErrLinkIssue, err)
	}

	return presignedURL, nil
}

// DeleteFile removes the object from the bucket.
func (m *Minio) DeleteFile(ctx context.Context, objectKey string) error {
	logger, err := log.GetZapLogger(ctx)
	if err != nil {
		return err
	}

	if err := m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		logger.Error("Failed to delete file from MinIO", zap.String("objectKey", objectKey), zap.Error(err))
		return err
	}
	return nil
}
