package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/terravia/terravia-backend/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage implements ports.ObjectStorage on a MinIO/S3 bucket. When a public
// base URL is configured (e.g. a CDN in front of the bucket) uploaded objects
// resolve against it, otherwise against the MinIO endpoint itself.
type Storage struct {
	client     *minio.Client
	publicBase string
	useSSL     bool
}

func NewStorage(client *minio.Client, publicBaseURL string, useSSL bool) *Storage {
	return &Storage{
		client:     client,
		publicBase: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		useSSL:     useSSL,
	}
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.publicURL(bucket, objectName), nil
}

func (s *Storage) publicURL(bucket, objectName string) string {
	key := strings.TrimLeft(objectName, "/")
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, bucket, key)
}

var _ ports.ObjectStorage = (*Storage)(nil)
