// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storage keeps uploaded avatar images in an S3-compatible bucket
// (MinIO in development) and hands back their public URL.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectAPI is the slice of [*minio.Client] the store needs; tests fake it.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader *bytes.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// minioClientWrapper adapts *minio.Client to objectAPI.
type minioClientWrapper struct{ client *minio.Client }

func (wrapper minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return wrapper.client.BucketExists(ctx, bucketName)
}

func (wrapper minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return wrapper.client.MakeBucket(ctx, bucketName, opts)
}

func (wrapper minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader *bytes.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return wrapper.client.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (wrapper minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return wrapper.client.RemoveObject(ctx, bucketName, objectName, opts)
}

// Config describes the bucket and how its objects are reached publicly.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL prefixes object keys in returned URLs. Defaults to the
	// endpoint's bucket URL.
	PublicURL string
}

// AvatarStore uploads avatar images.
type AvatarStore struct {
	api       objectAPI
	bucket    string
	publicURL string
}

// NewAvatarStore connects to the configured endpoint and ensures the bucket exists.
func NewAvatarStore(ctx context.Context, config Config) (*AvatarStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage_client_failed: %w", err)
	}

	publicURL := config.PublicURL
	if publicURL == "" {
		scheme := "http"
		if config.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, config.Endpoint, config.Bucket)
	}

	return NewAvatarStoreWithAPI(ctx, minioClientWrapper{client: client}, config.Bucket, publicURL)
}

// NewAvatarStoreWithAPI allows injecting a fake object API (used in tests).
func NewAvatarStoreWithAPI(ctx context.Context, api objectAPI, bucket, publicURL string) (*AvatarStore, error) {
	store := &AvatarStore{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}

	if err := store.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("ensure_bucket_failed: %w", err)
	}

	return store, nil
}

func (store *AvatarStore) ensureBucketExists(ctx context.Context) error {
	exists, err := store.api.BucketExists(ctx, store.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return store.api.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{})
}

// Put stores data under key and returns its public URL.
func (store *AvatarStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := store.api.PutObject(ctx, store.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("put_object_failed: %w", err)
	}
	return store.URL(key), nil
}

// Delete removes the object stored under key.
func (store *AvatarStore) Delete(ctx context.Context, key string) error {
	if err := store.api.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove_object_failed: %w", err)
	}
	return nil
}

// URL returns the public URL of key.
func (store *AvatarStore) URL(key string) string {
	return store.publicURL + "/" + key
}

// KeyFromURL returns the object key for a URL produced by this store.
func (store *AvatarStore) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, store.publicURL+"/")
}
