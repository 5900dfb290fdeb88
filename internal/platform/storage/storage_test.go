// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjects implements objectAPI for testing without network.
type fakeObjects struct {
	bucketExists    bool
	bucketExistsErr error
	madeBucket      bool

	putErr      error
	putKey      string
	putBody     []byte
	contentType string

	removed []string
}

func (fake *fakeObjects) BucketExists(_ context.Context, _ string) (bool, error) {
	return fake.bucketExists, fake.bucketExistsErr
}

func (fake *fakeObjects) MakeBucket(_ context.Context, _ string, _ minio.MakeBucketOptions) error {
	fake.madeBucket = true
	return nil
}

func (fake *fakeObjects) PutObject(_ context.Context, _ string, key string, reader *bytes.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if fake.putErr != nil {
		return minio.UploadInfo{}, fake.putErr
	}
	fake.putKey = key
	fake.putBody, _ = io.ReadAll(reader)
	fake.contentType = opts.ContentType
	return minio.UploadInfo{Key: key}, nil
}

func (fake *fakeObjects) RemoveObject(_ context.Context, _ string, key string, _ minio.RemoveObjectOptions) error {
	fake.removed = append(fake.removed, key)
	return nil
}

func TestNewAvatarStore_CreatesMissingBucket(t *testing.T) {
	api := &fakeObjects{bucketExists: false}
	_, err := NewAvatarStoreWithAPI(context.Background(), api, "avatars", "https://cdn.yomira.app/avatars/")
	require.NoError(t, err)
	assert.True(t, api.madeBucket)
}

func TestNewAvatarStore_BucketCheckFails(t *testing.T) {
	api := &fakeObjects{bucketExistsErr: errors.New("boom")}
	store, err := NewAvatarStoreWithAPI(context.Background(), api, "avatars", "https://cdn.yomira.app")
	assert.Nil(t, store)
	assert.ErrorContains(t, err, "ensure_bucket_failed")
}

func TestAvatarStore_PutAndDelete(t *testing.T) {
	api := &fakeObjects{bucketExists: true}
	store, err := NewAvatarStoreWithAPI(context.Background(), api, "avatars", "https://cdn.yomira.app/avatars/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "u1/a.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.yomira.app/avatars/u1/a.png", url)
	assert.Equal(t, "u1/a.png", api.putKey)
	assert.Equal(t, []byte{1, 2, 3}, api.putBody)
	assert.Equal(t, "image/png", api.contentType)

	key, ok := store.KeyFromURL(url)
	require.True(t, ok)
	require.NoError(t, store.Delete(context.Background(), key))
	assert.Equal(t, []string{"u1/a.png"}, api.removed)

	_, ok = store.KeyFromURL("https://elsewhere.example/a.png")
	assert.False(t, ok)
}

func TestAvatarStore_PutFails(t *testing.T) {
	api := &fakeObjects{bucketExists: true, putErr: errors.New("denied")}
	store, err := NewAvatarStoreWithAPI(context.Background(), api, "avatars", "https://cdn.yomira.app")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "k", "image/png", []byte{1})
	assert.ErrorContains(t, err, "put_object_failed")
}
