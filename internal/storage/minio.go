package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
)

type MinIOStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinIOStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	info, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("minio_put_failed", err, map[string]interface{}{
			"object_name":  key,
			"content_type": contentType,
			"bucket":       m.bucket,
		})
		return err
	}
	logger.Info("minio_put_success", map[string]interface{}{
		"object_name": key,
		"size":        info.Size,
		"bucket":      m.bucket,
	})
	return nil
}

func (m *MinIOStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	stat, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		logger.Error("minio_stat_failed", err, map[string]interface{}{
			"object_name": key,
			"bucket":      m.bucket,
		})
		return nil, err
	}
	info := toObjectInfo(stat)
	return &info, nil
}

func (m *MinIOStore) Get(ctx context.Context, key string) (*Object, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		logger.Error("minio_download_failed", err, map[string]interface{}{
			"object_name": key,
			"bucket":      m.bucket,
		})
		return nil, err
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		logger.Error("minio_download_stat_failed", err, map[string]interface{}{
			"object_name": key,
			"bucket":      m.bucket,
		})
		return nil, err
	}
	return &Object{Info: toObjectInfo(stat), Body: obj}, nil
}

func (m *MinIOStore) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Error("minio_delete_failed", err, map[string]interface{}{
			"object_name": key,
			"bucket":      m.bucket,
		})
		return err
	}
	logger.Info("minio_delete_success", map[string]interface{}{
		"object_name": key,
		"bucket":      m.bucket,
	})
	return nil
}

// ListPage reads at most limit keys after cursor. One extra key is requested
// to learn whether the listing is truncated; the listing goroutine is stopped
// by cancelling its context.
func (m *MinIOStore) ListPage(ctx context.Context, prefix, cursor string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = 1000
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := m.client.ListObjects(listCtx, m.bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: cursor,
		Recursive:  true,
		MaxKeys:    limit + 1,
	})

	page := &Page{Objects: make([]ObjectInfo, 0, limit)}
	for obj := range objects {
		if obj.Err != nil {
			logger.Error("minio_list_failed", obj.Err, map[string]interface{}{
				"prefix": prefix,
				"bucket": m.bucket,
			})
			return nil, obj.Err
		}
		if len(page.Objects) == limit {
			page.Truncated = true
			break
		}
		page.Objects = append(page.Objects, toObjectInfo(obj))
	}

	if page.Truncated {
		page.Cursor = page.Objects[len(page.Objects)-1].Key
	}
	return page, nil
}

func (m *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", m.bucket, err)
	}
	return nil
}

func toObjectInfo(obj minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          obj.Key,
		Size:         obj.Size,
		ETag:         obj.ETag,
		ContentType:  obj.ContentType,
		LastModified: obj.LastModified,
	}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
