package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

type Object struct {
	Info ObjectInfo
	Body io.ReadCloser
}

// Page is one slice of a prefix listing. Cursor resumes the listing after the
// last returned key and is only meaningful while Truncated is set.
type Page struct {
	Objects   []ObjectInfo
	Cursor    string
	Truncated bool
}

// ObjectStore is the blob store photos are kept in. Missing keys are reported
// as ErrObjectNotFound by Head and Get.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	ListPage(ctx context.Context, prefix, cursor string, limit int) (*Page, error)
}
