package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	content      []byte
	contentType  string
	etag         string
	lastModified time.Time
}

// MemoryStore keeps objects in process memory. It backs local development
// (STORAGE_BACKEND=memory) and the test suites.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*memoryObject

	// DeleteHook, when set, runs before every delete and aborts it on error.
	DeleteHook func(key string) error
	// PutHook, when set, may replace the stored body, e.g. to simulate a
	// store that reports a different size than the client sent.
	PutHook func(key string, content []byte) []byte

	listCalls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*memoryObject)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if s.PutHook != nil {
		content = s.PutHook(key, content)
	}

	sum := md5.Sum(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = &memoryObject{
		content:      content,
		contentType:  contentType,
		etag:         hex.EncodeToString(sum[:]),
		lastModified: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	info := obj.info(key)
	return &info, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &Object{
		Info: obj.info(key),
		Body: io.NopCloser(bytes.NewReader(obj.content)),
	}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.DeleteHook != nil {
		if err := s.DeleteHook(key); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) ListPage(ctx context.Context, prefix, cursor string, limit int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1000
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	keys := make([]string, 0)
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) && key > cursor {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := &Page{}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Truncated = true
		page.Cursor = keys[len(keys)-1]
	}
	page.Objects = make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		page.Objects = append(page.Objects, s.objects[key].info(key))
	}
	return page, nil
}

// Len reports how many objects share the prefix.
func (s *MemoryStore) Len(prefix string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}
	return count
}

func (s *MemoryStore) ListCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCalls
}

func (o *memoryObject) info(key string) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(o.content)),
		ETag:         o.etag,
		ContentType:  o.contentType,
		LastModified: o.lastModified,
	}
}
