package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/metrics"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/photos"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/storage"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
)

type PhotoService struct {
	Accounts *AccountService
	Store    storage.ObjectStore
	Prefix   string
	PageSize int
	MaxPages int
}

func NewPhotoService(accounts *AccountService, store storage.ObjectStore, prefix string, pageSize, maxPages int) *PhotoService {
	return &PhotoService{
		Accounts: accounts,
		Store:    store,
		Prefix:   prefix,
		PageSize: pageSize,
		MaxPages: maxPages,
	}
}

type UploadResult struct {
	Size      int64
	Duplicate bool
}

// ValidateUpload checks the request shape before anything touches an account
// or the object store.
func ValidateUpload(contentType, filename string) error {
	if contentType != photos.ContentType {
		return ErrInvalidContentType
	}
	if !photos.ValidFilename(filename) {
		return ErrInvalidFilename
	}
	return nil
}

func (s *PhotoService) key(accountID, filename string) string {
	return photos.ObjectKey(s.Prefix, accountID, filename)
}

// Upload stores body as filename for account and charges its quota. The size
// charged is the one the store reports after the write, never size.
func (s *PhotoService) Upload(ctx context.Context, account *models.Account, filename, contentType string, body io.Reader, size int64) (*UploadResult, error) {
	if err := ValidateUpload(contentType, filename); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if !account.Settings.EnableSync {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrSyncDisabled
	}
	if account.Used >= account.Storage {
		metrics.UploadsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, ErrQuotaExceeded
	}

	key := s.key(account.ID, filename)

	if _, err := s.Store.Head(ctx, key); err == nil {
		metrics.UploadsTotal.WithLabelValues("duplicate").Inc()
		logger.WarnWithUser(account.ID, "photo_upload_duplicate", map[string]interface{}{
			"filename": filename,
		})
		return &UploadResult{Duplicate: true}, nil
	} else if !errors.Is(err, storage.ErrObjectNotFound) {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("check existing photo: %w", err)
	}

	if err := s.Store.Put(ctx, key, body, size, photos.ContentType); err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("store photo: %w", err)
	}

	info, err := s.Store.Head(ctx, key)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("stat stored photo: %w", err)
	}

	if account.Used+info.Size >= account.Storage {
		if err := s.Store.Delete(ctx, key); err != nil {
			metrics.UploadsTotal.WithLabelValues("failed").Inc()
			logger.ErrorWithUser(account.ID, "photo_rollback_failed", err, map[string]interface{}{
				"filename": filename,
				"size":     info.Size,
			})
			return nil, ErrInconsistentState
		}
		metrics.UploadsTotal.WithLabelValues("rolled_back").Inc()
		logger.WarnWithUser(account.ID, "photo_upload_over_quota", map[string]interface{}{
			"filename": filename,
			"size":     info.Size,
			"used":     account.Used,
			"storage":  account.Storage,
		})
		return nil, ErrQuotaExceeded
	}

	if err := s.Accounts.AdjustUsed(ctx, account.ID, info.Size); err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("charge quota: %w", err)
	}
	account.Used += info.Size

	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	metrics.UploadedBytesTotal.Add(float64(info.Size))
	logger.InfoWithUser(account.ID, "photo_uploaded", map[string]interface{}{
		"filename": filename,
		"size":     info.Size,
	})

	return &UploadResult{Size: info.Size}, nil
}

// List returns the bare filenames of every photo account owns.
func (s *PhotoService) List(ctx context.Context, account *models.Account) ([]string, error) {
	objects, err := storage.ListAll(ctx, s.Store, photos.AccountPrefix(s.Prefix, account.ID), s.PageSize, s.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		names = append(names, photos.BaseName(obj.Key))
	}
	return names, nil
}

func (s *PhotoService) Exists(ctx context.Context, account *models.Account, filename string) (bool, error) {
	if !photos.ValidFilename(filename) {
		return false, ErrInvalidFilename
	}
	return s.exists(ctx, account.ID, filename)
}

func (s *PhotoService) exists(ctx context.Context, ownerID, filename string) (bool, error) {
	_, err := s.Store.Head(ctx, s.key(ownerID, filename))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("stat photo: %w", err)
}

// Open returns the photo body; the caller must close it.
func (s *PhotoService) Open(ctx context.Context, account *models.Account, filename string) (*storage.Object, error) {
	if !photos.ValidFilename(filename) {
		return nil, ErrInvalidFilename
	}
	return s.open(ctx, account.ID, filename)
}

func (s *PhotoService) open(ctx context.Context, ownerID, filename string) (*storage.Object, error) {
	obj, err := s.Store.Get(ctx, s.key(ownerID, filename))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("open photo: %w", err)
	}
	return obj, nil
}

// Delete removes one photo and refunds the size recorded by the store.
func (s *PhotoService) Delete(ctx context.Context, account *models.Account, filename string) error {
	if !photos.ValidFilename(filename) {
		return ErrInvalidFilename
	}

	key := s.key(account.ID, filename)
	info, err := s.Store.Head(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("stat photo: %w", err)
	}

	if err := s.Store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if err := s.Accounts.AdjustUsed(ctx, account.ID, -info.Size); err != nil {
		return fmt.Errorf("refund quota: %w", err)
	}
	account.Used -= info.Size

	metrics.DeletesTotal.Inc()
	logger.InfoWithUser(account.ID, "photo_deleted", map[string]interface{}{
		"filename": filename,
		"size":     info.Size,
	})
	return nil
}

// Reset zeroes usage, disables sync and then deletes every photo of account.
// Counters are reset first, so a failure part way through leaves some photos
// behind with nothing charged for them.
func (s *PhotoService) Reset(ctx context.Context, account *models.Account) (int, error) {
	if err := s.Accounts.ResetUsage(ctx, account); err != nil {
		return 0, err
	}

	pager := storage.NewPager(s.Store, photos.AccountPrefix(s.Prefix, account.ID), s.PageSize, s.MaxPages)
	deleted := 0
	for !pager.Done() {
		objects, err := pager.Next(ctx)
		if err != nil {
			return deleted, fmt.Errorf("list photos: %w", err)
		}
		for _, obj := range objects {
			if err := s.Store.Delete(ctx, obj.Key); err != nil {
				logger.ErrorWithUser(account.ID, "account_reset_partial", err, map[string]interface{}{
					"deleted": deleted,
					"key":     obj.Key,
				})
				return deleted, fmt.Errorf("delete photo: %w", err)
			}
			deleted++
			metrics.DeletesTotal.Inc()
		}
	}

	logger.InfoWithUser(account.ID, "account_reset", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}
