package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/database"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/metrics"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/photos"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/storage"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SharingService decides who may discover whom by share code and who may see
// which photo. A grant is stored on the account allowed to view the photo.
type SharingService struct {
	DB       *database.Handle
	Accounts *AccountService
	Photos   *PhotoService
}

func NewSharingService(db *database.Handle, accounts *AccountService, photoService *PhotoService) *SharingService {
	return &SharingService{DB: db, Accounts: accounts, Photos: photoService}
}

func ownCode(account *models.Account, code string) bool {
	return account.ShareCode != nil && *account.ShareCode == code
}

// ResolveByCode finds the account behind code on behalf of requester. A
// target that blocked the requester is reported exactly like a missing one.
func (s *SharingService) ResolveByCode(ctx context.Context, requester *models.Account, code string) (*models.Account, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if ownCode(requester, code) {
		return nil, ErrUserNotFound
	}

	target, err := s.Accounts.FindByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if target.ID == requester.ID {
		return nil, ErrUserNotFound
	}

	blocked, err := s.isBlocked(ctx, target.ID, requester.ID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrUserNotFound
	}
	return target, nil
}

func (s *SharingService) isBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&models.Block{}).
		Where("account_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return count > 0, nil
}

// GrantShare lets the owner of code view one of grantor's photos.
func (s *SharingService) GrantShare(ctx context.Context, grantor *models.Account, code, photo string) (*models.ShareGrant, error) {
	grant, err := s.grantShare(ctx, grantor, code, photo)
	switch {
	case err == nil:
		metrics.SharesTotal.WithLabelValues("granted").Inc()
	case errors.Is(err, ErrDuplicateShare):
		metrics.SharesTotal.WithLabelValues("duplicate").Inc()
	default:
		metrics.SharesTotal.WithLabelValues("rejected").Inc()
	}
	return grant, err
}

func (s *SharingService) grantShare(ctx context.Context, grantor *models.Account, code, photo string) (*models.ShareGrant, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if ownCode(grantor, code) {
		return nil, ErrSelfShare
	}
	if !photos.ValidFilename(photo) {
		return nil, ErrInvalidFilename
	}

	owned, err := s.Photos.exists(ctx, grantor.ID, photo)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPhotoNotFound
	}

	target, err := s.ResolveByCode(ctx, grantor, code)
	if err != nil {
		return nil, err
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	grant := models.ShareGrant{AccountID: target.ID, UserID: grantor.ID, Photo: photo}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
	if result.Error != nil {
		return nil, fmt.Errorf("create share: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrDuplicateShare
	}

	logger.InfoWithUser(grantor.ID, "photo_shared", map[string]interface{}{
		"photo":    photo,
		"grantee":  target.ID,
		"grant_id": grant.ID,
	})
	return &grant, nil
}

// ListShares returns the grants requester holds, oldest first.
func (s *SharingService) ListShares(ctx context.Context, requester *models.Account) ([]models.ShareGrant, error) {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	shares := make([]models.ShareGrant, 0)
	if err := db.Where("account_id = ?", requester.ID).Order("id ASC").Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}

// RevokeShare withdraws a grant grantor gave to the owner of code. Blocks do
// not stop a grantor from revoking.
func (s *SharingService) RevokeShare(ctx context.Context, grantor *models.Account, code, photo string) error {
	if code == "" {
		return ErrMissingCode
	}
	if !photos.ValidFilename(photo) {
		return ErrInvalidFilename
	}

	target, err := s.Accounts.FindByShareCode(ctx, code)
	if err != nil {
		return err
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return err
	}

	result := db.Where("account_id = ? AND user_id = ? AND photo = ?", target.ID, grantor.ID, photo).
		Delete(&models.ShareGrant{})
	if result.Error != nil {
		return fmt.Errorf("revoke share: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}

	metrics.SharesTotal.WithLabelValues("revoked").Inc()
	logger.InfoWithUser(grantor.ID, "photo_share_revoked", map[string]interface{}{
		"photo":   photo,
		"grantee": target.ID,
	})
	return nil
}

// OpenSharedPhoto returns a photo owned by ownerID that viewer holds a grant
// for. Missing grants, blocks and missing photos all look the same.
func (s *SharingService) OpenSharedPhoto(ctx context.Context, viewer *models.Account, ownerID, photo string) (*storage.Object, error) {
	if ownerID == "" {
		return nil, ErrUserNotFound
	}
	if !photos.ValidFilename(photo) {
		return nil, ErrInvalidFilename
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	var grant models.ShareGrant
	if err := db.Where("account_id = ? AND user_id = ? AND photo = ?", viewer.ID, ownerID, photo).
		First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("load share: %w", err)
	}

	blocked, err := s.isBlocked(ctx, ownerID, viewer.ID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrPhotoNotFound
	}

	return s.Photos.open(ctx, ownerID, photo)
}

// Block stops userID from resolving account's share code or being granted
// anything through it. Blocking twice is not an error.
func (s *SharingService) Block(ctx context.Context, account *models.Account, userID string) error {
	if userID == "" {
		return ErrUserNotFound
	}
	if userID == account.ID {
		return ErrSelfBlock
	}
	if _, err := s.Accounts.FindByID(ctx, userID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return err
	}

	block := models.Block{AccountID: account.ID, BlockedID: userID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&block).Error; err != nil {
		return fmt.Errorf("create block: %w", err)
	}

	logger.InfoWithUser(account.ID, "account_blocked", map[string]interface{}{
		"blocked": userID,
	})
	return nil
}

func (s *SharingService) Unblock(ctx context.Context, account *models.Account, userID string) error {
	if userID == "" {
		return ErrUserNotFound
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("account_id = ? AND blocked_id = ?", account.ID, userID).
		Delete(&models.Block{}).Error; err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

func (s *SharingService) ListBlocks(ctx context.Context, account *models.Account) ([]string, error) {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	if err := db.Model(&models.Block{}).
		Where("account_id = ?", account.ID).
		Order("id ASC").
		Pluck("blocked_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return ids, nil
}
