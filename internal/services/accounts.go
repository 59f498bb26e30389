package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/cache"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/database"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/identity"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"gorm.io/gorm"
)

const shareCodeAttempts = 5

type AccountService struct {
	DB     *database.Handle
	Tokens cache.TokenCache
}

func NewAccountService(db *database.Handle, tokens cache.TokenCache) *AccountService {
	if tokens == nil {
		tokens = cache.Noop{}
	}
	return &AccountService{DB: db, Tokens: tokens}
}

// EnsureAccount returns the account for profile, creating it on first sight,
// and brings username and avatar in line with the provider.
func (s *AccountService) EnsureAccount(ctx context.Context, profile identity.Profile) (*models.Account, error) {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	var account models.Account
	err = db.First(&account, "id = ?", profile.ID).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		account = models.Account{
			ID:       profile.ID,
			Username: profile.Username,
			Avatar:   profile.Avatar,
			Token:    NewSessionToken(),
		}
		if createErr := db.Create(&account).Error; createErr != nil {
			// A concurrent first login may have inserted the row already.
			if reloadErr := db.First(&account, "id = ?", profile.ID).Error; reloadErr != nil {
				return nil, fmt.Errorf("create account: %w", createErr)
			}
		} else {
			logger.InfoWithUser(account.ID, "account_created", map[string]interface{}{
				"username": account.Username,
			})
		}
	default:
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := s.syncProfile(ctx, db, &account, profile); err != nil {
		return nil, err
	}
	return &account, nil
}

// syncProfile overwrites each differing display field on its own.
func (s *AccountService) syncProfile(ctx context.Context, db *gorm.DB, account *models.Account, profile identity.Profile) error {
	if account.Username != profile.Username {
		if err := db.Model(&models.Account{}).Where("id = ?", account.ID).Update("username", profile.Username).Error; err != nil {
			return fmt.Errorf("sync username: %w", err)
		}
		account.Username = profile.Username
	}
	if account.Avatar != profile.Avatar {
		if err := db.Model(&models.Account{}).Where("id = ?", account.ID).Update("avatar", profile.Avatar).Error; err != nil {
			return fmt.Errorf("sync avatar: %w", err)
		}
		account.Avatar = profile.Avatar
	}
	return nil
}

func (s *AccountService) FindByID(ctx context.Context, id string) (*models.Account, error) {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &account, nil
}

// FindByToken authenticates a bearer token.
func (s *AccountService) FindByToken(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	if id, ok := s.Tokens.Get(ctx, token); ok {
		account, err := s.FindByID(ctx, id)
		if err == nil && account.Token == token {
			return account, nil
		}
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := db.First(&account, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load account by token: %w", err)
	}

	s.Tokens.Set(ctx, token, account.ID)
	return &account, nil
}

func (s *AccountService) FindByShareCode(ctx context.Context, code string) (*models.Account, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := db.First(&account, "share_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load account by share code: %w", err)
	}
	return &account, nil
}

// EnsureShareCode assigns a share code on first use and stores it on account.
func (s *AccountService) EnsureShareCode(ctx context.Context, account *models.Account) (string, error) {
	if account.ShareCode != nil && *account.ShareCode != "" {
		return *account.ShareCode, nil
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		code, err := NewShareCode()
		if err != nil {
			return "", err
		}

		var taken int64
		if err := db.Model(&models.Account{}).Where("share_code = ?", code).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("check share code: %w", err)
		}
		if taken > 0 {
			continue
		}

		result := db.Model(&models.Account{}).
			Where("id = ? AND share_code IS NULL", account.ID).
			Update("share_code", code)
		if result.Error != nil {
			logger.WarnWithUser(account.ID, "share_code_assign_failed", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   result.Error.Error(),
			})
			continue
		}

		if result.RowsAffected == 0 {
			// Another request assigned one first.
			fresh, err := s.FindByID(ctx, account.ID)
			if err != nil {
				return "", err
			}
			if fresh.ShareCode == nil {
				continue
			}
			account.ShareCode = fresh.ShareCode
			return *fresh.ShareCode, nil
		}

		account.ShareCode = &code
		return code, nil
	}

	return "", ErrShareCodeFailure
}

// AdjustUsed atomically adds delta (which may be negative) to the used
// counter.
func (s *AccountService) AdjustUsed(ctx context.Context, accountID string, delta int64) error {
	if delta == 0 {
		return nil
	}

	db, err := s.DB.Get(ctx)
	if err != nil {
		return err
	}

	return db.Model(&models.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("used", gorm.Expr("used + ?", delta)).Error
}

func (s *AccountService) UpdateSettings(ctx context.Context, account *models.Account, settings models.Settings) error {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("settings_enable_sync", settings.EnableSync).Error; err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	account.Settings = settings
	return nil
}

// ResetUsage zeroes used and disables sync in a single update.
func (s *AccountService) ResetUsage(ctx context.Context, account *models.Account) error {
	db, err := s.DB.Get(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"used":                 0,
			"settings_enable_sync": false,
		}).Error; err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	account.Used = 0
	account.Settings.EnableSync = false
	return nil
}
