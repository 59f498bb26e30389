package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/database"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/photos"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/storage"
	"gorm.io/gorm"
)

const testPrefix = "photos/"

type serviceEnv struct {
	db       *gorm.DB
	store    *storage.MemoryStore
	accounts *AccountService
	photos   *PhotoService
	sharing  *SharingService
}

func setupServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	handle := database.FromDB(db)
	store := storage.NewMemoryStore()
	accounts := NewAccountService(handle, nil)
	photoService := NewPhotoService(accounts, store, testPrefix, 3, 100)

	return &serviceEnv{
		db:       db,
		store:    store,
		accounts: accounts,
		photos:   photoService,
		sharing:  NewSharingService(handle, accounts, photoService),
	}
}

func createAccount(t *testing.T, env *serviceEnv, id string, quota int64, sync bool) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:       id,
		Username: id,
		Token:    NewSessionToken(),
		Storage:  quota,
		Settings: models.Settings{EnableSync: sync},
	}
	if err := env.db.Create(account).Error; err != nil {
		t.Fatalf("failed creating account %s: %v", id, err)
	}
	return account
}

func withShareCode(t *testing.T, env *serviceEnv, account *models.Account) string {
	t.Helper()
	code, err := env.accounts.EnsureShareCode(context.Background(), account)
	if err != nil {
		t.Fatalf("failed assigning share code: %v", err)
	}
	return code
}

func reload(t *testing.T, env *serviceEnv, id string) *models.Account {
	t.Helper()
	account, err := env.accounts.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed reloading account %s: %v", id, err)
	}
	return account
}

func photoName(i int) string {
	return fmt.Sprintf("VRChat_2024-01-31_21-%02d-%02d.%03d_1920x1080.png", (i/60)%60, i%60, i%1000)
}

func upload(t *testing.T, env *serviceEnv, account *models.Account, name, body string) *UploadResult {
	t.Helper()
	result, err := env.photos.Upload(context.Background(), account, name, photos.ContentType, strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload %s failed: %v", name, err)
	}
	return result
}
