package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.ShareGrant{},
		&models.Block{},
	)
}

// Handle owns the process-wide document store connection. The connection is
// opened on first use; concurrent first callers share a single attempt and a
// failed attempt is retried by the next caller.
type Handle struct {
	mu   sync.Mutex
	db   *gorm.DB
	cfg  config.DBConfig
	open func(config.DBConfig) (*gorm.DB, error)
}

func NewHandle(cfg config.DBConfig) *Handle {
	return &Handle{cfg: cfg, open: Connect}
}

// NewHandleWithOpener is used by tests to observe how often the store is
// opened.
func NewHandleWithOpener(cfg config.DBConfig, open func(config.DBConfig) (*gorm.DB, error)) *Handle {
	return &Handle{cfg: cfg, open: open}
}

// FromDB wraps an already opened connection.
func FromDB(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

// Get returns the shared connection bound to ctx.
func (h *Handle) Get(ctx context.Context) (*gorm.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		if h.open == nil {
			return nil, fmt.Errorf("database handle has no opener")
		}
		db, err := h.open(h.cfg)
		if err != nil {
			logger.Error("database_connect_failed", err, map[string]interface{}{
				"driver": h.cfg.Driver,
			})
			return nil, fmt.Errorf("connect document store: %w", err)
		}
		logger.Info("database_connected", map[string]interface{}{
			"driver": h.cfg.Driver,
		})
		h.db = db
	}

	return h.db.WithContext(ctx), nil
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	h.db = nil
	return sqlDB.Close()
}
