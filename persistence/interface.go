package persistence

import (
	"context"
	"fmt"

	"github.com/wfunc/gomind/config"
	"github.com/wfunc/gomind/models"
)

// Database 对局记录存储接口
type Database interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	LoadGameRecord(ctx context.Context, sessionID string) (*models.GameRecord, error)
	GetGameStats(ctx context.Context) (*models.GameStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrUnknownDriver  = fmt.Errorf("unknown database driver")
)

// Open picks the backend named by cfg.Driver: "gorm", "postgres" or "memory".
func Open(cfg config.DatabaseConfig) (Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryWithCapacity(cfg.MemoryCapacity), nil
	case "gorm":
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "postgres":
		return NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
