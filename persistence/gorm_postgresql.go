package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/gomind/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 保存对局记录，覆盖同一会话的旧记录
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	row := models.NewGormGameRecord(record)
	return p.Transaction(ctx, func(tx *gorm.DB) error {
		var existing models.GormGameRecord
		err := tx.Where("session_id = ?", record.SessionID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(row).Error
		} else if err != nil {
			return err
		}

		row.Model = existing.Model
		return tx.Save(row).Error
	})
}

// LoadGameRecord 加载对局记录
func (p *GormPostgreSQL) LoadGameRecord(ctx context.Context, sessionID string) (*models.GameRecord, error) {
	var row models.GormGameRecord
	if err := p.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return row.ToRecord(), nil
}

// GetGameStats 汇总统计
func (p *GormPostgreSQL) GetGameStats(ctx context.Context) (*models.GameStats, error) {
	db := p.db.WithContext(ctx)

	var totals struct {
		TotalGames    int
		AverageMoves  float64
		TotalCaptured int
	}
	err := db.Model(&models.GormGameRecord{}).
		Select("COUNT(*) AS total_games, COALESCE(AVG(moves), 0)::float8 AS average_moves, " +
			"COALESCE(SUM(white_captured + black_captured), 0) AS total_captured").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Reason string
		Count  int
	}
	err = db.Model(&models.GormGameRecord{}).
		Select("reason, COUNT(*) AS count").
		Group("reason").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &models.GameStats{
		TotalGames:    totals.TotalGames,
		AverageMoves:  totals.AverageMoves,
		TotalCaptured: totals.TotalCaptured,
		ByReason:      make(map[string]int, len(rows)),
	}
	for _, r := range rows {
		stats.ByReason[r.Reason] = r.Count
	}
	return stats, nil
}

// Transaction runs fn in a database transaction bound to ctx.
func (p *GormPostgreSQL) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
