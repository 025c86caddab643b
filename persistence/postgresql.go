package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/wfunc/gomind/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL 基于 database/sql 和 lib/pq 的数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构，与 GORM 实现的表结构一致，两者可互读记录
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id BIGSERIAL PRIMARY KEY,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMPTZ,
            session_id TEXT NOT NULL,
            remote_addr TEXT,
            reason TEXT NOT NULL,
            board_size BIGINT NOT NULL,
            capture_rule TEXT NOT NULL,
            moves BIGINT DEFAULT 0,
            turns BIGINT DEFAULT 0,
            white_stones BIGINT DEFAULT 0,
            black_stones BIGINT DEFAULT 0,
            white_captured BIGINT DEFAULT 0,
            black_captured BIGINT DEFAULT 0,
            final_board TEXT,
            sgf TEXT,
            started_at TIMESTAMPTZ,
            ended_at TIMESTAMPTZ
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS idx_game_records_session_id ON game_records(session_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_reason ON game_records(reason);
    `)
	return err
}

// SaveGameRecord 保存对局记录
func (p *PostgreSQL) SaveGameRecord(ctx context.Context, r *models.GameRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        INSERT INTO game_records (session_id, remote_addr, reason, board_size, capture_rule,
            moves, turns, white_stones, black_stones, white_captured, black_captured,
            final_board, sgf, started_at, ended_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (session_id)
        DO UPDATE SET remote_addr = $2, reason = $3, board_size = $4, capture_rule = $5,
            moves = $6, turns = $7, white_stones = $8, black_stones = $9,
            white_captured = $10, black_captured = $11, final_board = $12, sgf = $13,
            started_at = $14, ended_at = $15, updated_at = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query,
		r.SessionID, r.RemoteAddr, r.Reason, r.BoardSize, r.CaptureRule,
		r.Moves, r.Turns, r.WhiteStones, r.BlackStones, r.WhiteCaptured, r.BlackCaptured,
		r.FinalBoard, r.SGF, r.StartedAt, r.EndedAt)
	return err
}

// LoadGameRecord 加载对局记录
func (p *PostgreSQL) LoadGameRecord(ctx context.Context, sessionID string) (*models.GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        SELECT session_id, COALESCE(remote_addr, ''), reason, board_size, capture_rule,
            moves, turns, white_stones, black_stones, white_captured, black_captured,
            COALESCE(final_board, ''), COALESCE(sgf, ''), started_at, ended_at
        FROM game_records WHERE session_id = $1 AND deleted_at IS NULL
    `

	var r models.GameRecord
	err := p.db.QueryRowContext(ctx, query, sessionID).Scan(
		&r.SessionID, &r.RemoteAddr, &r.Reason, &r.BoardSize, &r.CaptureRule,
		&r.Moves, &r.Turns, &r.WhiteStones, &r.BlackStones, &r.WhiteCaptured, &r.BlackCaptured,
		&r.FinalBoard, &r.SGF, &r.StartedAt, &r.EndedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetGameStats 汇总统计
func (p *PostgreSQL) GetGameStats(ctx context.Context) (*models.GameStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stats := &models.GameStats{ByReason: make(map[string]int)}
	err := p.db.QueryRowContext(ctx, `
        SELECT COUNT(*), COALESCE(AVG(moves), 0)::float8, COALESCE(SUM(white_captured + black_captured), 0)
        FROM game_records WHERE deleted_at IS NULL
    `).Scan(&stats.TotalGames, &stats.AverageMoves, &stats.TotalCaptured)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
        SELECT reason, COUNT(*) FROM game_records WHERE deleted_at IS NULL GROUP BY reason
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		stats.ByReason[reason] = count
	}
	return stats, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
