package models

import (
	"time"
)

// GameRecord 对局记录，会话结束时写入一次
type GameRecord struct {
	SessionID     string    `json:"session_id"`
	RemoteAddr    string    `json:"remote_addr"`
	Reason        string    `json:"reason"`
	BoardSize     int       `json:"board_size"`
	CaptureRule   string    `json:"capture_rule"`
	Moves         int       `json:"moves"`
	Turns         int       `json:"turns"`
	WhiteStones   int       `json:"white_stones"`
	BlackStones   int       `json:"black_stones"`
	WhiteCaptured int       `json:"white_captured"` // 被提白子数
	BlackCaptured int       `json:"black_captured"` // 被提黑子数
	FinalBoard    string    `json:"final_board"`
	SGF           string    `json:"sgf"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
}

// Duration 对局时长
func (r *GameRecord) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// GameStats 汇总统计
type GameStats struct {
	TotalGames    int            `json:"total_games"`
	ByReason      map[string]int `json:"by_reason"`
	AverageMoves  float64        `json:"average_moves"`
	TotalCaptured int            `json:"total_captured"`
}
