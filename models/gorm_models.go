package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord 对局记录表
type GormGameRecord struct {
	gorm.Model
	SessionID     string `gorm:"uniqueIndex;not null"`
	RemoteAddr    string
	Reason        string `gorm:"index;not null"`
	BoardSize     int    `gorm:"not null"`
	CaptureRule   string `gorm:"not null"`
	Moves         int    `gorm:"default:0"`
	Turns         int    `gorm:"default:0"`
	WhiteStones   int    `gorm:"default:0"`
	BlackStones   int    `gorm:"default:0"`
	WhiteCaptured int    `gorm:"default:0"`
	BlackCaptured int    `gorm:"default:0"`
	FinalBoard    string `gorm:"type:text"`
	SGF           string `gorm:"type:text"`
	StartedAt     time.Time
	EndedAt       time.Time
}

func (GormGameRecord) TableName() string {
	return "game_records"
}

func NewGormGameRecord(r *GameRecord) *GormGameRecord {
	return &GormGameRecord{
		SessionID:     r.SessionID,
		RemoteAddr:    r.RemoteAddr,
		Reason:        r.Reason,
		BoardSize:     r.BoardSize,
		CaptureRule:   r.CaptureRule,
		Moves:         r.Moves,
		Turns:         r.Turns,
		WhiteStones:   r.WhiteStones,
		BlackStones:   r.BlackStones,
		WhiteCaptured: r.WhiteCaptured,
		BlackCaptured: r.BlackCaptured,
		FinalBoard:    r.FinalBoard,
		SGF:           r.SGF,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
	}
}

func (g *GormGameRecord) ToRecord() *GameRecord {
	return &GameRecord{
		SessionID:     g.SessionID,
		RemoteAddr:    g.RemoteAddr,
		Reason:        g.Reason,
		BoardSize:     g.BoardSize,
		CaptureRule:   g.CaptureRule,
		Moves:         g.Moves,
		Turns:         g.Turns,
		WhiteStones:   g.WhiteStones,
		BlackStones:   g.BlackStones,
		WhiteCaptured: g.WhiteCaptured,
		BlackCaptured: g.BlackCaptured,
		FinalBoard:    g.FinalBoard,
		SGF:           g.SGF,
		StartedAt:     g.StartedAt,
		EndedAt:       g.EndedAt,
	}
}
