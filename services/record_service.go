package services

import (
	"context"

	"github.com/wfunc/gomind/game"
	"github.com/wfunc/gomind/logger"
	"github.com/wfunc/gomind/models"
	"github.com/wfunc/gomind/persistence"
	"github.com/wfunc/gomind/session"
	"github.com/wfunc/gomind/sgf"
	"github.com/wfunc/gomind/state"
)

// RecordService stores finished games and answers queries about them.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// BuildRecord summarizes g. The SGF is left empty for boards SGF cannot
// address.
func BuildRecord(sessionID, remoteAddr string, g *state.Game) *models.GameRecord {
	board := g.Board()
	history := g.History()
	cfg := g.Config()

	record := &models.GameRecord{
		SessionID:     sessionID,
		RemoteAddr:    remoteAddr,
		Reason:        string(g.Reason()),
		BoardSize:     board.Size(),
		CaptureRule:   string(cfg.Rules.Capture),
		Moves:         len(history),
		Turns:         g.Turns(),
		WhiteStones:   board.Count(game.White),
		BlackStones:   board.Count(game.Black),
		WhiteCaptured: g.Captured(game.White),
		BlackCaptured: g.Captured(game.Black),
		FinalBoard:    board.String(),
		StartedAt:     g.StartedAt(),
		EndedAt:       g.EndedAt(),
	}

	rec, err := sgf.NewRecord(board.Size(), g.StartedAt())
	if err != nil {
		logger.Log.Debugf("No SGF for session %s: %v", sessionID, err)
		return record
	}
	for _, m := range history {
		if m.Pass {
			err = rec.AddPass(m.Color)
		} else {
			err = rec.AddMove(m.Color, m.Position)
		}
		if err != nil {
			logger.Log.Warnf("Skipping SGF for session %s: %v", sessionID, err)
			return record
		}
	}
	rec.SetFinish(record.Reason)
	record.SGF = rec.String()
	return record
}

// RecordSession saves the game of a finished session.
func (s *RecordService) RecordSession(ctx context.Context, sess *session.Session) (*models.GameRecord, error) {
	var record *models.GameRecord
	sess.WithGame(func(g *state.Game) {
		record = BuildRecord(sess.ID, sess.RemoteAddr, g)
	})

	if err := s.db.SaveGameRecord(ctx, record); err != nil {
		return nil, err
	}
	logger.Log.Infof("Recorded game %s: %s, %d moves", record.SessionID, record.Reason, record.Moves)
	return record, nil
}

func (s *RecordService) GetGame(ctx context.Context, sessionID string) (*models.GameRecord, error) {
	return s.db.LoadGameRecord(ctx, sessionID)
}

func (s *RecordService) GetStats(ctx context.Context) (*models.GameStats, error) {
	return s.db.GetGameStats(ctx)
}
