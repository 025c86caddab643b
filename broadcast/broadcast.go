package broadcast

import (
	"github.com/wfunc/gomind/logger"
	"github.com/wfunc/gomind/session"
	"github.com/wfunc/gomind/state"
)

// 广播接口
type Broadcaster interface {
	BroadcastToAll(text string) int
	CloseAll(reason state.Reason, code int) int
	CloseSessions(sessions []*session.Session, reason state.Reason, code int) int
}

// SessionBroadcaster fans out to the sessions of a session.Manager.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{
		sessionManager: sessionManager,
	}
}

// BroadcastToAll sends text to every live session and returns how many
// sends succeeded.
func (b *SessionBroadcaster) BroadcastToAll(text string) int {
	sent := 0
	for _, s := range b.sessionManager.All() {
		if err := s.Send(text); err != nil {
			logger.Log.Debugf("Broadcast to %s failed: %v", s.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// CloseAll ends every live game with reason; see CloseSessions.
func (b *SessionBroadcaster) CloseAll(reason state.Reason, code int) int {
	return b.CloseSessions(b.sessionManager.All(), reason, code)
}

// CloseSessions finishes each still running game with reason, sends its
// final board and a close frame carrying code. Sessions whose game already
// ended are skipped; their own loop does the closing. It returns the number
// of games ended.
func (b *SessionBroadcaster) CloseSessions(sessions []*session.Session, reason state.Reason, code int) int {
	closed := 0
	for _, s := range sessions {
		var board string
		finished := false
		s.WithGame(func(g *state.Game) {
			if g.Finish(reason) {
				finished = true
				board = g.Board().String()
			}
		})
		if !finished {
			continue
		}
		closed++

		if err := s.Send(board); err != nil {
			logger.Log.Debugf("Final board to %s failed: %v", s.ID, err)
		}
		if err := s.CloseWith(code, string(reason)); err != nil {
			logger.Log.Debugf("Closing %s: %v", s.ID, err)
		}
	}
	return closed
}
