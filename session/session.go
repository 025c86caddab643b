package session

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/gomind/network"
	"github.com/wfunc/gomind/state"
)

// Session is one connected client and its game.
type Session struct {
	ID         string
	Conn       network.Connection
	RemoteAddr string
	CreatedAt  time.Time

	game       *state.Game
	lastActive atomic.Int64 // unix nano
	mutex      sync.Mutex   // guards game
}

// Info is a point-in-time view of a session, safe to hand to other goroutines.
type Info struct {
	ID         string
	RemoteAddr string
	Phase      string
	Turns      int
	Board      string
	CreatedAt  time.Time
	LastActive time.Time
}

func NewSession(id string, conn network.Connection, game *state.Game) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Conn:      conn,
		CreatedAt: now,
		game:      game,
	}
	if conn != nil && conn.RemoteAddr() != nil {
		s.RemoteAddr = conn.RemoteAddr().String()
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// HandleMessage feeds one client message to the game.
func (s *Session) HandleMessage(text string) state.Outcome {
	s.Touch()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.game.HandleMessage(text)
}

// Finish ends the game with reason unless it is already over.
func (s *Session) Finish(reason state.Reason) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.game.Finish(reason)
}

// WithGame runs fn while holding the game lock.
func (s *Session) WithGame(fn func(g *state.Game)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(s.game)
}

func (s *Session) Info() Info {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return Info{
		ID:         s.ID,
		RemoteAddr: s.RemoteAddr,
		Phase:      s.game.Phase(),
		Turns:      s.game.Turns(),
		Board:      s.game.Board().String(),
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive(),
	}
}

func (s *Session) Send(text string) error {
	return s.Conn.SendText(text)
}

// CloseWith sends a close frame and then drops the connection.
func (s *Session) CloseWith(code int, reason string) error {
	err := s.Conn.SendClose(code, reason)
	if cerr := s.Conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks the live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns the live sessions ordered by creation time.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Idle returns the sessions without activity for longer than d.
func (m *Manager) Idle(d time.Duration) []*Session {
	cutoff := time.Now().Add(-d)
	var result []*Session
	for _, session := range m.All() {
		if session.LastActive().Before(cutoff) {
			result = append(result, session)
		}
	}
	return result
}
