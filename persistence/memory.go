package persistence

import (
	"context"
	"sync"

	"github.com/wfunc/gomind/models"
)

// DefaultMemoryCapacity bounds the in-process store.
const DefaultMemoryCapacity = 10000

// Memory keeps records in process; used when no database is configured.
// Once capacity records are held, saving a new session evicts the oldest one.
type Memory struct {
	records  map[string]models.GameRecord
	order    []string
	capacity int
	mutex    sync.RWMutex
}

func NewMemory() *Memory {
	return NewMemoryWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryWithCapacity returns a store holding at most capacity records.
// A non-positive capacity falls back to DefaultMemoryCapacity.
func NewMemoryWithCapacity(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{
		records:  make(map[string]models.GameRecord),
		capacity: capacity,
	}
}

func (m *Memory) SaveGameRecord(_ context.Context, record *models.GameRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.records[record.SessionID]; !ok {
		for len(m.order) >= m.capacity {
			delete(m.records, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, record.SessionID)
	}
	m.records[record.SessionID] = *record
	return nil
}

func (m *Memory) LoadGameRecord(_ context.Context, sessionID string) (*models.GameRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	record, ok := m.records[sessionID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

func (m *Memory) GetGameStats(_ context.Context) (*models.GameStats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := &models.GameStats{ByReason: make(map[string]int)}
	moves := 0
	for _, r := range m.records {
		stats.TotalGames++
		stats.ByReason[r.Reason]++
		stats.TotalCaptured += r.WhiteCaptured + r.BlackCaptured
		moves += r.Moves
	}
	if stats.TotalGames > 0 {
		stats.AverageMoves = float64(moves) / float64(stats.TotalGames)
	}
	return stats, nil
}

func (m *Memory) Close() error {
	return nil
}
