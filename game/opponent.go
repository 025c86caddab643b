// game/opponent.go
package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var ErrNoLegalMove = errors.New("no legal move available")

// Policy chooses the opponent's next move. Implementations must return a
// position that is legal for color under rules, or ErrNoLegalMove.
type Policy interface {
	ChooseMove(b *Board, color TileState, rules Rules) (Position, error)
}

// RandomPolicy picks uniformly among the legal moves. Each call checks
// every Empty cell at most once, so it terminates on any board.
type RandomPolicy struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewRandomPolicy seeds the policy. A zero seed draws one from the clock.
func NewRandomPolicy(seed int64) *RandomPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))} //nolint: gosec // game play, not crypto
}

func (p *RandomPolicy) ChooseMove(b *Board, color TileState, rules Rules) (Position, error) {
	empty := b.EmptyPositions()
	if len(empty) == 0 {
		return Position{}, ErrNoLegalMove
	}

	p.mu.Lock()
	order := p.rng.Perm(len(empty))
	p.mu.Unlock()

	for _, i := range order {
		if rules.IsLegal(b, empty[i], color) {
			return empty[i], nil
		}
	}
	return Position{}, ErrNoLegalMove
}

// ScanPolicy plays the first legal cell in scan order. It is deterministic
// and mostly useful for tests and reproducible games.
type ScanPolicy struct{}

func (ScanPolicy) ChooseMove(b *Board, color TileState, rules Rules) (Position, error) {
	for _, pos := range b.EmptyPositions() {
		if rules.IsLegal(b, pos, color) {
			return pos, nil
		}
	}
	return Position{}, ErrNoLegalMove
}
