// game/move.go
package game

import (
	"errors"
	"fmt"
)

var (
	ErrOccupiedTile = errors.New("tile is already occupied")
	ErrSuicide      = errors.New("move would capture its own group")
	ErrInvalidColor = errors.New("stone colour must be white or black")
	ErrUnknownRule  = errors.New("unknown capture rule")
)

// CaptureRule selects how captures are resolved after a placement.
type CaptureRule string

const (
	// CaptureSimultaneous removes every zero-liberty group in one pass,
	// the mover's own included. Suicide is therefore legal.
	CaptureSimultaneous CaptureRule = "simultaneous"
	// CaptureStandard removes the opponent's dead groups first and rejects
	// moves that still leave the mover without liberties.
	CaptureStandard CaptureRule = "standard"
)

// ParseCaptureRule maps a configuration value to a rule. Empty selects the
// simultaneous rule.
func ParseCaptureRule(s string) (CaptureRule, error) {
	switch CaptureRule(s) {
	case "", CaptureSimultaneous:
		return CaptureSimultaneous, nil
	case CaptureStandard:
		return CaptureStandard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRule, s)
}

// Rules bundles the configurable parts of move application.
type Rules struct {
	Capture CaptureRule
}

// MoveResult describes an applied move.
type MoveResult struct {
	Position Position
	Color    TileState
	Captured []Position
	// CapturedStones counts removed stones per colour.
	CapturedStones map[TileState]int
}

// ValidateMove checks bounds and occupancy of pos.
func ValidateMove(b *Board, pos Position) error {
	state, err := b.Get(pos)
	if err != nil {
		return err
	}
	if state != Empty {
		return fmt.Errorf("place at %s: %w", pos, ErrOccupiedTile)
	}
	return nil
}

// ApplyMove places a stone of color at pos and resolves captures with the
// simultaneous rule.
func ApplyMove(b *Board, pos Position, color TileState) error {
	_, err := Rules{Capture: CaptureSimultaneous}.Apply(b, pos, color)
	return err
}

// Apply validates and places a stone, then resolves captures according to
// the rule. On error the board is unchanged.
func (r Rules) Apply(b *Board, pos Position, color TileState) (MoveResult, error) {
	if color != White && color != Black {
		return MoveResult{}, ErrInvalidColor
	}
	if err := ValidateMove(b, pos); err != nil {
		return MoveResult{}, err
	}

	b.cells[b.index(pos)] = color

	var dead []Group
	switch r.Capture {
	case CaptureStandard:
		dead = captureGroups(b, Analyze(b), color.Opponent())
		if len(dead) == 0 && Analyze(b).Liberties(pos) == 0 {
			b.cells[b.index(pos)] = Empty
			return MoveResult{}, fmt.Errorf("place at %s: %w", pos, ErrSuicide)
		}
	default:
		dead = captureGroups(b, Analyze(b), Empty)
	}

	result := MoveResult{
		Position:       pos,
		Color:          color,
		Captured:       b.sortedMembers(dead),
		CapturedStones: make(map[TileState]int, 2),
	}
	for _, g := range dead {
		result.CapturedStones[g.Color] += len(g.Members)
	}
	return result, nil
}

// IsLegal reports whether color may play at pos under the rule.
func (r Rules) IsLegal(b *Board, pos Position, color TileState) bool {
	if err := ValidateMove(b, pos); err != nil {
		return false
	}
	if r.Capture != CaptureStandard {
		return true
	}
	_, err := r.Apply(b.Clone(), pos, color)
	return err == nil
}
