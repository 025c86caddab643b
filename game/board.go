// game/board.go
package game

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultBoardSize is the side length used when no size is configured.
const DefaultBoardSize = 19

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrInvalidBoard = errors.New("invalid board text")
)

// TileState is the content of a single board cell.
type TileState uint8

const (
	Empty TileState = iota
	White           // the human player
	Black           // the built-in opponent
)

// Symbol returns the wire character for the tile.
func (t TileState) Symbol() byte {
	switch t {
	case White:
		return 'W'
	case Black:
		return 'B'
	default:
		return '.'
	}
}

// Opponent returns the other stone colour. Empty has no opponent.
func (t TileState) Opponent() TileState {
	switch t {
	case White:
		return Black
	case Black:
		return White
	default:
		return Empty
	}
}

func (t TileState) String() string {
	switch t {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "empty"
	}
}

func tileFromSymbol(c byte) (TileState, bool) {
	switch c {
	case '.':
		return Empty, true
	case 'W':
		return White, true
	case 'B':
		return Black, true
	}
	return Empty, false
}

// Position addresses a cell. Valid positions lie in [0, size) on both axes.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Board is a square grid of tiles stored row-major (index y*size+x).
type Board struct {
	size  int
	cells []TileState
}

// NewBoard creates an all-Empty board with the given side length.
func NewBoard(size int) *Board {
	if size <= 0 {
		size = DefaultBoardSize
	}
	return &Board{
		size:  size,
		cells: make([]TileState, size*size),
	}
}

func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether pos addresses a cell of the board.
func (b *Board) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < b.size && pos.Y >= 0 && pos.Y < b.size
}

func (b *Board) index(pos Position) int {
	return pos.Y*b.size + pos.X
}

func (b *Board) position(idx int) Position {
	return Position{X: idx % b.size, Y: idx / b.size}
}

// Get returns the tile at pos.
func (b *Board) Get(pos Position) (TileState, error) {
	if !b.InBounds(pos) {
		return Empty, fmt.Errorf("get %s: %w", pos, ErrOutOfBounds)
	}
	return b.cells[b.index(pos)], nil
}

// Set overwrites the tile at pos. Legality is the caller's concern.
func (b *Board) Set(pos Position, state TileState) error {
	if !b.InBounds(pos) {
		return fmt.Errorf("set %s: %w", pos, ErrOutOfBounds)
	}
	b.cells[b.index(pos)] = state
	return nil
}

// IsFull reports whether no cell is Empty.
func (b *Board) IsFull() bool {
	for _, c := range b.cells {
		if c == Empty {
			return false
		}
	}
	return true
}

// EmptyCount returns the number of Empty cells.
func (b *Board) EmptyCount() int {
	n := 0
	for _, c := range b.cells {
		if c == Empty {
			n++
		}
	}
	return n
}

// Count returns the number of cells holding state.
func (b *Board) Count(state TileState) int {
	n := 0
	for _, c := range b.cells {
		if c == state {
			n++
		}
	}
	return n
}

// EmptyPositions lists the Empty cells in scan order.
func (b *Board) EmptyPositions() []Position {
	var result []Position
	for i, c := range b.cells {
		if c == Empty {
			result = append(result, b.position(i))
		}
	}
	return result
}

// Positions lists every cell in scan order (row-major).
func (b *Board) Positions() []Position {
	result := make([]Position, 0, len(b.cells))
	for i := range b.cells {
		result = append(result, b.position(i))
	}
	return result
}

// Neighbors returns the in-bounds orthogonal neighbours of pos in the
// order left, right, up, down.
func (b *Board) Neighbors(pos Position) []Position {
	return b.appendNeighbors(make([]Position, 0, 4), pos)
}

func (b *Board) appendNeighbors(dst []Position, pos Position) []Position {
	candidates := [4]Position{
		{X: pos.X - 1, Y: pos.Y},
		{X: pos.X + 1, Y: pos.Y},
		{X: pos.X, Y: pos.Y - 1},
		{X: pos.X, Y: pos.Y + 1},
	}
	for _, c := range candidates {
		if b.InBounds(c) {
			dst = append(dst, c)
		}
	}
	return dst
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	cells := make([]TileState, len(b.cells))
	copy(cells, b.cells)
	return &Board{size: b.size, cells: cells}
}

// Equal reports whether both boards have the same size and contents.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board in wire format: one line per row (y), one
// character per cell (x), every row newline-terminated.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(b.size * (b.size + 1))
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			sb.WriteByte(b.cells[y*b.size+x].Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBoard is the inverse of String. The final newline is optional.
func ParseBoard(text string) (*Board, error) {
	rows := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	size := len(rows)
	if size == 0 || rows[0] == "" {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidBoard)
	}
	b := NewBoard(size)
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, y, len(row), size)
		}
		for x := 0; x < size; x++ {
			state, ok := tileFromSymbol(row[x])
			if !ok {
				return nil, fmt.Errorf("%w: unknown symbol %q at (%d,%d)", ErrInvalidBoard, row[x], x, y)
			}
			b.cells[y*size+x] = state
		}
	}
	return b, nil
}
