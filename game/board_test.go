package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomBoard fills every cell with a uniformly chosen tile.
func randomBoard(rng *rand.Rand, size int) *Board {
	b := NewBoard(size)
	for i := range b.cells {
		b.cells[i] = TileState(rng.Intn(3))
	}
	return b
}

func mustParse(t *testing.T, text string) *Board {
	t.Helper()
	b, err := ParseBoard(text)
	require.NoError(t, err)
	return b
}

func TestNewBoard(t *testing.T) {
	b := NewBoard(DefaultBoardSize)

	require.Equal(t, 19, b.Size())
	assert.Equal(t, 361, b.EmptyCount())
	assert.False(t, b.IsFull())
	assert.Len(t, b.EmptyPositions(), 361)

	assert.Equal(t, DefaultBoardSize, NewBoard(0).Size())
}

func TestBoard_GetSet(t *testing.T) {
	b := NewBoard(19)

	require.NoError(t, b.Set(Position{X: 3, Y: 4}, White))
	state, err := b.Get(Position{X: 3, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, White, state)

	state, err = b.Get(Position{X: 4, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, Empty, state)

	for _, pos := range []Position{{-1, 0}, {0, -1}, {19, 0}, {0, 19}, {19, 19}} {
		_, err := b.Get(pos)
		assert.ErrorIs(t, err, ErrOutOfBounds, "get %s", pos)
		assert.ErrorIs(t, b.Set(pos, Black), ErrOutOfBounds, "set %s", pos)
	}
	assert.Equal(t, 1, b.Count(White))
}

func TestBoard_IsFull(t *testing.T) {
	b := NewBoard(2)
	for _, pos := range []Position{{0, 0}, {1, 0}, {0, 1}} {
		require.NoError(t, b.Set(pos, Black))
		assert.False(t, b.IsFull())
	}
	require.NoError(t, b.Set(Position{X: 1, Y: 1}, White))
	assert.True(t, b.IsFull())
	assert.Zero(t, b.EmptyCount())
}

func TestBoard_Neighbors(t *testing.T) {
	b := NewBoard(19)

	tests := []struct {
		name string
		pos  Position
		want []Position
	}{
		{"corner", Position{0, 0}, []Position{{1, 0}, {0, 1}}},
		{"far corner", Position{18, 18}, []Position{{17, 18}, {18, 17}}},
		{"edge", Position{0, 5}, []Position{{1, 5}, {0, 4}, {0, 6}}},
		{"interior", Position{5, 5}, []Position{{4, 5}, {6, 5}, {5, 4}, {5, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Neighbors(tt.pos))
		})
	}
}

func TestBoard_String(t *testing.T) {
	b := NewBoard(3)
	require.NoError(t, b.Set(Position{X: 0, Y: 0}, White))
	require.NoError(t, b.Set(Position{X: 2, Y: 1}, Black))

	assert.Equal(t, "W..\n..B\n...\n", b.String())

	full := NewBoard(19).String()
	assert.Len(t, full, 19*20)
}

func TestParseBoard(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	original := randomBoard(rng, 9)

	parsed, err := ParseBoard(original.String())
	require.NoError(t, err)
	assert.True(t, original.Equal(parsed))

	for _, text := range []string{"", "W.\n.", "WX\n..\n", "W..\n...\n"} {
		_, err := ParseBoard(text)
		assert.ErrorIs(t, err, ErrInvalidBoard, "text %q", text)
	}
}

func TestBoard_Clone(t *testing.T) {
	b := mustParse(t, "W.\n.B\n")
	c := b.Clone()
	require.True(t, b.Equal(c))

	require.NoError(t, c.Set(Position{X: 1, Y: 0}, Black))
	assert.False(t, b.Equal(c))

	state, _ := b.Get(Position{X: 1, Y: 0})
	assert.Equal(t, Empty, state)
}
