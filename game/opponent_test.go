package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPolicy_ChoosesEmptyCell(t *testing.T) {
	policy := NewRandomPolicy(1)
	b := NewBoard(9)
	rules := Rules{}

	for i := 0; i < 60; i++ {
		pos, err := policy.ChooseMove(b, Black, rules)
		require.NoError(t, err)
		require.NoError(t, ValidateMove(b, pos))
		require.NoError(t, b.Set(pos, Black))
	}
}

func TestRandomPolicy_NearlyFullBoard(t *testing.T) {
	b := NewBoard(19)
	for i := range b.cells {
		b.cells[i] = White
	}
	last := Position{X: 17, Y: 11}
	require.NoError(t, b.Set(last, Empty))

	pos, err := NewRandomPolicy(5).ChooseMove(b, Black, Rules{})

	require.NoError(t, err)
	assert.Equal(t, last, pos)
}

func TestRandomPolicy_FullBoard(t *testing.T) {
	b := mustParse(t, "WB\nBW\n")

	_, err := NewRandomPolicy(5).ChooseMove(b, Black, Rules{})

	assert.ErrorIs(t, err, ErrNoLegalMove)
}

func TestRandomPolicy_Seeded(t *testing.T) {
	a, b := NewRandomPolicy(77), NewRandomPolicy(77)
	board := NewBoard(19)

	for i := 0; i < 10; i++ {
		pa, err := a.ChooseMove(board, Black, Rules{})
		require.NoError(t, err)
		pb, err := b.ChooseMove(board, Black, Rules{})
		require.NoError(t, err)
		require.Equal(t, pa, pb)
		require.NoError(t, board.Set(pa, Black))
	}
}

func TestPolicies_AvoidSuicideUnderStandardRules(t *testing.T) {
	standard := Rules{Capture: CaptureStandard}
	b := NewBoard(5)
	require.NoError(t, b.Set(Position{X: 1, Y: 0}, White))
	require.NoError(t, b.Set(Position{X: 0, Y: 1}, White))
	eye := Position{X: 0, Y: 0}

	pos, err := ScanPolicy{}.ChooseMove(b, Black, standard)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 2, Y: 0}, pos)

	random := NewRandomPolicy(9)
	for i := 0; i < 200; i++ {
		pos, err := random.ChooseMove(b, Black, standard)
		require.NoError(t, err)
		require.NotEqual(t, eye, pos)
	}
}

func TestPolicies_NoLegalMoveWithEmptyCells(t *testing.T) {
	// both empty cells are suicide for black
	b := mustParse(t, ".W\nW.\n")
	standard := Rules{Capture: CaptureStandard}

	_, err := NewRandomPolicy(3).ChooseMove(b, Black, standard)
	assert.ErrorIs(t, err, ErrNoLegalMove)

	_, err = ScanPolicy{}.ChooseMove(b, Black, standard)
	assert.ErrorIs(t, err, ErrNoLegalMove)

	pos, err := ScanPolicy{}.ChooseMove(b, Black, Rules{})
	require.NoError(t, err)
	assert.Equal(t, Position{X: 0, Y: 0}, pos)
}
