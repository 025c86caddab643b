package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_SingleStoneLiberties(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{"interior", Position{5, 5}, 4},
		{"corner", Position{0, 0}, 2},
		{"edge", Position{0, 5}, 3},
		{"opposite corner", Position{18, 18}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(19)
			require.NoError(t, b.Set(tt.pos, White))

			a := Analyze(b)

			assert.Equal(t, tt.want, a.Liberties(tt.pos))
			require.Len(t, a.Groups(), 1)
		})
	}
}

func TestAnalyze_SharedLibertyCountedOnce(t *testing.T) {
	// (0,1) touches both (0,0) and (1,1)
	b := NewBoard(19)
	for _, pos := range []Position{{0, 0}, {1, 0}, {1, 1}} {
		require.NoError(t, b.Set(pos, Black))
	}

	a := Analyze(b)

	group, ok := a.GroupAt(Position{X: 1, Y: 1})
	require.True(t, ok)
	assert.Len(t, group.Members, 3)
	assert.ElementsMatch(t, []Position{{0, 1}, {2, 0}, {2, 1}, {1, 2}}, group.Liberties)
	for _, pos := range group.Members {
		assert.Equal(t, 4, a.Liberties(pos))
	}
}

func TestAnalyze_EmptyAndOutOfBounds(t *testing.T) {
	a := Analyze(NewBoard(5))

	assert.Empty(t, a.Groups())
	assert.Zero(t, a.Liberties(Position{X: 2, Y: 2}))
	assert.Zero(t, a.Liberties(Position{X: -1, Y: 2}))
	_, ok := a.GroupAt(Position{X: 5, Y: 0})
	assert.False(t, ok)
}

func TestAnalyze_ColoursDoNotMerge(t *testing.T) {
	b := mustParse(t, "WB.\nWB.\n...\n")

	a := Analyze(b)

	require.Len(t, a.Groups(), 2)
	white, _ := a.GroupAt(Position{X: 0, Y: 0})
	black, _ := a.GroupAt(Position{X: 1, Y: 1})
	assert.Equal(t, White, white.Color)
	assert.Equal(t, Black, black.Color)
	assert.Equal(t, 1, white.LibertyCount())
	assert.Equal(t, 3, black.LibertyCount())
}

func TestAnalyze_PartitionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		b := randomBoard(rng, 9)
		a := Analyze(b)

		seen := make(map[Position]int)
		for gi, g := range a.Groups() {
			require.NotEmpty(t, g.Members)
			for _, pos := range g.Members {
				_, dup := seen[pos]
				require.False(t, dup, "position %s in two groups", pos)
				seen[pos] = gi

				state, _ := b.Get(pos)
				require.Equal(t, g.Color, state)
			}
		}

		stones := 0
		for _, pos := range b.Positions() {
			state, _ := b.Get(pos)
			if state == Empty {
				continue
			}
			stones++
			gi, ok := seen[pos]
			require.True(t, ok, "stone at %s has no group", pos)

			// maximality: same-coloured neighbours share the group
			for _, nb := range b.Neighbors(pos) {
				if s, _ := b.Get(nb); s == state {
					require.Equal(t, gi, seen[nb])
				}
			}
		}
		require.Equal(t, stones, len(seen))
	}
}

func TestAnalyze_LibertiesMatchNaiveSet(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for iter := 0; iter < 30; iter++ {
		b := randomBoard(rng, 11)
		for _, g := range Analyze(b).Groups() {
			want := make(map[Position]struct{})
			for _, pos := range g.Members {
				for _, nb := range b.Neighbors(pos) {
					if s, _ := b.Get(nb); s == Empty {
						want[nb] = struct{}{}
					}
				}
			}
			require.Len(t, g.Liberties, len(want))
			for _, lib := range g.Liberties {
				_, ok := want[lib]
				require.True(t, ok)
			}
		}
	}
}

func TestAnalyze_ScanOrderDoesNotMatter(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for iter := 0; iter < 30; iter++ {
		b := randomBoard(rng, 9)
		want := Analyze(b).LibertyGrid()

		for p := 0; p < 5; p++ {
			got := analyze(b, rng.Perm(len(b.cells))).LibertyGrid()
			require.Equal(t, want, got)
		}
	}
}

func TestAnalyze_LargeSaturatedBoard(t *testing.T) {
	// a single group spanning the whole board must not need deep recursion
	const size = 600
	b := NewBoard(size)
	for i := range b.cells {
		b.cells[i] = White
	}
	b.cells[0] = Empty

	a := Analyze(b)

	require.Len(t, a.Groups(), 1)
	assert.Len(t, a.Groups()[0].Members, size*size-1)
	assert.Equal(t, 1, a.Liberties(Position{X: size - 1, Y: size - 1}))
}
