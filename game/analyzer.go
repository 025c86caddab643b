// game/analyzer.go
package game

// Group is a maximal 4-connected set of same-coloured stones together with
// its distinct liberties.
type Group struct {
	Color     TileState
	Members   []Position
	Liberties []Position
}

// LibertyCount is the number of distinct Empty cells adjacent to the group.
func (g Group) LibertyCount() int {
	return len(g.Liberties)
}

// Analysis is the result of one pass over a board. It is a snapshot: later
// changes to the board are not reflected.
type Analysis struct {
	size   int
	groups []Group
	owner  []int // cell index -> group index, -1 for Empty
}

// Analyze partitions the stones of b into groups and computes their
// liberties. Cells are scanned row-major.
func Analyze(b *Board) *Analysis {
	order := make([]int, len(b.cells))
	for i := range order {
		order[i] = i
	}
	return analyze(b, order)
}

// analyze scans cells in the given order. Any permutation of all cell
// indices yields the same partition and liberty counts.
func analyze(b *Board, order []int) *Analysis {
	n := len(b.cells)
	a := &Analysis{
		size:  b.size,
		owner: make([]int, n),
	}
	for i := range a.owner {
		a.owner[i] = -1
	}

	// libStamp[i] == id+1 once cell i was counted as a liberty of group id.
	libStamp := make([]int, n)
	queue := make([]int, 0, n)
	neighbors := make([]Position, 0, 4)

	for _, start := range order {
		color := b.cells[start]
		if color == Empty || a.owner[start] != -1 {
			continue
		}

		id := len(a.groups)
		group := Group{Color: color}
		a.owner[start] = id
		queue = append(queue[:0], start)

		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			pos := b.position(cur)
			group.Members = append(group.Members, pos)

			neighbors = b.appendNeighbors(neighbors[:0], pos)
			for _, nb := range neighbors {
				ni := b.index(nb)
				switch b.cells[ni] {
				case color:
					// membership is claimed on enqueue so no cell is expanded twice
					if a.owner[ni] == -1 {
						a.owner[ni] = id
						queue = append(queue, ni)
					}
				case Empty:
					if libStamp[ni] != id+1 {
						libStamp[ni] = id + 1
						group.Liberties = append(group.Liberties, nb)
					}
				}
			}
		}
		a.groups = append(a.groups, group)
	}
	return a
}

// Groups returns every group found, in discovery order.
func (a *Analysis) Groups() []Group {
	return a.groups
}

// GroupAt returns the group owning pos, if pos holds a stone.
func (a *Analysis) GroupAt(pos Position) (Group, bool) {
	idx, ok := a.ownerIndex(pos)
	if !ok {
		return Group{}, false
	}
	return a.groups[idx], true
}

// Liberties returns the liberty count of the group owning pos; 0 for Empty
// or out-of-bounds positions.
func (a *Analysis) Liberties(pos Position) int {
	idx, ok := a.ownerIndex(pos)
	if !ok {
		return 0
	}
	return len(a.groups[idx].Liberties)
}

// LibertyGrid returns the per-cell liberty counts indexed [y][x].
func (a *Analysis) LibertyGrid() [][]int {
	grid := make([][]int, a.size)
	for y := range grid {
		grid[y] = make([]int, a.size)
		for x := range grid[y] {
			if g := a.owner[y*a.size+x]; g >= 0 {
				grid[y][x] = len(a.groups[g].Liberties)
			}
		}
	}
	return grid
}

func (a *Analysis) ownerIndex(pos Position) (int, bool) {
	if pos.X < 0 || pos.X >= a.size || pos.Y < 0 || pos.Y >= a.size {
		return 0, false
	}
	g := a.owner[pos.Y*a.size+pos.X]
	return g, g >= 0
}
