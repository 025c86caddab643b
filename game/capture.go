// game/capture.go
package game

import "sort"

// ResolveCaptures removes every group without liberties. All counts are
// taken before the first removal, so captures from one move are
// simultaneous. The removed positions are returned in scan order.
func ResolveCaptures(b *Board) []Position {
	return b.sortedMembers(captureGroups(b, Analyze(b), Empty))
}

// captureGroups clears the zero-liberty groups of a and returns them. When
// only is not Empty, groups of the other colour are left in place.
func captureGroups(b *Board, a *Analysis, only TileState) []Group {
	var dead []Group
	for _, g := range a.Groups() {
		if g.LibertyCount() > 0 || (only != Empty && g.Color != only) {
			continue
		}
		for _, pos := range g.Members {
			b.cells[b.index(pos)] = Empty
		}
		dead = append(dead, g)
	}
	return dead
}

func (b *Board) sortedMembers(groups []Group) []Position {
	var result []Position
	for _, g := range groups {
		result = append(result, g.Members...)
	}
	sort.Slice(result, func(i, j int) bool {
		return b.index(result[i]) < b.index(result[j])
	})
	return result
}
