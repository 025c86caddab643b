// game/message.go
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrParse = errors.New("malformed move")

// PassText is the wire form of a pass.
const PassText = "pass"

// Move is a parsed human action: a stone placement or a pass.
type Move struct {
	Pass     bool
	Position Position
}

func (m Move) String() string {
	if m.Pass {
		return PassText
	}
	return fmt.Sprintf("%d,%d", m.Position.X, m.Position.Y)
}

// ParseMove decodes "<x>,<y>" (base-10 integers) or "pass". Surrounding
// whitespace is ignored. Bounds are not checked here.
func ParseMove(text string) (Move, error) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, PassText) {
		return Move{Pass: true}, nil
	}

	xs, ys, ok := strings.Cut(text, ",")
	if !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrParse, text)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Move{}, fmt.Errorf("%w: x coordinate %q", ErrParse, xs)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Move{}, fmt.Errorf("%w: y coordinate %q", ErrParse, ys)
	}
	return Move{Position: Position{X: x, Y: y}}, nil
}
