// Package sgf writes finished games as SGF FF[4] records.
package sgf

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wfunc/gomind/game"
)

// MaxBoardSize is the largest board SGF coordinates can address.
const MaxBoardSize = 52

var ErrBoardTooLarge = errors.New("board too large for sgf")

// Record collects the moves of one game.
type Record struct {
	BoardSize   int
	PlayerBlack string
	PlayerWhite string
	Date        string
	Result      string
	Comment     string
	moves       []string // ";W[dd]", ";B[]", ...
}

func NewRecord(boardSize int, started time.Time) (*Record, error) {
	if boardSize > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d", ErrBoardTooLarge, boardSize)
	}
	return &Record{
		BoardSize:   boardSize,
		PlayerBlack: "Random",
		PlayerWhite: "Player",
		Date:        started.Format("2006-01-02"),
		Result:      "?",
	}, nil
}

// coord converts 0-indexed board coordinates to an SGF letter pair.
// (0,0) -> "aa", (3,4) -> "de", (26,0) -> "Aa".
func coord(x, y int) string {
	return string(letter(x)) + string(letter(y))
}

func letter(i int) rune {
	if i < 26 {
		return rune('a' + i)
	}
	return rune('A' + i - 26)
}

func colorChar(color game.TileState) (string, error) {
	switch color {
	case game.Black:
		return "B", nil
	case game.White:
		return "W", nil
	}
	return "", fmt.Errorf("%w: %s", game.ErrInvalidColor, color)
}

// AddMove appends a stone placement.
func (r *Record) AddMove(color game.TileState, pos game.Position) error {
	c, err := colorChar(color)
	if err != nil {
		return err
	}
	if pos.X < 0 || pos.Y < 0 || pos.X >= r.BoardSize || pos.Y >= r.BoardSize {
		return fmt.Errorf("%w: %s", game.ErrOutOfBounds, pos)
	}
	r.moves = append(r.moves, fmt.Sprintf(";%s[%s]", c, coord(pos.X, pos.Y)))
	return nil
}

// AddPass appends a pass, written as an empty move.
func (r *Record) AddPass(color game.TileState) error {
	c, err := colorChar(color)
	if err != nil {
		return err
	}
	r.moves = append(r.moves, fmt.Sprintf(";%s[]", c))
	return nil
}

func (r *Record) Len() int {
	return len(r.moves)
}

// SetFinish fills RE and GC from a finish reason. Games here are not
// scored, so only forfeits by the human produce a winner.
func (r *Record) SetFinish(reason string) {
	r.Comment = reason
	switch reason {
	case "illegal_move":
		r.Result = "B+F"
	case "idle":
		r.Result = "B+T"
	default:
		r.Result = "?"
	}
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "]", `\]`)
}

func (r *Record) String() string {
	var b strings.Builder

	b.WriteString("(;GM[1]FF[4]CA[UTF-8]")
	b.WriteString("AP[gomind:1.0]")
	b.WriteString(fmt.Sprintf("SZ[%d]", r.BoardSize))
	b.WriteString(fmt.Sprintf("PB[%s]", escape(r.PlayerBlack)))
	b.WriteString(fmt.Sprintf("PW[%s]", escape(r.PlayerWhite)))
	if r.Date != "" {
		b.WriteString(fmt.Sprintf("DT[%s]", r.Date))
	}
	b.WriteString(fmt.Sprintf("RE[%s]", escape(r.Result)))
	if r.Comment != "" {
		b.WriteString(fmt.Sprintf("GC[%s]", escape(r.Comment)))
	}
	b.WriteString("\n")

	for _, m := range r.moves {
		b.WriteString(m)
	}
	b.WriteString(")\n")
	return b.String()
}

func (r *Record) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
