package state

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/gomind/game"
	"github.com/wfunc/gomind/logger"
)

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrUnknownIllegalMove = errors.New("unknown illegal move policy")
)

// IllegalMovePolicy decides what an out-of-bounds or occupied human move does.
type IllegalMovePolicy string

const (
	IllegalMoveTerminate IllegalMovePolicy = "terminate"
	IllegalMoveReprompt  IllegalMovePolicy = "reprompt"
)

func ParseIllegalMovePolicy(s string) (IllegalMovePolicy, error) {
	switch IllegalMovePolicy(s) {
	case "", IllegalMoveTerminate:
		return IllegalMoveTerminate, nil
	case IllegalMoveReprompt:
		return IllegalMoveReprompt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIllegalMove, s)
}

// Reason explains why a game finished.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonIllegalMove   Reason = "illegal_move"
	ReasonBoardFull     Reason = "board_full"
	ReasonNoLegalMove   Reason = "no_legal_move"
	ReasonMoveLimit     Reason = "move_limit"
	ReasonDisconnected  Reason = "disconnected"
	ReasonIdle          Reason = "idle"
	ReasonShutdown      Reason = "shutdown"
	ReasonInternalError Reason = "internal_error"
)

// Config holds the per-game settings.
type Config struct {
	BoardSize   int
	Rules       game.Rules
	IllegalMove IllegalMovePolicy
	// MaxMoves caps the number of completed turns; 0 means no cap.
	MaxMoves int
}

// MoveRecord is one entry of the game history.
type MoveRecord struct {
	Color    game.TileState
	Pass     bool
	Position game.Position
	Captured int
}

// Outcome is the result of handling one client message.
type Outcome struct {
	// Reply is the text to send back, empty when nothing is sent.
	Reply    string
	Finished bool
	Reason   Reason
	Err      error
	// Moves lists the moves applied while handling the message.
	Moves []MoveRecord
}

// Game is the turn coordinator of one session. It is not safe for
// concurrent use; the owning session feeds it one message at a time.
type Game struct {
	cfg      Config
	board    *game.Board
	policy   game.Policy
	human    game.TileState
	opponent game.TileState

	machine StateMachine
	phases  map[string]*phaseState

	history   []MoveRecord
	captured  map[game.TileState]int
	turns     int
	reason    Reason
	startedAt time.Time
	endedAt   time.Time

	log *zap.SugaredLogger
}

func NewGame(cfg Config, policy game.Policy) *Game {
	if cfg.BoardSize <= 0 {
		cfg.BoardSize = game.DefaultBoardSize
	}
	if cfg.IllegalMove == "" {
		cfg.IllegalMove = IllegalMoveTerminate
	}
	if cfg.Rules.Capture == "" {
		cfg.Rules.Capture = game.CaptureSimultaneous
	}

	g := &Game{
		cfg:       cfg,
		board:     game.NewBoard(cfg.BoardSize),
		policy:    policy,
		human:     game.White,
		opponent:  game.Black,
		captured:  make(map[game.TileState]int, 2),
		startedAt: time.Now(),
		log:       logger.Log,
		phases:    make(map[string]*phaseState),
	}

	ids := []string{
		PhaseAwaitingHumanMove,
		PhaseResolvingHuman,
		PhaseAwaitingOpponentMove,
		PhaseResolvingOpponent,
		PhaseFinished,
	}
	for _, id := range ids {
		g.phases[id] = &phaseState{id: id, game: g}
	}

	g.machine = NewBaseStateMachine(g.phases[PhaseAwaitingHumanMove])
	finished := g.phases[PhaseFinished]
	for _, id := range ids {
		if id != PhaseFinished {
			g.machine.AddTransition(finished, g.phases[id], func() bool { return false })
		}
	}
	return g
}

// SetLogger replaces the logger, typically with one carrying the session ID.
func (g *Game) SetLogger(log *zap.SugaredLogger) {
	g.log = log
}

func (g *Game) Phase() string {
	return g.machine.GetCurrentState().GetID()
}

func (g *Game) IsFinished() bool {
	return g.Phase() == PhaseFinished
}

func (g *Game) Reason() Reason {
	return g.reason
}

func (g *Game) Config() Config {
	return g.cfg
}

// Board returns a copy of the current board.
func (g *Game) Board() *game.Board {
	return g.board.Clone()
}

func (g *Game) History() []MoveRecord {
	history := make([]MoveRecord, len(g.history))
	copy(history, g.history)
	return history
}

// Captured returns how many stones of color have been removed so far.
func (g *Game) Captured(color game.TileState) int {
	return g.captured[color]
}

// Turns returns the number of completed human+opponent turns.
func (g *Game) Turns() int {
	return g.turns
}

func (g *Game) StartedAt() time.Time {
	return g.startedAt
}

// EndedAt is zero while the game is running.
func (g *Game) EndedAt() time.Time {
	return g.endedAt
}

// HandleMessage runs one complete turn for a raw client message: parse,
// human move, captures, terminal check, opponent move, captures, terminal
// check.
func (g *Game) HandleMessage(text string) Outcome {
	if g.IsFinished() {
		return Outcome{Finished: true, Reason: g.reason, Err: ErrGameFinished}
	}

	move, err := game.ParseMove(text)
	if err != nil {
		g.log.Infof("Ignoring message: %v", err)
		return Outcome{Reply: g.board.String(), Err: err}
	}

	var applied []MoveRecord

	g.enter(PhaseResolvingHuman)
	if move.Pass {
		rec := MoveRecord{Color: g.human, Pass: true}
		g.history = append(g.history, rec)
		applied = append(applied, rec)
		g.log.Debugf("Human passed")
	} else {
		rec, full, err := g.place(move.Position, g.human)
		if err != nil {
			g.log.Infof("Illegal move %s: %v", move.Position, err)
			if g.cfg.IllegalMove == IllegalMoveReprompt {
				g.enter(PhaseAwaitingHumanMove)
				return Outcome{Reply: g.board.String(), Err: err}
			}
			return g.finish(ReasonIllegalMove, false, applied, err)
		}
		applied = append(applied, rec)
		if full {
			return g.finish(ReasonBoardFull, true, applied, nil)
		}
	}

	g.enter(PhaseAwaitingOpponentMove)
	if g.board.IsFull() {
		return g.finish(ReasonBoardFull, true, applied, nil)
	}
	pos, err := g.policy.ChooseMove(g.board, g.opponent, g.cfg.Rules)
	if err != nil {
		if !errors.Is(err, game.ErrNoLegalMove) {
			return g.finish(ReasonInternalError, true, applied, err)
		}
		if g.board.IsFull() {
			return g.finish(ReasonBoardFull, true, applied, nil)
		}
		return g.finish(ReasonNoLegalMove, true, applied, nil)
	}

	g.enter(PhaseResolvingOpponent)
	rec, full, err := g.place(pos, g.opponent)
	if err != nil {
		g.log.Errorf("Opponent policy returned illegal move %s: %v", pos, err)
		return g.finish(ReasonInternalError, true, applied, err)
	}
	applied = append(applied, rec)
	if full {
		return g.finish(ReasonBoardFull, true, applied, nil)
	}

	g.turns++
	if g.cfg.MaxMoves > 0 && g.turns >= g.cfg.MaxMoves {
		return g.finish(ReasonMoveLimit, true, applied, nil)
	}

	g.enter(PhaseAwaitingHumanMove)
	return Outcome{Reply: g.board.String(), Moves: applied}
}

// Finish ends the game from outside the turn loop, e.g. on disconnect. It
// returns false if the game had already finished.
func (g *Game) Finish(reason Reason) bool {
	if g.IsFinished() {
		return false
	}
	g.finish(reason, false, nil, nil)
	return true
}

// place validates and applies a stone. Under the simultaneous rule a stone
// on the last Empty cell completes the board: it is placed without a capture
// pass, since every group on a full board has zero liberties. The standard
// rule always resolves the move. full reports the filling move as well as a
// board that is still full after resolution.
func (g *Game) place(pos game.Position, color game.TileState) (rec MoveRecord, full bool, err error) {
	if err := game.ValidateMove(g.board, pos); err != nil {
		return MoveRecord{}, false, err
	}

	rec = MoveRecord{Color: color, Position: pos}
	if g.cfg.Rules.Capture == game.CaptureSimultaneous && g.board.EmptyCount() == 1 {
		if err := g.board.Set(pos, color); err != nil {
			return MoveRecord{}, false, err
		}
		g.history = append(g.history, rec)
		g.log.Debugf("Placing %s stone at %s fills the board", color, pos)
		return rec, true, nil
	}

	result, err := g.cfg.Rules.Apply(g.board, pos, color)
	if err != nil {
		return MoveRecord{}, false, err
	}
	for c, n := range result.CapturedStones {
		g.captured[c] += n
	}
	rec.Captured = len(result.Captured)
	g.history = append(g.history, rec)

	g.log.Debugf("Placed %s stone at %s, captured %d", color, pos, rec.Captured)
	return rec, g.board.IsFull(), nil
}

func (g *Game) finish(reason Reason, withBoard bool, applied []MoveRecord, err error) Outcome {
	g.reason = reason
	g.endedAt = time.Now()
	g.enter(PhaseFinished)
	g.log.Infof("Game over: %s after %d turns", reason, g.turns)

	out := Outcome{Finished: true, Reason: reason, Err: err, Moves: applied}
	if withBoard {
		out.Reply = g.board.String()
	}
	return out
}

func (g *Game) enter(id string) {
	if err := g.machine.ChangeState(g.phases[id]); err != nil {
		g.log.Errorf("Phase change %s -> %s: %v", g.Phase(), id, err)
	}
}
