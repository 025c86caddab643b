package services

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gomind/game"
	"github.com/wfunc/gomind/network"
	"github.com/wfunc/gomind/persistence"
	"github.com/wfunc/gomind/session"
	"github.com/wfunc/gomind/state"
)

type nopConn struct{}

func (nopConn) ReadMessage() (*network.Message, error) { return nil, net.ErrClosed }
func (nopConn) SendText(string) error                  { return nil }
func (nopConn) SendClose(int, string) error            { return nil }
func (nopConn) SendPong([]byte) error                  { return nil }
func (nopConn) Close() error                           { return nil }
func (nopConn) RemoteAddr() net.Addr                   { return &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 9} }
func (nopConn) SetHeartbeat(time.Duration)             {}

func TestBuildRecord(t *testing.T) {
	g := state.NewGame(state.Config{BoardSize: 2}, game.ScanPolicy{})
	require.False(t, g.HandleMessage("0,0").Finished)
	out := g.HandleMessage("0,1")
	require.Equal(t, state.ReasonBoardFull, out.Reason)

	record := BuildRecord("s1", "10.0.0.1:9", g)

	assert.Equal(t, "s1", record.SessionID)
	assert.Equal(t, "board_full", record.Reason)
	assert.Equal(t, 2, record.BoardSize)
	assert.Equal(t, "simultaneous", record.CaptureRule)
	assert.Equal(t, 4, record.Moves)
	assert.Equal(t, 2, record.WhiteStones)
	assert.Equal(t, 2, record.BlackStones)
	assert.Equal(t, "WB\nWB\n", record.FinalBoard)
	assert.False(t, record.EndedAt.IsZero())
	assert.True(t, strings.HasSuffix(record.SGF, ";W[aa];B[ba];W[ab];B[bb])\n"), record.SGF)
	assert.Contains(t, record.SGF, "GC[board_full]")
}

func TestBuildRecord_LargeBoardHasNoSGF(t *testing.T) {
	g := state.NewGame(state.Config{BoardSize: 60}, game.ScanPolicy{})
	g.Finish(state.ReasonDisconnected)

	record := BuildRecord("big", "", g)

	assert.Equal(t, 60, record.BoardSize)
	assert.Empty(t, record.SGF)
}

func TestRecordService(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(persistence.NewMemory())

	g := state.NewGame(state.Config{BoardSize: 5}, game.ScanPolicy{})
	g.HandleMessage("pass")
	g.HandleMessage("9,9")
	sess := session.NewSession("s1", nopConn{}, g)

	record, err := svc.RecordSession(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "illegal_move", record.Reason)
	assert.Equal(t, "10.0.0.1:9", record.RemoteAddr)
	assert.Contains(t, record.SGF, ";W[];B[aa]")
	assert.Contains(t, record.SGF, "RE[B+F]")

	loaded, err := svc.GetGame(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, record.SGF, loaded.SGF)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, 1, stats.ByReason["illegal_move"])

	_, err = svc.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrRecordNotFound)
}
