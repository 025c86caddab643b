package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers the first move with a board and then ends the game.
func fakeServer(t *testing.T) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) != "1,1" {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte("B.\n.W\n"))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "board_full"))
		conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestRootCmd(t *testing.T) {
	addr := fakeServer(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--addr", addr})
	cmd.SetIn(strings.NewReader("\n1,1\n"))
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "B.\n.W\n")
	assert.Contains(t, out.String(), "Game over: board_full")
}
