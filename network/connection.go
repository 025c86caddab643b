// network/connection.go
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType is the kind of frame surfaced to the session loop.
type MessageType int

const (
	MessageText MessageType = iota
	MessageBinary
	MessageClose
)

const writeWait = 5 * time.Second

type Message struct {
	Type MessageType
	Data []byte
	// CloseCode is set for MessageClose.
	CloseCode int
}

type Connection interface {
	ReadMessage() (*Message, error)
	SendText(text string) error
	SendClose(code int, reason string) error
	SendPong(payload []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
	closeCode int
	closed    bool

	pingOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// NewWSConnection wraps conn. Pings are answered with pongs and extend the
// read deadline; a close frame from the peer is reported by ReadMessage.
func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{conn: conn, done: make(chan struct{})}
	conn.SetPingHandler(func(payload string) error {
		c.extendDeadline()
		err := c.SendPong([]byte(payload))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(string) error {
		c.extendDeadline()
		return nil
	})
	conn.SetCloseHandler(func(code int, text string) error {
		c.closeCode = code
		c.closed = true
		return nil
	})
	return c
}

// SetReadLimit caps the size of a single incoming message.
func (c *WSConnection) SetReadLimit(limit int64) {
	if limit > 0 {
		c.conn.SetReadLimit(limit)
	}
}

func (c *WSConnection) ReadMessage() (*Message, error) {
	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		if c.closed {
			return &Message{Type: MessageClose, CloseCode: c.closeCode}, nil
		}
		return nil, err
	}
	c.extendDeadline()

	if msgType == websocket.BinaryMessage {
		return &Message{Type: MessageBinary, Data: data}, nil
	}
	return &Message{Type: MessageText, Data: data}, nil
}

func (c *WSConnection) SendText(text string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *WSConnection) SendClose(code int, reason string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	return c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func (c *WSConnection) SendPong(payload []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	return c.conn.WriteControl(websocket.PongMessage, payload, time.Now().Add(writeWait))
}

// SendPing writes a ping control frame.
func (c *WSConnection) SendPing(payload []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, payload, time.Now().Add(writeWait))
}

// SetHeartbeat pings the peer every interval and expects some traffic
// (messages, pings or pongs) at least every 2*interval. Zero disables both.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.extendDeadline()
	if interval > 0 {
		c.pingOnce.Do(func() { go c.pingLoop(interval) })
	}
}

func (c *WSConnection) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.SendPing(nil); err != nil {
				return
			}
		}
	}
}

func (c *WSConnection) extendDeadline() {
	if c.heartbeat <= 0 {
		return
	}
	c.conn.SetReadDeadline(time.Now().Add(c.heartbeat * 2))
}

func (c *WSConnection) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
