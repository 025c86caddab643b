package server

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wfunc/gomind/broadcast"
	"github.com/wfunc/gomind/cache"
	"github.com/wfunc/gomind/config"
	"github.com/wfunc/gomind/game"
	"github.com/wfunc/gomind/logger"
	"github.com/wfunc/gomind/monitor"
	"github.com/wfunc/gomind/network"
	gomind_rpc "github.com/wfunc/gomind/rpc"
	"github.com/wfunc/gomind/services"
	"github.com/wfunc/gomind/session"
	"github.com/wfunc/gomind/state"
	"github.com/wfunc/gomind/timer"
)

const storeTimeout = 5 * time.Second

var ErrShuttingDown = errors.New("server is shutting down")

// Options wires a GameServer. Zero-valued collaborators fall back to
// in-process defaults.
type Options struct {
	Server config.ServerConfig
	Game   state.Config
	// NewPolicy returns the opponent of a new session.
	NewPolicy func() game.Policy
	Records   *services.RecordService
	Snapshots cache.SnapshotStore
	Monitor   *monitor.Monitor
}

type GameServer struct {
	cfg       config.ServerConfig
	gameCfg   state.Config
	newPolicy func() game.Policy

	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	records        *services.RecordService
	snapshots      cache.SnapshotStore
	monitor        *monitor.Monitor
	broadcaster    broadcast.Broadcaster
	timers         *timer.TimerManager

	httpServer   *http.Server
	rpcServer    *gomind_rpc.Server
	healthServer *gomind_rpc.HealthServer

	mutex        sync.Mutex
	shuttingDown bool
	sessions     sync.WaitGroup
	shutdownOnce sync.Once
}

func NewGameServer(opts Options) *GameServer {
	if opts.NewPolicy == nil {
		opts.NewPolicy = func() game.Policy { return game.NewRandomPolicy(0) }
	}
	if opts.Snapshots == nil {
		opts.Snapshots = cache.NoopStore{}
	}
	if opts.Monitor == nil {
		opts.Monitor = monitor.NewMonitor("gomind")
	}

	s := &GameServer{
		cfg:            opts.Server,
		gameCfg:        opts.Game,
		newPolicy:      opts.NewPolicy,
		sessionManager: session.NewManager(),
		records:        opts.Records,
		snapshots:      opts.Snapshots,
		monitor:        opts.Monitor,
		timers:         timer.NewTimerManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessionManager)
	s.httpServer = &http.Server{
		Addr:    opts.Server.HTTPAddress,
		Handler: s.Handler(),
	}
	return s
}

func (s *GameServer) Sessions() *session.Manager {
	return s.sessionManager
}

// Handler serves /ws, /metrics, /healthz and /debug/vars.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", s.monitor.Handler())
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start runs the RPC and health listeners, the idle reaper and the HTTP
// server. It blocks until Shutdown.
func (s *GameServer) Start() error {
	if s.cfg.RPCAddress != "" && s.records != nil {
		rpcServer, err := gomind_rpc.NewServer(s.cfg.RPCAddress, gomind_rpc.NewGameService(s.records, s.sessionManager))
		if err != nil {
			return fmt.Errorf("rpc server: %w", err)
		}
		s.rpcServer = rpcServer
		go rpcServer.Start()
	}
	if s.cfg.HealthAddress != "" {
		healthServer, err := gomind_rpc.NewHealthServer(s.cfg.HealthAddress)
		if err != nil {
			return fmt.Errorf("health server: %w", err)
		}
		s.healthServer = healthServer
		go healthServer.Start()
	}

	s.startReaper()
	s.monitor.PublishExpvar()

	listener, err := net.Listen("tcp", s.cfg.HTTPAddress)
	if err != nil {
		return err
	}
	logger.Log.Infof("Game server listening on %s", listener.Addr())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *GameServer) startReaper() {
	if s.cfg.IdleTimeout <= 0 {
		return
	}
	interval := s.cfg.IdleCheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	s.timers.AddTimer(interval, interval, s.reapIdle)
}

// reapIdle ends every session silent for longer than the idle timeout.
func (s *GameServer) reapIdle() {
	idle := s.sessionManager.Idle(s.cfg.IdleTimeout)
	if len(idle) == 0 {
		return
	}
	n := s.broadcaster.CloseSessions(idle, state.ReasonIdle, websocket.CloseGoingAway)
	logger.Log.Infof("Reaped %d idle sessions", n)
}

// Shutdown stops accepting connections, ends every running game with
// reason shutdown and waits for the session goroutines until ctx expires.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mutex.Lock()
		s.shuttingDown = true
		s.mutex.Unlock()

		if s.healthServer != nil {
			s.healthServer.SetServing(false)
		}
		s.timers.Stop()

		err = s.httpServer.Shutdown(ctx)

		n := s.broadcaster.CloseAll(state.ReasonShutdown, websocket.CloseGoingAway)
		logger.Log.Infof("Closed %d sessions for shutdown", n)

		done := make(chan struct{})
		go func() {
			s.sessions.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}

		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		if s.healthServer != nil {
			s.healthServer.Stop()
		}
	})
	return err
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	down := s.shuttingDown
	s.mutex.Unlock()

	if down {
		http.Error(w, ErrShuttingDown.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	if s.shuttingDown {
		s.mutex.Unlock()
		http.Error(w, ErrShuttingDown.Error(), http.StatusServiceUnavailable)
		return
	}
	s.sessions.Add(1)
	s.mutex.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.sessions.Done()
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	defer s.sessions.Done()

	wsConn := network.NewWSConnection(conn)
	wsConn.SetReadLimit(s.cfg.ReadLimit)
	wsConn.SetHeartbeat(s.cfg.Heartbeat)

	id := uuid.New().String()
	log := logger.Log.With("session", id)

	g := state.NewGame(s.gameCfg, s.newPolicy())
	g.SetLogger(log)
	sess := session.NewSession(id, wsConn, g)
	s.sessionManager.Add(sess)
	s.monitor.IncSessions()

	log.Infof("New connection from %s", sess.RemoteAddr)

	defer s.endSession(sess, log)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Session panicked: %v", r)
			if sess.Finish(state.ReasonInternalError) {
				wsConn.SendClose(websocket.CloseInternalServerErr, string(state.ReasonInternalError))
			}
		}
	}()

	for {
		msg, err := wsConn.ReadMessage()
		if err != nil {
			if sess.Finish(state.ReasonDisconnected) {
				log.Infof("Connection lost: %v", err)
			}
			return
		}

		switch msg.Type {
		case network.MessageClose:
			sess.Finish(state.ReasonDisconnected)
			wsConn.SendClose(websocket.CloseNormalClosure, "")
			return
		case network.MessageBinary:
			log.Debugf("Ignoring binary message of %d bytes", len(msg.Data))
		case network.MessageText:
			if done := s.handleText(sess, log, string(msg.Data)); done {
				return
			}
		}
	}
}

// handleText runs one turn and writes its outcome. It reports whether the
// connection is done.
func (s *GameServer) handleText(sess *session.Session, log *zap.SugaredLogger, text string) bool {
	start := time.Now()
	s.monitor.IncMessages()

	var out state.Outcome
	capturedBefore := make(map[game.TileState]int, 2)
	capturedAfter := make(map[game.TileState]int, 2)
	sess.Touch()
	sess.WithGame(func(g *state.Game) {
		for _, c := range []game.TileState{game.White, game.Black} {
			capturedBefore[c] = g.Captured(c)
		}
		out = g.HandleMessage(text)
		for _, c := range []game.TileState{game.White, game.Black} {
			capturedAfter[c] = g.Captured(c)
		}
	})
	s.monitor.ObserveTurnLatency(time.Since(start))

	if errors.Is(out.Err, state.ErrGameFinished) {
		return true
	}
	if errors.Is(out.Err, game.ErrParse) {
		s.monitor.IncParseErrors()
	}
	for _, m := range out.Moves {
		s.monitor.IncMoves(m.Color.String())
	}
	for c, n := range capturedAfter {
		s.monitor.AddCaptured(c.String(), n-capturedBefore[c])
	}

	if out.Reply != "" {
		if err := sess.Send(out.Reply); err != nil {
			if sess.Finish(state.ReasonDisconnected) {
				log.Infof("Failed to send board: %v", err)
			}
			return true
		}
	}
	if !out.Finished {
		s.saveSnapshot(sess, log)
		return false
	}

	if err := sess.Conn.SendClose(closeCode(out.Reason), string(out.Reason)); err != nil {
		log.Debugf("Failed to send close frame: %v", err)
	}
	return true
}

func closeCode(reason state.Reason) int {
	switch reason {
	case state.ReasonIllegalMove:
		return websocket.ClosePolicyViolation
	case state.ReasonShutdown, state.ReasonIdle:
		return websocket.CloseGoingAway
	case state.ReasonInternalError:
		return websocket.CloseInternalServerErr
	}
	return websocket.CloseNormalClosure
}

func (s *GameServer) saveSnapshot(sess *session.Session, log *zap.SugaredLogger) {
	var snapshot cache.Snapshot
	sess.WithGame(func(g *state.Game) {
		snapshot = cache.Snapshot{
			SessionID: sess.ID,
			Phase:     g.Phase(),
			Board:     g.Board().String(),
			Turns:     g.Turns(),
			Moves:     len(g.History()),
			UpdatedAt: time.Now(),
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.snapshots.Save(ctx, &snapshot); err != nil {
		log.Warnf("Failed to save snapshot: %v", err)
	}
}

func (s *GameServer) endSession(sess *session.Session, log *zap.SugaredLogger) {
	sess.Finish(state.ReasonDisconnected)
	s.sessionManager.Remove(sess.ID)
	s.monitor.DecSessions()

	var reason state.Reason
	sess.WithGame(func(g *state.Game) { reason = g.Reason() })
	s.monitor.IncGamesFinished(string(reason))

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.snapshots.Delete(ctx, sess.ID); err != nil {
		log.Warnf("Failed to delete snapshot: %v", err)
	}
	if s.records != nil {
		if _, err := s.records.RecordSession(ctx, sess); err != nil {
			log.Errorf("Failed to record game: %v", err)
		}
	}

	sess.Close()
	log.Infof("Connection closed from %s: %s", sess.RemoteAddr, reason)
}
