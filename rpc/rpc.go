package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/gomind/logger"
	"github.com/wfunc/gomind/models"
	"github.com/wfunc/gomind/services"
	"github.com/wfunc/gomind/session"
)

const callTimeout = 5 * time.Second

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers service as "GameService".
func NewServer(addr string, service *GameService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("GameService", service); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      srv,
	}, nil
}

func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests. It returns once the listener is
// closed.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes game records and live sessions over net/rpc.
type GameService struct {
	records  *services.RecordService
	sessions *session.Manager
}

func NewGameService(records *services.RecordService, sessions *session.Manager) *GameService {
	return &GameService{records: records, sessions: sessions}
}

type GetStatsArgs struct {
	IncludeActive bool
}

type GetStatsReply struct {
	Stats          models.GameStats
	ActiveSessions int
}

func (gs *GameService) GetStats(args *GetStatsArgs, reply *GetStatsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	stats, err := gs.records.GetStats(ctx)
	if err != nil {
		return err
	}
	reply.Stats = *stats
	if args.IncludeActive {
		reply.ActiveSessions = gs.sessions.Count()
	}
	return nil
}

type GetGameArgs struct {
	SessionID string
}

type GetGameReply struct {
	Record models.GameRecord
}

func (gs *GameService) GetGame(args *GetGameArgs, reply *GetGameReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	record, err := gs.records.GetGame(ctx, args.SessionID)
	if err != nil {
		return err
	}
	reply.Record = *record
	return nil
}

type ListSessionsArgs struct {
	// Limit caps the number of sessions returned; 0 returns all.
	Limit int
}

type ListSessionsReply struct {
	Sessions []session.Info
}

func (gs *GameService) ListSessions(args *ListSessionsArgs, reply *ListSessionsReply) error {
	all := gs.sessions.All()
	if args.Limit > 0 && len(all) > args.Limit {
		all = all[:args.Limit]
	}
	for _, s := range all {
		reply.Sessions = append(reply.Sessions, s.Info())
	}
	return nil
}
