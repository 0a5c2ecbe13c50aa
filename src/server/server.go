// Package server exposes the dashboard over REST and a websocket feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/symbols"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var _ interfaces.IDataExchanger = (*DashboardServer)(nil)

// -----------------------------------------------------------------------------
// Dependencies
// -----------------------------------------------------------------------------

// Controller is the part of the refresh controller the server drives.
type Controller interface {
	Snapshot() models.MSnapshot
	WatchList() []string
	SetWatchList(list []string) []string
	UseAlternate() bool
	SetUseAlternate(enabled bool)
	Refresh(ctx context.Context) (models.MSnapshot, error)
}

type ProviderDirectory interface {
	DescribeAll() []models.MProviderInfo
	Get(name string) (interfaces.IProvider, error)
}

type HistoryStore interface {
	SaveWatchList(ctx context.Context, symbols []string) error
	RecentSnapshots(ctx context.Context, limit int) ([]models.MSnapshotRecord, error)
}

// SelfTestLog keeps self-test results per provider.
type SelfTestLog interface {
	Record(result models.MSelfTestResult)
	Latest() map[string]models.MSelfTestResult
}

type Options struct {
	Host           string
	Port           int
	Debug          bool
	AllowedOrigins []string // origin prefixes, e.g. "http://localhost:"
	Controller     Controller
	Providers      ProviderDirectory
	Store          HistoryStore
	SelfTests      SelfTestLog
	Mapper         *symbols.Mapper
	Mounts         map[string]http.Handler // path prefix -> handler
	Logger         *logger.Logger
}

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Logger *logger.Logger
	opts   Options
	engine *gin.Engine
	hub    *Hub
	http   *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	addr   net.Addr
	wg     sync.WaitGroup
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func New(opts Options) *DashboardServer {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://127.0.0.1:", "http://localhost:"}
	}
	if opts.Mapper == nil {
		opts.Mapper = symbols.NewMapper(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DashboardServer{
		Logger: opts.Logger,
		opts:   opts,
		engine: gin.New(),
		hub:    NewHub(opts.Logger.Named("Hub")),
		ctx:    ctx,
		cancel: cancel,
	}

	s.engine.Use(gin.Recovery(), s.requestLog(), s.cors())
	s.setupRoutes()

	snap := opts.Controller.Snapshot()
	s.hub.Publish(models.MServerMessage{Type: "snapshot", Snapshot: &snap})
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *DashboardServer) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		for _, prefix := range s.opts.AllowedOrigins {
			if strings.HasPrefix(origin, prefix) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *DashboardServer) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/snapshot", s.getSnapshot)
	api.GET("/quotes", s.getQuotes)
	api.GET("/trending", s.getTrending)
	api.GET("/summary", s.getSummary)
	api.GET("/watchlist", s.getWatchList)
	api.PUT("/watchlist", s.putWatchList)
	api.GET("/watchlist/search", s.searchWatchList)
	api.PUT("/alternate", s.putAlternate)
	api.POST("/refresh", s.postRefresh)
	api.GET("/providers", s.getProviders)
	api.POST("/providers/:name/selftest", s.postSelfTest)
	api.GET("/history", s.getHistory)

	s.engine.GET("/ws", s.handleWebSocket)

	for prefix, h := range s.opts.Mounts {
		prefix = strings.TrimRight(prefix, "/")
		s.engine.Any(prefix+"/*path", gin.WrapH(h))
	}
}

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start binds the listener and serves in the background.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.http = &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	srv := s.http
	s.mu.Unlock()

	s.Logger.Info("Starting server on %s", ln.Addr())

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("Server stopped: %v", err)
		}
	}()
	return nil
}

// Addr is the bound address once Start returned.
func (s *DashboardServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.wg.Wait()
	return err
}

// -----------------------------------------------------------------------------
// Snapshot sink
// -----------------------------------------------------------------------------

func (s *DashboardServer) Name() string {
	return "websocket"
}

// Publish hands the snapshot to the hub and returns immediately.
func (s *DashboardServer) Publish(_ context.Context, snap models.MSnapshot) error {
	clone := snap.Clone()
	s.hub.Publish(models.MServerMessage{Type: "snapshot", Snapshot: &clone})
	return nil
}

// -----------------------------------------------------------------------------
// WebSocket
// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:     uuid.NewString()[:8],
		server: s,
		conn:   conn,
		send:   make(chan models.MServerMessage, clientQueue),
	}
	if !s.hub.Register(client) {
		conn.Close()
		return
	}
	s.Logger.Debug("Client %s connected from %s", client.id, c.ClientIP())

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------

// handleCommand applies one websocket command. Results reach the client
// through the next published snapshot.
func (s *DashboardServer) handleCommand(cmd models.MClientCommand) error {
	switch cmd.Command {
	case models.CommandSetWatchList:
		s.applyWatchList(s.ctx, cmd.Symbols)
	case models.CommandSetAlternate:
		if cmd.Enabled == nil {
			return errors.New("setAlternate requires 'enabled'")
		}
		s.opts.Controller.SetUseAlternate(*cmd.Enabled)
	case models.CommandRefresh:
		go func() {
			if _, err := s.opts.Controller.Refresh(s.ctx); err != nil {
				s.Logger.Info("Refresh requested over websocket failed: %v", err)
			}
		}()
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
	return nil
}

// applyWatchList updates the controller and persists the normalized list.
func (s *DashboardServer) applyWatchList(ctx context.Context, list []string) []string {
	normalized := s.opts.Controller.SetWatchList(list)
	if s.opts.Store != nil {
		if err := s.opts.Store.SaveWatchList(ctx, normalized); err != nil {
			s.Logger.Error("Failed to persist watch-list: %v", err)
		}
	}
	return normalized
}
