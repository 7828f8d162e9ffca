// Package gateway streams plan lifecycle events to UI clients over
// websockets. It is a read-only surface: approval and execution stay on the
// in-process engine API.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/zereraz/igne-sub002/pkg/planner"
)

// Config holds gateway server configuration
type Config struct {
	Port           int
	Engine         *planner.Engine
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// Server is the websocket event gateway
type Server struct {
	port           int
	engine         *planner.Engine
	metricsHandler http.Handler
	upgrader       websocket.Upgrader
	server         *http.Server
	logger         zerolog.Logger

	mu          sync.Mutex
	clients     map[string]*client
	unsubscribe func()
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// NewServer creates a gateway server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("plan engine is required")
	}

	return &Server{
		port:           cfg.Port,
		engine:         cfg.Engine,
		metricsHandler: cfg.MetricsHandler,
		logger:         cfg.Logger,
		clients:        make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local UI only
			},
		},
	}, nil
}

// Start begins serving and subscribes to plan events
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	s.unsubscribe = s.engine.Subscribe(s.broadcast)

	s.logger.Info().Int("port", s.port).Msg("Starting gateway")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Gateway server error")
		}
	}()

	return nil
}

// Stop unsubscribes from the engine, closes all client connections and
// shuts the HTTP server down
func (s *Server) Stop() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	s.mu.Lock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown gateway: %w", err)
		}
	}

	s.logger.Info().Msg("Gateway stopped")
	return nil
}

// Handler exposes the websocket upgrade endpoint for tests
func (s *Server) Handler() http.HandlerFunc {
	return s.handleWebSocket
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	clientID, _ := gonanoid.New()
	c := &client{id: clientID, conn: conn}

	s.mu.Lock()
	s.clients[clientID] = c
	s.mu.Unlock()

	s.logger.Debug().Str("client_id", clientID).Msg("Gateway client connected")

	// drain reads so pings/closes are processed; clients never send commands
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
			conn.Close()
			s.logger.Debug().Str("client_id", clientID).Msg("Gateway client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcast(evt planner.Event) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(evt); err != nil {
			s.logger.Debug().
				Str("client_id", c.id).
				Err(err).
				Msg("Dropping unreachable gateway client")
			s.mu.Lock()
			delete(s.clients, c.id)
			s.mu.Unlock()
			c.conn.Close()
		}
	}
}
