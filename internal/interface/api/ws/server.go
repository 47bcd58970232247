package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
)

const writeTimeout = 5 * time.Second

// Subscriber is the part of the event bus the server listens to.
type Subscriber interface {
	Subscribe(topic string) (<-chan any, func())
}

// Server streams bus events to websocket clients on /ws/events and serves
// the read-only JSON API.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	bus      Subscriber
	log      zerolog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	httpSrv *http.Server

	api *apiHandlers
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func NewServer(cfg Config) *Server {
	s := &Server{
		addr: cfg.Addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bus:     cfg.Bus,
		log:     cfg.Logger.With().Str("component", "ws").Logger(),
		clients: make(map[*wsClient]struct{}),
	}
	s.api = newAPIHandlers(cfg, s.ClientCount)
	return s
}

// Handler serves /ws/events and /api/*.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	s.api.register(mux)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			setCORSHeaders(w)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		mux.ServeHTTP(w, r)
	})
}

// Start relays bus events and serves HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.bus != nil {
		s.relay(ctx)
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn().Err(err).Msg("shutdown error")
		}
		s.closeClients()
	}()

	s.log.Info().Str("addr", s.addr).Msg("status api listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// relay starts one goroutine per topic that wraps events in an Envelope and
// broadcasts them.
func (s *Server) relay(ctx context.Context) {
	for _, topic := range events.Topics {
		ch, unsubscribe := s.bus.Subscribe(topic)
		go func(topic string, ch <-chan any, unsubscribe func()) {
			defer unsubscribe()
			for {
				select {
				case <-ctx.Done():
					return
				case payload, ok := <-ch:
					if !ok {
						return
					}
					s.Broadcast(ctx, events.NewEnvelope(topic, payload))
				}
			}
		}(topic, ch, unsubscribe)
	}
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade error")
		return
	}

	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	clientCount := len(s.clients)
	s.mu.Unlock()

	s.log.Info().Str("remote", r.RemoteAddr).Int("clients", clientCount).Msg("client connected")

	go s.handleClient(ctx, client)
}

// handleClient only reads to notice close frames; clients cannot send
// anything the server acts on.
func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	defer s.removeClient(client)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := client.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("read error")
			}
			return
		}
	}
}

// Broadcast sends v to every connected client, dropping clients that fail.
func (s *Server) Broadcast(ctx context.Context, v any) {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if ctx.Err() != nil {
			return
		}
		if err := c.writeJSON(v); err != nil {
			s.log.Warn().Err(err).Msg("removing client due to write error")
			s.removeClient(c)
		}
	}
}

func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) removeClient(c *wsClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	clientCount := len(s.clients)
	s.mu.Unlock()
	if !ok {
		return
	}
	c.conn.Close()
	s.log.Info().Int("clients", clientCount).Msg("client disconnected")
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*wsClient]struct{})
	s.mu.Unlock()
	for c := range clients {
		c.conn.Close()
	}
}
