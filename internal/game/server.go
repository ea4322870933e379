package game

import (
	"log/slog"
	"net/http"
	"time"

	"example.com/loupgarou/internal/room"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	DefaultSendBuffer   = 64
	DefaultPingInterval = 25 * time.Second
	maxMessageSize      = 4 << 10
	pongGrace           = 10 * time.Second
)

type Config struct {
	SendBuffer   int
	RateLimit    rate.Limit // inbound events per second, per connection
	RateBurst    int
	PingInterval time.Duration
	// PongWait is how long a silent peer is kept; 0 => PingInterval plus a grace period
	PongWait time.Duration
	// AllowedOrigins empty => any origin
	AllowedOrigins []string
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 20
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 40
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	return c
}

func (c Config) pongWait() time.Duration {
	if c.PongWait > 0 {
		return c.PongWait
	}
	return c.PingInterval + pongGrace
}

type Server struct {
	cfg      Config
	rooms    *room.Registry
	hub      *Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg Config, rooms *room.Registry, hub *Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:   cfg.withDefaults(),
		rooms: rooms,
		hub:   hub,
		log:   log,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

func (s *Server) RegisterRoutes(router *httprouter.Router) {
	router.GET("/ws", s.handleWS)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}
