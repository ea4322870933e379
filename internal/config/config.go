package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"example.com/loupgarou/internal/room"
)

// Config describes all runtime settings for the server.
type Config struct {
	Env string // dev|prod

	Log struct {
		Format string // text|json
		Level  string // debug|info|warn|error
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
		StaticDir         string
		PublicBaseURL     string
		AllowedOrigins    []string
	}

	Redis struct {
		Addr string // empty => role tokens stay in memory
		DB   int
	}

	Rooms struct {
		Retention     time.Duration
		SweepInterval time.Duration
	}

	WS struct {
		SendBuffer   int
		RateLimit    float64
		RateBurst    int
		PingInterval time.Duration
	}
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http addr is empty")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported log format %q (want text|json)", c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Rooms.Retention <= 0 {
		return fmt.Errorf("room retention must be positive, got %s", c.Rooms.Retention)
	}
	if c.Rooms.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Rooms.SweepInterval)
	}
	if c.WS.SendBuffer < 1 {
		return fmt.Errorf("ws send buffer must be at least 1, got %d", c.WS.SendBuffer)
	}
	if c.WS.RateLimit <= 0 || c.WS.RateBurst < 1 {
		return fmt.Errorf("ws rate limit must be positive (rate=%v burst=%d)", c.WS.RateLimit, c.WS.RateBurst)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis db must not be negative, got %d", c.Redis.DB)
	}
	if c.HTTP.PublicBaseURL != "" {
		u, err := url.Parse(c.HTTP.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("public base url %q must be absolute", c.HTTP.PublicBaseURL)
		}
	}
	return nil
}

// Defaults returns a Config with every setting at its flag default.
func Defaults() Config {
	var c Config
	c.Env = "dev"
	c.Log.Format = "text"
	c.Log.Level = "info"

	c.HTTP.Addr = ":8080"
	c.HTTP.ReadHeaderTimeout = 5 * time.Second
	c.HTTP.IdleTimeout = 60 * time.Second
	c.HTTP.ShutdownTimeout = 10 * time.Second

	c.Rooms.Retention = room.DefaultRetention
	c.Rooms.SweepInterval = 10 * time.Minute

	c.WS.SendBuffer = 64
	c.WS.RateLimit = 20
	c.WS.RateBurst = 40
	c.WS.PingInterval = 25 * time.Second
	return c
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q: %w", s, err)
	}
	return l, nil
}
