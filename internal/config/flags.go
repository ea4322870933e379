package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "LOUPGAROU"

// BindFlags registers every setting on flags, with c's current values as defaults.
func BindFlags(flags *pflag.FlagSet, c *Config) {
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags.StringVar(&c.Env, "env", c.Env, "deployment environment, dev|prod (env: LOUPGAROU_ENV)")
	flags.StringVar(&c.Log.Format, "log-format", c.Log.Format, "log format, text|json (env: LOUPGAROU_LOG_FORMAT)")
	flags.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level, debug|info|warn|error (env: LOUPGAROU_LOG_LEVEL)")

	flags.StringVarP(&c.HTTP.Addr, "addr", "a", c.HTTP.Addr, "address to listen on (env: LOUPGAROU_ADDR)")
	flags.DurationVar(&c.HTTP.ReadHeaderTimeout, "read-header-timeout", c.HTTP.ReadHeaderTimeout, "http read header timeout (env: LOUPGAROU_READ_HEADER_TIMEOUT)")
	flags.DurationVar(&c.HTTP.ReadTimeout, "read-timeout", c.HTTP.ReadTimeout, "http read timeout, 0 disables (env: LOUPGAROU_READ_TIMEOUT)")
	flags.DurationVar(&c.HTTP.WriteTimeout, "write-timeout", c.HTTP.WriteTimeout, "http write timeout, 0 disables (env: LOUPGAROU_WRITE_TIMEOUT)")
	flags.DurationVar(&c.HTTP.IdleTimeout, "idle-timeout", c.HTTP.IdleTimeout, "http idle timeout (env: LOUPGAROU_IDLE_TIMEOUT)")
	flags.DurationVar(&c.HTTP.ShutdownTimeout, "shutdown-timeout", c.HTTP.ShutdownTimeout, "graceful shutdown timeout (env: LOUPGAROU_SHUTDOWN_TIMEOUT)")
	flags.StringVar(&c.HTTP.StaticDir, "static-dir", c.HTTP.StaticDir, "directory of front-end files to serve (env: LOUPGAROU_STATIC_DIR)")
	flags.StringVar(&c.HTTP.PublicBaseURL, "public-url", c.HTTP.PublicBaseURL, "base url used in invitation links (env: LOUPGAROU_PUBLIC_URL)")
	flags.StringSliceVar(&c.HTTP.AllowedOrigins, "allowed-origins", c.HTTP.AllowedOrigins, "websocket origins to accept, empty accepts all (env: LOUPGAROU_ALLOWED_ORIGINS)")

	flags.StringVar(&c.Redis.Addr, "redis-addr", c.Redis.Addr, "redis address for role tokens, empty keeps them in memory (env: LOUPGAROU_REDIS_ADDR)")
	flags.IntVar(&c.Redis.DB, "redis-db", c.Redis.DB, "redis database (env: LOUPGAROU_REDIS_DB)")

	flags.DurationVar(&c.Rooms.Retention, "room-retention", c.Rooms.Retention, "age after which a room is deleted (env: LOUPGAROU_ROOM_RETENTION)")
	flags.DurationVar(&c.Rooms.SweepInterval, "sweep-interval", c.Rooms.SweepInterval, "how often expired rooms are swept (env: LOUPGAROU_SWEEP_INTERVAL)")

	flags.IntVar(&c.WS.SendBuffer, "ws-send-buffer", c.WS.SendBuffer, "queued messages per connection before it is dropped (env: LOUPGAROU_WS_SEND_BUFFER)")
	flags.Float64Var(&c.WS.RateLimit, "ws-rate", c.WS.RateLimit, "inbound messages per second per connection (env: LOUPGAROU_WS_RATE)")
	flags.IntVar(&c.WS.RateBurst, "ws-burst", c.WS.RateBurst, "inbound message burst per connection (env: LOUPGAROU_WS_BURST)")
	flags.DurationVar(&c.WS.PingInterval, "ws-ping-interval", c.WS.PingInterval, "websocket ping interval (env: LOUPGAROU_WS_PING_INTERVAL)")
}

// ApplyEnv copies LOUPGAROU_* variables onto flags not set on the command line.
func ApplyEnv(flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		val := v.GetString(f.Name)
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			errs = append(errs, sv.Replace(splitList(val)))
			return
		}
		if err := flags.Set(f.Name, val); err != nil {
			errs = append(errs, fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err))
		}
	})
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadDotEnv loads variables from the given files; missing files are skipped.
// Variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
