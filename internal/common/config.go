package common

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Business  BusinessConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Queue     QueueConfig
	KV        KVConfig
	Features  map[string]bool
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	HealthTimeout    time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// BusinessConfig locates the yard used for geofencing and travel costs.
type BusinessConfig struct {
	Name                 string
	Address              string
	Latitude             float64
	Longitude            float64
	GeofenceRadiusMeters float64
	SettingsFile         string
}

// CacheConfig sizes the shared cache service.
type CacheConfig struct {
	Size            int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// RateLimitConfig is a fixed-window request budget per client and path.
// X-Forwarded-For is only honoured when the peer is a trusted proxy.
type RateLimitConfig struct {
	Window         time.Duration
	Max            int
	TrustedProxies []string // IPs or CIDRs
}

// QueueConfig sizes the XP award worker queue.
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// KVConfig selects the key-value backend for flags and XP snapshots.
type KVConfig struct {
	Backend string
	Path    string
}

const envPrefix = "FIELDOPS"

// LoadConfig loads configuration from defaults, an optional TOML file named by
// FIELDOPS_CONFIG, and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// historical names
	_ = v.BindEnv("database.dsn", envPrefix+"_DATABASE_DSN", "DB_URL")
	_ = v.BindEnv("server.grpc_addr", envPrefix+"_SERVER_GRPC_ADDR", "GRPC_ADDR")
	_ = v.BindEnv("server.http_addr", envPrefix+"_SERVER_HTTP_ADDR", "HTTP_ADDR")

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:           v.GetString("database.driver"),
			DSN:              v.GetString("database.dsn"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			MaxConnLifetime:  v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("database.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("database.dial_timeout"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
			HealthTimeout:    v.GetDuration("database.health_timeout"),
		},
		Server: ServerConfig{
			GRPCAddr:        v.GetString("server.grpc_addr"),
			HTTPAddr:        v.GetString("server.http_addr"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Business: BusinessConfig{
			Name:                 v.GetString("business.name"),
			Address:              v.GetString("business.address"),
			Latitude:             v.GetFloat64("business.latitude"),
			Longitude:            v.GetFloat64("business.longitude"),
			GeofenceRadiusMeters: v.GetFloat64("business.geofence_radius_meters"),
			SettingsFile:         v.GetString("business.settings_file"),
		},
		Cache: CacheConfig{
			Size:            v.GetInt("cache.size"),
			TTL:             v.GetDuration("cache.ttl"),
			CleanupInterval: v.GetDuration("cache.cleanup_interval"),
		},
		RateLimit: RateLimitConfig{
			Window:         v.GetDuration("rate_limit.window"),
			Max:            v.GetInt("rate_limit.max"),
			TrustedProxies: splitList(v.GetStringSlice("rate_limit.trusted_proxies")),
		},
		Queue: QueueConfig{
			Workers:        v.GetInt("queue.workers"),
			Size:           v.GetInt("queue.size"),
			ProcessTimeout: v.GetDuration("queue.process_timeout"),
		},
		KV: KVConfig{
			Backend: v.GetString("kv.backend"),
			Path:    v.GetString("kv.path"),
		},
		Features: featureOverrides(v),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))
	v.SetDefault("database.health_timeout", 5*time.Second)

	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.http_addr", ":8081")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("business.name", "Asphalt Field Ops")
	v.SetDefault("business.address", "337 Ayers Orchard Road, Stuart, VA 24171")
	v.SetDefault("business.latitude", 36.6484)
	v.SetDefault("business.longitude", -80.2737)
	v.SetDefault("business.geofence_radius_meters", 804.672)
	v.SetDefault("business.settings_file", "")

	v.SetDefault("cache.size", 4096)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)

	v.SetDefault("rate_limit.window", 15*time.Minute)
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.trusted_proxies", []string{})

	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.size", 256)
	v.SetDefault("queue.process_timeout", 30*time.Second)

	v.SetDefault("kv.backend", "sql")
	v.SetDefault("kv.path", "./tmp/kv.json")
}

// splitList flattens comma separated entries, as env vars arrive as one string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// featureOverrides reads FIELDOPS_FEATURE_<NAME> style overrides ("1"/"true" enable).
func featureOverrides(v *viper.Viper) map[string]bool {
	out := map[string]bool{}
	for _, name := range []string{"game_mode", "ar_scan", "premium_pass"} {
		key := "feature." + name
		_ = v.BindEnv(key)
		if !v.IsSet(key) {
			continue
		}
		raw := strings.ToLower(strings.TrimSpace(v.GetString(key)))
		out[name] = raw == "1" || raw == "true"
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validator := NewValidator()
	validator.Field("database.driver", c.Database.Driver, Required)
	validator.Field("database.dsn", c.Database.DSN, Required)
	if c.Database.Driver != "" && c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		validator.Add("database.driver", "must be postgres or sqlite")
	}
	validator.Field("business.latitude", c.Business.Latitude, Latitude)
	validator.Field("business.longitude", c.Business.Longitude, Longitude)
	validator.Field("business.geofence_radius_meters", c.Business.GeofenceRadiusMeters, NonNegative)
	for _, p := range c.RateLimit.TrustedProxies {
		if _, err := ParseIPPrefix(p); err != nil {
			validator.Add("rate_limit.trusted_proxies", err.Error())
		}
	}
	switch c.KV.Backend {
	case "sql", "memory":
	case "file":
		validator.Field("kv.path", c.KV.Path, Required)
	default:
		validator.Add("kv.backend", "must be sql, file or memory")
	}
	if err := validator.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}

// ParseIPPrefix accepts a CIDR or a bare address (treated as a single-host prefix).
func ParseIPPrefix(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid proxy %q: %w", s, err)
		}
		return p.Masked(), nil
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid proxy %q: %w", s, err)
	}
	a = a.Unmap()
	return netip.PrefixFrom(a, a.BitLen()), nil
}
