// Package config loads service settings from environment variables (and an
// optional .env file) with defaults and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the GORM dialector.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file
	URL    string // Postgres DSN
}

// DSN returns the connection string for the configured driver.
func (d DBConfig) DSN() string {
	if d.Driver == "postgres" {
		return d.URL
	}
	return d.Path
}

// LightningConfig configures the LNURL-pay resolver.
type LightningConfig struct {
	Timeout         time.Duration // per outbound request
	Scheme          string        // https in production; http only for local wallets
	FallbackMinSats int64         // used when a server omits minSendable
	FallbackMaxSats int64         // used when a server omits maxSendable
}

// NotifyConfig configures notification dedup and the job queue.
type NotifyConfig struct {
	DedupeWindow    time.Duration
	DedupeHighWater int
	QueueURL        string // SQS queue; empty selects the database outbox
	AWSRegion       string
}

// PollConfig configures pledge settlement tracking.
type PollConfig struct {
	StatusBaseURL string // remote status endpoint; empty reads the local pledge table
	FastInterval  time.Duration
	FastPhase     time.Duration
	SlowInterval  time.Duration
	SlowPhase     time.Duration
}

// Config holds all configuration values for the service.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration // SSE streams are exempt, see router
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	DB DBConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	Lightning LightningConfig
	Notify    NotifyConfig
	Poll      PollConfig

	// CleanupSchedule is a cron spec for purging expired rows.
	CleanupSchedule string

	OTEL OTELConfig
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding values already present in the environment. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/v1")),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "evento.db"),
			URL:    getenv("DATABASE_URL", ""),
		},

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Lightning: LightningConfig{
			Timeout:         getdur("LNURL_TIMEOUT", 10*time.Second),
			Scheme:          strings.ToLower(getenv("LNURL_SCHEME", "https")),
			FallbackMinSats: getint64("LNURL_FALLBACK_MIN_SATS", 1),
			FallbackMaxSats: getint64("LNURL_FALLBACK_MAX_SATS", 1_000_000_000),
		},

		Notify: NotifyConfig{
			DedupeWindow:    getdur("NOTIFY_DEDUPE_WINDOW", 24*time.Hour),
			DedupeHighWater: getint("NOTIFY_DEDUPE_HIGH_WATER", 10_000),
			QueueURL:        getenv("NOTIFY_QUEUE_URL", ""),
			AWSRegion:       getenv("AWS_REGION", "us-east-1"),
		},

		Poll: PollConfig{
			StatusBaseURL: strings.TrimRight(getenv("PLEDGE_STATUS_BASE_URL", ""), "/"),
			FastInterval:  getdur("POLL_FAST_INTERVAL", 3*time.Second),
			FastPhase:     getdur("POLL_FAST_PHASE", 2*time.Minute),
			SlowInterval:  getdur("POLL_SLOW_INTERVAL", 10*time.Second),
			SlowPhase:     getdur("POLL_SLOW_PHASE", 10*time.Minute),
		},

		CleanupSchedule: getenv("CLEANUP_SCHEDULE", "@every 1h"),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "evento-payments"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	normalize(&cfg)
	return cfg, cfg.Validate()
}

func normalize(cfg *Config) {
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" {
		cfg.DB.Driver = "postgres"
	}
}

// Validate reports the first invalid setting. It is exported so CLI flag
// overrides can be re-checked after they are applied.
func (cfg Config) Validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER %q not supported (sqlite|postgres)", cfg.DB.Driver)
	}
	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.Lightning.Timeout <= 0 {
		return errors.New("LNURL_TIMEOUT must be > 0")
	}
	if cfg.Lightning.Scheme != "https" && cfg.Lightning.Scheme != "http" {
		return errors.New("LNURL_SCHEME must be http or https")
	}
	if cfg.Lightning.FallbackMinSats < 0 || cfg.Lightning.FallbackMaxSats < cfg.Lightning.FallbackMinSats {
		return errors.New("LNURL_FALLBACK_MIN_SATS must be >= 0 and <= LNURL_FALLBACK_MAX_SATS")
	}
	if cfg.Notify.DedupeWindow <= 0 {
		return errors.New("NOTIFY_DEDUPE_WINDOW must be > 0")
	}
	if cfg.Notify.DedupeHighWater < 1 {
		return errors.New("NOTIFY_DEDUPE_HIGH_WATER must be >= 1")
	}
	if cfg.Notify.QueueURL != "" && strings.TrimSpace(cfg.Notify.AWSRegion) == "" {
		return errors.New("AWS_REGION is required when NOTIFY_QUEUE_URL is set")
	}
	if cfg.Poll.FastInterval <= 0 || cfg.Poll.SlowInterval <= 0 || cfg.Poll.FastPhase < 0 || cfg.Poll.SlowPhase < 0 {
		return errors.New("POLL_* intervals must be > 0 and phases >= 0")
	}
	if strings.TrimSpace(cfg.CleanupSchedule) == "" {
		return errors.New("CLEANUP_SCHEDULE must not be empty")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// Addr is the listen address for http.Server.
func (cfg Config) Addr() string { return ":" + strings.TrimPrefix(cfg.Port, ":") }

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(strings.ReplaceAll(v, "_", ""), 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
