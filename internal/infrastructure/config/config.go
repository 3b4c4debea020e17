// Package config loads application configuration from a TOML file and
// POS_-prefixed environment variables, in that order of increasing
// precedence, with built-in defaults underneath both.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root of all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Register  RegisterConfig
	Proforma  ProformaConfig
	Scheduler SchedulerConfig
	Printing  PrintingConfig
	Storage   StorageConfig
	Sync      SyncConfig
	Realtime  RealtimeConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	ConnMaxIdleTime int // minutes
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// The auth endpoints get their own, much tighter limit to slow down
	// credential stuffing.
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration

	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// RegisterConfig holds login and approval PIN lockout settings.
type RegisterConfig struct {
	LoginMaxAttempts  int
	LoginLockDuration time.Duration
	PinMaxAttempts    int
	PinLockDuration   time.Duration
}

// ProformaConfig holds proforma validity and expiry sweep settings.
type ProformaConfig struct {
	DefaultValidityDays int
	SweepInterval       time.Duration
	SweepBatchSize      int
}

type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// PrintingConfig holds PDF rendering configuration. An empty ChromePath
// means auto-detect.
type PrintingConfig struct {
	Enabled       bool
	ChromePath    string
	RenderTimeout time.Duration
}

// StorageConfig holds the S3-compatible object store for archived
// receipts. Endpoint is only set for MinIO and friends; empty means AWS.
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// SyncConfig holds offline sync settings.
type SyncConfig struct {
	PullMaxLimit       int
	ChangeLogRetention int64 // entries kept when pruning the change log
	PruneInterval      time.Duration
	IdempotencyTTL     time.Duration
}

// RealtimeConfig holds SSE stock feed settings.
type RealtimeConfig struct {
	MaxClients        int
	ClientBuffer      int
	DebounceWindow    time.Duration
	HeartbeatInterval time.Duration
}

// SwaggerConfig controls the API documentation endpoint. An empty
// AllowedIPs list means no IP restriction.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string
}

// TelemetryConfig holds OpenTelemetry and profiling settings.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // plain-text OTLP, development only
	ProfilerEnabled   bool
	ProfilerEndpoint  string // Pyroscope server address

	DBTraceEnabled bool
	// DBLogFullSQL records complete SQL statements in spans. Never enable
	// in production; statements can carry customer data.
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
}

// Load reads config.toml if present, overlays POS_-prefixed environment
// variables, fills defaults for anything left unset and validates the
// result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env vars and defaults carry the day.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database:  loadDatabase(v),
		Redis:     loadRedis(v),
		JWT:       loadJWT(v),
		Log:       loadLog(v),
		HTTP:      loadHTTP(v),
		Register:  loadRegister(v),
		Proforma:  loadProforma(v),
		Scheduler: loadScheduler(v),
		Printing:  loadPrinting(v),
		Storage:   loadStorage(v),
		Sync:      loadSync(v),
		Realtime:  loadRealtime(v),
		Swagger:   loadSwagger(v),
		Telemetry: loadTelemetry(v),
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func loadRedis(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func loadJWT(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                 v.GetString("jwt.secret"),
		AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
		RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
		Issuer:                 v.GetString("jwt.issuer"),
		RefreshSecret:          v.GetString("jwt.refresh_secret"),
		MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
	}
}

func loadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func loadHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:           v.GetDuration("http.read_timeout"),
		WriteTimeout:          v.GetDuration("http.write_timeout"),
		IdleTimeout:           v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
		MaxBodySize:           v.GetInt64("http.max_body_size"),
		RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
		AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
		AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
		AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
		CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
	}
}

func loadRegister(v *viper.Viper) RegisterConfig {
	return RegisterConfig{
		LoginMaxAttempts:  v.GetInt("register.login_max_attempts"),
		LoginLockDuration: v.GetDuration("register.login_lock_duration"),
		PinMaxAttempts:    v.GetInt("register.pin_max_attempts"),
		PinLockDuration:   v.GetDuration("register.pin_lock_duration"),
	}
}

func loadProforma(v *viper.Viper) ProformaConfig {
	return ProformaConfig{
		DefaultValidityDays: v.GetInt("proforma.default_validity_days"),
		SweepInterval:       v.GetDuration("proforma.sweep_interval"),
		SweepBatchSize:      v.GetInt("proforma.sweep_batch_size"),
	}
}

func loadScheduler(v *viper.Viper) SchedulerConfig {
	return SchedulerConfig{
		Enabled:           v.GetBool("scheduler.enabled"),
		MaxConcurrentJobs: v.GetInt("scheduler.max_concurrent_jobs"),
		JobTimeout:        v.GetDuration("scheduler.job_timeout"),
		RetryAttempts:     v.GetInt("scheduler.retry_attempts"),
		RetryDelay:        v.GetDuration("scheduler.retry_delay"),
	}
}

func loadPrinting(v *viper.Viper) PrintingConfig {
	return PrintingConfig{
		Enabled:       v.GetBool("printing.enabled"),
		ChromePath:    v.GetString("printing.chrome_path"),
		RenderTimeout: v.GetDuration("printing.render_timeout"),
	}
}

func loadStorage(v *viper.Viper) StorageConfig {
	return StorageConfig{
		Endpoint:        v.GetString("storage.endpoint"),
		Region:          v.GetString("storage.region"),
		Bucket:          v.GetString("storage.bucket"),
		AccessKeyID:     v.GetString("storage.access_key_id"),
		SecretAccessKey: v.GetString("storage.secret_access_key"),
		UsePathStyle:    v.GetBool("storage.use_path_style"),
	}
}

func loadSync(v *viper.Viper) SyncConfig {
	return SyncConfig{
		PullMaxLimit:       v.GetInt("sync.pull_max_limit"),
		ChangeLogRetention: v.GetInt64("sync.change_log_retention"),
		PruneInterval:      v.GetDuration("sync.prune_interval"),
		IdempotencyTTL:     v.GetDuration("sync.idempotency_ttl"),
	}
}

func loadRealtime(v *viper.Viper) RealtimeConfig {
	return RealtimeConfig{
		MaxClients:        v.GetInt("realtime.max_clients"),
		ClientBuffer:      v.GetInt("realtime.client_buffer"),
		DebounceWindow:    v.GetDuration("realtime.debounce_window"),
		HeartbeatInterval: v.GetDuration("realtime.heartbeat_interval"),
	}
}

func loadSwagger(v *viper.Viper) SwaggerConfig {
	return SwaggerConfig{
		Enabled:     v.GetBool("swagger.enabled"),
		RequireAuth: v.GetBool("swagger.require_auth"),
		AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
	}
}

func loadTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:           v.GetBool("telemetry.enabled"),
		CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
		ServiceName:       v.GetString("telemetry.service_name"),
		Insecure:          v.GetBool("telemetry.insecure"),
		ProfilerEnabled:   v.GetBool("telemetry.profiler_enabled"),
		ProfilerEndpoint:  v.GetString("telemetry.profiler_endpoint"),
		DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
	}
}

// applyDefaults fills every zero-valued field with its built-in default.
// A zero coming from the environment is indistinguishable from unset,
// which is deliberate: setting POS_DATABASE_MAX_OPEN_CONNS=0 falls back
// to the default rather than producing an unusable pool.
func (cfg *Config) applyDefaults() {
	defStr(&cfg.App.Name, "nextstock-backend")
	defStr(&cfg.App.Env, "development")
	defStr(&cfg.App.Port, "8080")

	defStr(&cfg.Database.Host, "localhost")
	defInt(&cfg.Database.Port, 5432)
	defStr(&cfg.Database.User, "postgres")
	defStr(&cfg.Database.DBName, "nextstock")
	defStr(&cfg.Database.SSLMode, "disable")
	defInt(&cfg.Database.MaxOpenConns, 25)
	defInt(&cfg.Database.MaxIdleConns, 5)
	defInt(&cfg.Database.ConnMaxLifetime, 60)
	defInt(&cfg.Database.ConnMaxIdleTime, 30)

	defStr(&cfg.Redis.Host, "localhost")
	defInt(&cfg.Redis.Port, 6379)

	defDur(&cfg.JWT.AccessTokenExpiration, 15*time.Minute)
	defDur(&cfg.JWT.RefreshTokenExpiration, 168*time.Hour)
	defStr(&cfg.JWT.Issuer, "nextstock-backend")
	defInt(&cfg.JWT.MaxRefreshCount, 10)

	defStr(&cfg.Log.Level, "info")
	defStr(&cfg.Log.Format, "console")
	defStr(&cfg.Log.Output, "stdout")

	defDur(&cfg.HTTP.ReadTimeout, 15*time.Second)
	defDur(&cfg.HTTP.WriteTimeout, 15*time.Second)
	defDur(&cfg.HTTP.IdleTimeout, 60*time.Second)
	defInt(&cfg.HTTP.MaxHeaderBytes, 1<<20)
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20
	}
	defInt(&cfg.HTTP.RateLimitRequests, 100)
	defDur(&cfg.HTTP.RateLimitWindow, time.Minute)
	defInt(&cfg.HTTP.AuthRateLimitRequests, 5)
	defDur(&cfg.HTTP.AuthRateLimitWindow, time.Minute)
	// CORS origins get no fallback. An empty list means no cross-origin
	// requests until someone configures them.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	defInt(&cfg.Register.LoginMaxAttempts, 5)
	defDur(&cfg.Register.LoginLockDuration, 15*time.Minute)
	defInt(&cfg.Register.PinMaxAttempts, 3)
	defDur(&cfg.Register.PinLockDuration, 5*time.Minute)

	defInt(&cfg.Proforma.DefaultValidityDays, 7)
	defDur(&cfg.Proforma.SweepInterval, time.Hour)
	defInt(&cfg.Proforma.SweepBatchSize, 100)

	defInt(&cfg.Scheduler.MaxConcurrentJobs, 3)
	defDur(&cfg.Scheduler.JobTimeout, 10*time.Minute)
	defInt(&cfg.Scheduler.RetryAttempts, 3)
	defDur(&cfg.Scheduler.RetryDelay, time.Minute)

	defDur(&cfg.Printing.RenderTimeout, 30*time.Second)
	defStr(&cfg.Storage.Region, "eu-west-1")
	defStr(&cfg.Storage.Bucket, "nextstock-documents")

	defInt(&cfg.Sync.PullMaxLimit, 500)
	if cfg.Sync.ChangeLogRetention == 0 {
		cfg.Sync.ChangeLogRetention = 100000
	}
	defDur(&cfg.Sync.PruneInterval, 24*time.Hour)
	defDur(&cfg.Sync.IdempotencyTTL, 72*time.Hour)

	defInt(&cfg.Realtime.MaxClients, 200)
	defInt(&cfg.Realtime.ClientBuffer, 32)
	defDur(&cfg.Realtime.DebounceWindow, 500*time.Millisecond)
	defDur(&cfg.Realtime.HeartbeatInterval, 30*time.Second)

	defStr(&cfg.Telemetry.CollectorEndpoint, "localhost:4317")
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	defStr(&cfg.Telemetry.ServiceName, "nextstock-backend")
	defStr(&cfg.Telemetry.ProfilerEndpoint, "http://localhost:4040")
	defDur(&cfg.Telemetry.DBSlowQueryThresh, 200*time.Millisecond)
}

func defStr(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func defInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func defDur(field *time.Duration, def time.Duration) {
	if *field == 0 {
		*field = def
	}
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction rejects settings that are tolerable in development
// but dangerous on a live system.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
		return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
	}
	if c.Telemetry.DBLogFullSQL {
		return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
	}
	if c.Printing.Enabled && c.Storage.AccessKeyID == "" {
		return fmt.Errorf("storage.access_key_id is required when printing is enabled in production")
	}
	return nil
}

// DSN returns the postgres connection URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
