package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Import    ImportConfig    `yaml:"import"`
	Functions FunctionsConfig `yaml:"functions"`
	Audit     AuditConfig     `yaml:"audit"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds access-token verification settings. Tokens are issued
// by the hosted auth service and share its HS256 secret.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"tripdesk"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"1h"`
}

// ImportConfig holds bulk-import settings.
type ImportConfig struct {
	VendorChunkSize      int   `yaml:"vendor_chunk_size"       env:"IMPORT_VENDOR_CHUNK_SIZE"       env-default:"20"`
	TagChunkSize         int   `yaml:"tag_chunk_size"          env:"IMPORT_TAG_CHUNK_SIZE"          env-default:"50"`
	LocationTagChunkSize int   `yaml:"location_tag_chunk_size" env:"IMPORT_LOCATION_TAG_CHUNK_SIZE" env-default:"50"`
	MaxUploadBytes       int64 `yaml:"max_upload_bytes"        env:"IMPORT_MAX_UPLOAD_BYTES"        env-default:"10485760"`
	// UploadsPerMinute limits import uploads per user. 0 disables the limit.
	UploadsPerMinute int `yaml:"uploads_per_minute" env:"IMPORT_UPLOADS_PER_MINUTE" env-default:"10"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	RetentionDays int `yaml:"retention_days" env:"AUDIT_RETENTION_DAYS" env-default:"365"`
}

// FunctionsConfig points at the hosted serverless functions.
// BaseURL may be empty when the CLI commands that call them are unused.
type FunctionsConfig struct {
	BaseURL    string        `yaml:"base_url"    env:"FUNCTIONS_BASE_URL"`
	ServiceKey string        `yaml:"service_key" env:"FUNCTIONS_SERVICE_KEY"`
	Timeout    time.Duration `yaml:"timeout"     env:"FUNCTIONS_TIMEOUT"     env-default:"15s"`
	MaxRetries int           `yaml:"max_retries" env:"FUNCTIONS_MAX_RETRIES" env-default:"2"`
}

// Enabled reports whether the functions client can be constructed.
func (c FunctionsConfig) Enabled() bool {
	return c.BaseURL != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
