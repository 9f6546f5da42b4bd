// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// Store backends.
const (
	StoreEmbedded   = "embedded"
	StorePocketBase = "pocketbase"
)

// File storage backends for the embedded store.
const (
	FilesDisk = "disk"
	FilesS3   = "s3"
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server     ServerConfig
	Log        LogConfig
	Database   DatabaseConfig
	Session    SessionConfig
	Store      StoreConfig
	PocketBase PocketBaseConfig
	Files      FilesConfig
	S3         S3Config
	SMTP       SMTPConfig
	OTP        OTPConfig
	Auth       AuthConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Session cookie name
	MaxAge     int    // Session max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

// StoreConfig selects the record store backend.
type StoreConfig struct { //nolint:govet // fieldalignment not critical
	Backend       string // embedded, pocketbase
	TokenSecret   string // 32-byte hex string for signing auth tokens (embedded only)
	TokenDuration int    // auth token lifetime in seconds (embedded only)
}

// PocketBaseConfig configures the remote PocketBase backend.
type PocketBaseConfig struct { //nolint:govet // fieldalignment not critical
	URL               string
	SuperuserEmail    string
	SuperuserPassword string
	Timeout           int // seconds
}

// FilesConfig configures where the embedded store keeps uploaded files.
type FilesConfig struct {
	Backend string // disk, s3
	Dir     string
}

type S3Config struct { //nolint:govet // fieldalignment not critical
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// OTPConfig configures one-time codes issued by the embedded store.
type OTPConfig struct {
	Length   int // digits
	Duration int // seconds
}

type AuthConfig struct {
	AdminEmails []string
}

// IsAdmin reports whether the email belongs to a configured moderator.
func (c *AuthConfig) IsAdmin(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     int(cmd.Int("session-max-age")),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(cmd.String("store-backend")),
			TokenSecret:   cmd.String("store-token-secret"),
			TokenDuration: int(cmd.Int("store-token-duration")),
		},
		PocketBase: PocketBaseConfig{
			URL:               cmd.String("pocketbase-url"),
			SuperuserEmail:    cmd.String("pocketbase-superuser-email"),
			SuperuserPassword: cmd.String("pocketbase-superuser-password"),
			Timeout:           int(cmd.Int("pocketbase-timeout")),
		},
		Files: FilesConfig{
			Backend: strings.ToLower(cmd.String("files-backend")),
			Dir:     cmd.String("files-dir"),
		},
		S3: S3Config{
			Bucket:       cmd.String("s3-bucket"),
			Region:       cmd.String("s3-region"),
			Endpoint:     cmd.String("s3-endpoint"),
			AccessKey:    cmd.String("s3-access-key"),
			SecretKey:    cmd.String("s3-secret-key"),
			UsePathStyle: cmd.Bool("s3-path-style"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		OTP: OTPConfig{
			Length:   int(cmd.Int("otp-length")),
			Duration: int(cmd.Int("otp-duration")),
		},
		Auth: AuthConfig{
			AdminEmails: cmd.StringSlice("admin-emails"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	cfg.Server.BaseURL = strings.TrimSuffix(cfg.Server.BaseURL, "/")

	return cfg
}

// Validate checks option combinations that flags alone cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StoreEmbedded:
		switch c.Files.Backend {
		case FilesDisk:
			if c.Files.Dir == "" {
				errs = append(errs, errors.New("files dir is required for the disk backend"))
			}
		case FilesS3:
			if c.S3.Bucket == "" {
				errs = append(errs, errors.New("s3 bucket is required for the s3 backend"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown files backend %q", c.Files.Backend))
		}
	case StorePocketBase:
		if c.PocketBase.URL == "" {
			errs = append(errs, errors.New("pocketbase url is required for the pocketbase backend"))
		}
		if c.PocketBase.SuperuserEmail == "" || c.PocketBase.SuperuserPassword == "" {
			errs = append(errs, errors.New("pocketbase superuser credentials are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		errs = append(errs, fmt.Errorf("otp length must be between 4 and 10, got %d", c.OTP.Length))
	}
	if c.OTP.Duration <= 0 {
		errs = append(errs, errors.New("otp duration must be positive"))
	}

	return errors.Join(errs...)
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.Server.BaseURL, "https://")
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	if host == "" {
		host = "localhost"
	}
	if cfg.Server.Port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
}

// sources creates a value source chain combining env vars and TOML config.
func sources(envKey, tomlKey string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(envKey), toml.TOML(tomlKey, configFile))
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: sources("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: sources("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: sources("BASE_URL", "server.base_url"),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   10,
			Usage:   "Maximum request body size in MB",
			Sources: sources("MAX_BODY_SIZE", "server.max_body_size"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: sources("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: sources("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN for the embedded record store",
			Sources: sources("DATABASE_DSN", "database.dsn"),
		},
		// Session flags
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "pb_auth",
			Usage:   "Session cookie name",
			Sources: sources("SESSION_COOKIE_NAME", "session.cookie_name"),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   604800, // 7 days in seconds
			Usage:   "Session max age in seconds",
			Sources: sources("SESSION_MAX_AGE", "session.max_age"),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Session hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: sources("SESSION_HASH_KEY", "session.hash_key"),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Session block key for encryption (32-byte hex, optional)",
			Sources: sources("SESSION_BLOCK_KEY", "session.block_key"),
		},
		// Record store flags
		&cli.StringFlag{
			Name:    "store-backend",
			Value:   StoreEmbedded,
			Usage:   "Record store backend (embedded, pocketbase)",
			Sources: sources("STORE_BACKEND", "store.backend"),
		},
		&cli.StringFlag{
			Name:    "store-token-secret",
			Usage:   "Auth token signing secret (32-byte hex, auto-generated if empty in dev)",
			Sources: sources("STORE_TOKEN_SECRET", "store.token_secret"),
		},
		&cli.IntFlag{
			Name:    "store-token-duration",
			Value:   604800,
			Usage:   "Auth token lifetime in seconds",
			Sources: sources("STORE_TOKEN_DURATION", "store.token_duration"),
		},
		&cli.StringFlag{
			Name:    "pocketbase-url",
			Usage:   "PocketBase base URL",
			Sources: sources("POCKETBASE_URL", "pocketbase.url"),
		},
		&cli.StringFlag{
			Name:    "pocketbase-superuser-email",
			Usage:   "PocketBase superuser email",
			Sources: sources("PB_SUPERUSER_EMAIL", "pocketbase.superuser_email"),
		},
		&cli.StringFlag{
			Name:    "pocketbase-superuser-password",
			Usage:   "PocketBase superuser password",
			Sources: sources("PB_SUPERUSER_PASSWORD", "pocketbase.superuser_password"),
		},
		&cli.IntFlag{
			Name:    "pocketbase-timeout",
			Value:   30,
			Usage:   "PocketBase request timeout in seconds",
			Sources: sources("POCKETBASE_TIMEOUT", "pocketbase.timeout"),
		},
		// File storage flags
		&cli.StringFlag{
			Name:    "files-backend",
			Value:   FilesDisk,
			Usage:   "File storage backend (disk, s3)",
			Sources: sources("FILES_BACKEND", "files.backend"),
		},
		&cli.StringFlag{
			Name:    "files-dir",
			Value:   "./data/files",
			Usage:   "Directory for uploaded files (disk backend)",
			Sources: sources("FILES_DIR", "files.dir"),
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "S3 bucket name",
			Sources: sources("S3_BUCKET", "s3.bucket"),
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Value:   "us-east-1",
			Usage:   "S3 region",
			Sources: sources("S3_REGION", "s3.region"),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3 endpoint URL (for MinIO and other compatible services)",
			Sources: sources("S3_ENDPOINT", "s3.endpoint"),
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			Usage:   "S3 access key",
			Sources: sources("S3_ACCESS_KEY", "s3.access_key"),
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			Usage:   "S3 secret key",
			Sources: sources("S3_SECRET_KEY", "s3.secret_key"),
		},
		&cli.BoolFlag{
			Name:    "s3-path-style",
			Usage:   "Use path-style S3 addressing",
			Sources: sources("S3_PATH_STYLE", "s3.path_style"),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (codes are only logged when empty)",
			Sources: sources("SMTP_HOST", "smtp.host"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   1025,
			Usage:   "SMTP port",
			Sources: sources("SMTP_PORT", "smtp.port"),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: sources("SMTP_USERNAME", "smtp.username"),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: sources("SMTP_PASSWORD", "smtp.password"),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Value:   "noreply@localhost",
			Usage:   "Sender address",
			Sources: sources("SMTP_FROM", "smtp.from"),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "Disney Bounding",
			Usage:   "Sender display name",
			Sources: sources("SMTP_FROM_NAME", "smtp.from_name"),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Usage:   "Require TLS for SMTP",
			Sources: sources("SMTP_TLS", "smtp.tls"),
		},
		// OTP flags
		&cli.IntFlag{
			Name:    "otp-length",
			Value:   6,
			Usage:   "Number of digits in a one-time code",
			Sources: sources("OTP_LENGTH", "otp.length"),
		},
		&cli.IntFlag{
			Name:    "otp-duration",
			Value:   300,
			Usage:   "One-time code lifetime in seconds",
			Sources: sources("OTP_DURATION", "otp.duration"),
		},
		// Moderation
		&cli.StringSliceFlag{
			Name:    "admin-emails",
			Usage:   "Emails of accounts allowed to moderate submissions",
			Sources: sources("ADMIN_EMAILS", "auth.admin_emails"),
		},
	}
}
