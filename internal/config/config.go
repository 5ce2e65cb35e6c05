package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level string
}

// StoreConfig selects the key-value medium behind the persisted store.
type StoreConfig struct {
	Driver    string
	Namespace string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type ObjectStoreConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type SecurityConfig struct {
	SessionSecret   string
	SessionTTL      time.Duration
	PasswordHashing string
}

// UIConfig holds the fixed delays of the user-facing flow.
type UIConfig struct {
	NotifyTTL      time.Duration
	SignupRedirect time.Duration
	LoginRedirect  time.Duration
	LogoutRedirect time.Duration
	GuardRedirect  time.Duration
}

type NotificationsConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	FeedSize      int
}

type BackupConfig struct {
	Enabled  bool
	Schedule string
	// Compress writes snapshots zstd-compressed.
	Compress bool
}

type AppConfig struct {
	Environment      string
	Logging          LoggingConfig
	HTTP             HTTPConfig
	Store            StoreConfig
	Redis            RedisConfig
	Postgres         PostgresConfig
	ObjectStore      ObjectStoreConfig
	Security         SecurityConfig
	UI               UIConfig
	Notifications    NotificationsConfig
	Backup           BackupConfig
	AllowCORSOrigins []string
}

const (
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"

	PasswordHashingPlaintext = "plaintext"
	PasswordHashingArgon2id  = "argon2id"
)

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("ticketdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	return load(v)
}

// LoadFile reads configuration from an explicit path instead of the
// search directories.
func LoadFile(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

// LoadPath reads path when it is set and falls back to the search
// directories otherwise.
func LoadPath(path string) (*AppConfig, error) {
	if path == "" {
		return Load()
	}
	return LoadFile(path)
}

func load(v *viper.Viper) (*AppConfig, error) {
	v.SetEnvPrefix("TICKETDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Store.Driver {
	case StoreDriverRedis, StoreDriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Security.PasswordHashing {
	case PasswordHashingPlaintext, PasswordHashingArgon2id:
	default:
		return fmt.Errorf("unknown password hashing %q", c.Security.PasswordHashing)
	}
	if c.Store.Namespace == "" {
		return fmt.Errorf("store namespace must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("logging.level", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("store.driver", StoreDriverRedis)
	v.SetDefault("store.namespace", "ticketapp")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("objectstore.enabled", false)
	v.SetDefault("objectstore.bucket", "ticketdesk-snapshots")
	v.SetDefault("objectstore.usessl", false)
	v.SetDefault("objectstore.region", "us-east-1")

	v.SetDefault("security.sessionsecret", "change-me")
	v.SetDefault("security.sessionttl", "720h") // 30 days
	v.SetDefault("security.passwordhashing", PasswordHashingPlaintext)

	v.SetDefault("ui.notifyttl", "3s")
	v.SetDefault("ui.signupredirect", "800ms")
	v.SetDefault("ui.loginredirect", "600ms")
	v.SetDefault("ui.logoutredirect", "600ms")
	v.SetDefault("ui.guardredirect", "800ms")

	v.SetDefault("notifications.stream", "ticketdesk:notifications")
	v.SetDefault("notifications.group", "notification-workers")
	v.SetDefault("notifications.consumer", "worker-1")
	v.SetDefault("notifications.claiminterval", "10s")
	v.SetDefault("notifications.feedsize", 50)

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.schedule", "0 0 3 * * *")
	v.SetDefault("backup.compress", true)
}
