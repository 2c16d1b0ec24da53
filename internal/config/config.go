// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Stripe     StripeConfig     `koanf:"stripe"`
	Clerk      ClerkConfig      `koanf:"clerk"`
	Chat       ChatConfig       `koanf:"chat"`
	Twilio     TwilioConfig     `koanf:"twilio"`
	JWT        JWTConfig        `koanf:"jwt"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Team       TeamConfig       `koanf:"team"`
	Platform   PlatformConfig   `koanf:"platform"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	CORS       CORSConfig       `koanf:"cors"`
	Log        LogConfig        `koanf:"log"`
	Otel       OtelConfig       `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// MongoConfig points at the calling platform's MongoDB, which is a read-only
// dependency for activity checks. The CRM never writes to it.
type MongoConfig struct {
	URI              string `koanf:"uri"`
	Database         string `koanf:"database"`
	AgentsCollection string `koanf:"agents_collection"`
	CallsCollection  string `koanf:"calls_collection"`
}

type StripeConfig struct {
	SecretKey     string `koanf:"secret_key"`
	WebhookSecret string `koanf:"webhook_secret"`
}

type ClerkConfig struct {
	WebhookSecret string `koanf:"webhook_secret"`
}

// ChatConfig names the Google Chat space the production notifier posts to.
// The signup webhook is mounted under the same path so the notifier can be
// repointed at the CRM without upstream config changes.
type ChatConfig struct {
	Space string `koanf:"space"`
}

type TwilioConfig struct {
	AccountSID string `koanf:"account_sid"`
	AuthToken  string `koanf:"auth_token"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type ClassifierConfig struct {
	EnterpriseDomains []string `koanf:"enterprise_domains"`
	PersonalDomains   []string `koanf:"personal_domains"`
}

type TeamConfig struct {
	Roster     []string `koanf:"roster"`
	Assignment string   `koanf:"assignment"`
}

type PlatformConfig struct {
	SyncEnabled    bool          `koanf:"sync_enabled"`
	SyncInterval   time.Duration `koanf:"sync_interval"`
	ActivityWindow time.Duration `koanf:"activity_window"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		k := koanf.New(".")

		if err := loadDefaults(k); err != nil {
			loadErr = fmt.Errorf("load defaults: %w", err)
			return
		}

		if configPath != "" {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				loadErr = fmt.Errorf("load config file: %w", err)
				return
			}
		}

		if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
			loadErr = fmt.Errorf("load env vars: %w", err)
			return
		}

		cfg = &Config{}
		if err := k.Unmarshal("", cfg); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		if err := validate(cfg); err != nil {
			loadErr = fmt.Errorf("validate config: %w", err)
			return
		}
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Voqo CRM",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"mongo.database":          "db",
		"mongo.agents_collection": "agents",
		"mongo.calls_collection":  "calls",

		"chat.space": "AAAAksZS9Qw",

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "voqo-crm",
		"jwt.audience":             "voqo-crm-api",
		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",

		"classifier.enterprise_domains": []string{
			"realestate.com",
			"propertyexperts.com",
			"luxuryrealty.com",
			"vpigroup.com.au",
		},
		"classifier.personal_domains": []string{
			"gmail.com",
			"yahoo.com",
			"hotmail.com",
		},

		"team.roster":     []string{"Sarah", "Alex", "Mike", "Emma"},
		"team.assignment": "random",

		"platform.sync_enabled":    true,
		"platform.sync_interval":   "6h",
		"platform.activity_window": "720h",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "voqo-crm",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":             "database.url",
	"REDIS_URL":                "redis.url",
	"MONGO_URI":                "mongo.uri",
	"MONGO_DATABASE":           "mongo.database",
	"STRIPE_SECRET_KEY":        "stripe.secret_key",
	"STRIPE_WEBHOOK_SECRET":    "stripe.webhook_secret",
	"CLERK_WEBHOOK_SECRET":     "clerk.webhook_secret",
	"TWILIO_ACCOUNT_SID":       "twilio.account_sid",
	"TWILIO_AUTH_TOKEN":        "twilio.auth_token",
	"CHAT_SPACE":               "chat.space",
	"ENVIRONMENT":              "app.environment",
	"HOST":                     "server.host",
	"PORT":                     "server.port",
	"LOG_LEVEL":                "log.level",
	"LOG_FORMAT":               "log.format",
	"JWT_PRIVATE_KEY_PATH":     "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":      "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":  "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE": "jwt.refresh_token_expire",
	"JWT_ISSUER":               "jwt.issuer",
	"JWT_AUDIENCE":             "jwt.audience",
	"RATE_LIMIT_REQUESTS":      "rate_limit.requests",
	"RATE_LIMIT_WINDOW":        "rate_limit.window",
	"RATE_LIMIT_BURST":         "rate_limit.burst",
	"PLATFORM_SYNC_ENABLED":    "platform.sync_enabled",
	"PLATFORM_SYNC_INTERVAL":   "platform.sync_interval",
	"OTEL_ENDPOINT":            "otel.endpoint",
	"OTEL_SERVICE_NAME":        "otel.service_name",
	"OTEL_ENABLED":             "otel.enabled",
	"OTEL_INSECURE":            "otel.insecure",
	"OTEL_SAMPLE_RATE":         "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

// validate fails fast on missing secrets. A webhook receiver that starts
// without its signing secrets silently drops leads, which is worse than
// refusing to start.
func validate(c *Config) error {
	required := []struct {
		value string
		name  string
	}{
		{c.Database.URL, "DATABASE_URL"},
		{c.Redis.URL, "REDIS_URL"},
		{c.Mongo.URI, "MONGO_URI"},
		{c.Stripe.SecretKey, "STRIPE_SECRET_KEY"},
		{c.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET"},
		{c.Clerk.WebhookSecret, "CLERK_WEBHOOK_SECRET"},
		{c.Twilio.AccountSID, "TWILIO_ACCOUNT_SID"},
		{c.Twilio.AuthToken, "TWILIO_AUTH_TOKEN"},
		{c.JWT.PrivateKeyPath, "JWT_PRIVATE_KEY_PATH"},
		{c.JWT.PublicKeyPath, "JWT_PUBLIC_KEY_PATH"},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if len(c.Team.Roster) == 0 {
		return fmt.Errorf("team.roster must not be empty")
	}

	if c.Team.Assignment != "random" && c.Team.Assignment != "round_robin" {
		return fmt.Errorf(
			"team.assignment must be random or round_robin, got %q",
			c.Team.Assignment,
		)
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Platform.ActivityWindow <= 0 {
		return fmt.Errorf("platform.activity_window must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
