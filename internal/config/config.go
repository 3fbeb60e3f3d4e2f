package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config enumerates every recognized option with its default. Unknown keys in
// the config file are rejected at load time, not silently accepted.
type Config struct {
	Service        ServiceConfig     `json:"service"`
	AuthHost       string            `json:"authHost" validate:"required,url"`
	AuthEndpoint   string            `json:"authEndpoint"`
	UserEndpoint   string            `json:"userEndpoint" validate:"required,startswith=/"`
	Database       DatabaseConfig    `json:"databaseConfig"`
	DevMode        bool              `json:"devMode"`
	Host           string            `json:"host"`
	Port           int               `json:"port" validate:"gt=0,lte=65535"`
	Protocol       string            `json:"protocol" validate:"oneof=http https"`
	Subscribers    SubscribersConfig `json:"subscribers"`
	APIOriginAllow CORSConfig        `json:"apiOriginAllow"`
	Webhook        WebhookConfig     `json:"webhook"`
	FCM            FCMConfig         `json:"fcm"`
	Telemetry      TelemetryConfig   `json:"telemetry"`
	NATS           NATSConfig        `json:"nats"`
	Tracer         TracerConfig      `json:"tracer"`
	Logger         LoggerConfig      `json:"logger"`
}

type ServiceConfig struct {
	Name string `json:"name"`
	Env  string `json:"env"`
}

type DatabaseConfig struct {
	Driver string       `json:"driver" validate:"oneof=redis sqlite"`
	Redis  RedisConfig  `json:"redis"`
	SQLite SQLiteConfig `json:"sqlite"`
}

type RedisConfig struct {
	URL          string        `json:"url"`
	KeyPrefix    string        `json:"keyPrefix"`
	DialTimeout  time.Duration `json:"dialTimeout"`
	ReadTimeout  time.Duration `json:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	PingTimeout  time.Duration `json:"pingTimeout"`
}

type SQLiteConfig struct {
	DatabasePath string        `json:"databasePath"`
	BusyTimeout  time.Duration `json:"busyTimeout"`
}

// SubscribersConfig enables or disables each ingress backend independently.
type SubscribersConfig struct {
	HTTP  bool `json:"http"`
	Redis bool `json:"redis"`
	NATS  bool `json:"nats"`
}

type CORSConfig struct {
	AllowCors    bool   `json:"allowCors"`
	AllowOrigin  string `json:"allowOrigin"`
	AllowMethods string `json:"allowMethods"`
	AllowHeaders string `json:"allowHeaders"`
}

type WebhookConfig struct {
	URL       string        `json:"url" validate:"omitempty,url"`
	CoordsURL string        `json:"coordsUrl" validate:"omitempty,url"`
	Timeout   time.Duration `json:"timeout"`
}

// FCMConfig holds one service-account credential file per tenant scope.
// A scope with no credential file is simply not configured.
type FCMConfig struct {
	UserCredentialsFile      string `json:"userCredentialsFile"`
	CorporateCredentialsFile string `json:"corporateCredentialsFile"`
}

type TelemetryConfig struct {
	Event         string        `json:"event"`
	FlushInterval time.Duration `json:"flushInterval" validate:"gt=0"`
}

type NATSConfig struct {
	URL           string `json:"url"`
	SubjectPrefix string `json:"subjectPrefix"`
}

type TracerConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

type LoggerConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" validate:"oneof=text json"`
}

// Default returns the full option surface with its defaults, mirroring an
// unconfigured deployment.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "cargo-relay",
			Env:  "development",
		},
		AuthHost:     "http://localhost",
		AuthEndpoint: "/broadcasting/auth",
		UserEndpoint: "/api/user/me",
		Database: DatabaseConfig{
			Driver: "redis",
			Redis: RedisConfig{
				URL:          "redis://localhost:6379",
				KeyPrefix:    "",
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
				PoolSize:     10,
				MinIdleConns: 2,
				PingTimeout:  2 * time.Second,
			},
			SQLite: SQLiteConfig{
				DatabasePath: "database/cargo-relay.sqlite",
				BusyTimeout:  5 * time.Second,
			},
		},
		DevMode:  false,
		Host:     "",
		Port:     6001,
		Protocol: "http",
		Subscribers: SubscribersConfig{
			HTTP:  true,
			Redis: true,
			NATS:  false,
		},
		APIOriginAllow: CORSConfig{
			AllowCors:    false,
			AllowOrigin:  "",
			AllowMethods: "",
			AllowHeaders: "",
		},
		Webhook: WebhookConfig{
			Timeout: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Event:         "transport-coords",
			FlushInterval: 60 * time.Second,
		},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			SubjectPrefix: "relay.",
		},
		Tracer: TracerConfig{
			Enabled: false,
			Address: "localhost:4317",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
