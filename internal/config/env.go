package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Load builds the configuration: defaults, then the JSON config file when a
// path is given, then environment overrides for deployment-sensitive values.
// An unknown key in the file is a load error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.Service.Name = getEnv("SERVICE_NAME", cfg.Service.Name)
	cfg.Service.Env = getEnv("SERVICE_ENV", cfg.Service.Env)
	cfg.AuthHost = getEnv("AUTH_HOST", cfg.AuthHost)
	cfg.UserEndpoint = getEnv("AUTH_USER_ENDPOINT", cfg.UserEndpoint)
	cfg.Database.Redis.URL = getEnv("REDIS_URL", cfg.Database.Redis.URL)
	cfg.Database.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.Database.Redis.KeyPrefix)
	cfg.Host = getEnv("RELAY_HOST", cfg.Host)
	cfg.Port = getEnvInt("RELAY_PORT", cfg.Port)
	cfg.DevMode = getEnvBool("RELAY_DEV_MODE", cfg.DevMode)
	cfg.Webhook.URL = getEnv("WEBHOOK_URL", cfg.Webhook.URL)
	cfg.Webhook.CoordsURL = getEnv("WEBHOOK_COORDS_URL", cfg.Webhook.CoordsURL)
	cfg.FCM.UserCredentialsFile = getEnv("FCM_USER_CREDENTIALS", cfg.FCM.UserCredentialsFile)
	cfg.FCM.CorporateCredentialsFile = getEnv("FCM_CORPORATE_CREDENTIALS", cfg.FCM.CorporateCredentialsFile)
	cfg.Telemetry.FlushInterval = getEnvDuration("TELEMETRY_FLUSH_INTERVAL", cfg.Telemetry.FlushInterval)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.Tracer.Address = getEnv("OTLP_ADDRESS", cfg.Tracer.Address)
	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getEnv("LOG_FORMAT", cfg.Logger.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
