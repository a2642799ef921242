// Package config reads runtime configuration from the environment.
package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"medicart"`
	Env         string `envconfig:"ENV" default:"dev"`
	Addr        string `envconfig:"ADDR" default:":8080"`

	// DatabaseURL empty means the in-memory gateway; likewise RedisAddr
	// empty means in-memory sessions.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
