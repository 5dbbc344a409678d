package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8087},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			Name: "director_assist",
			User: "postgres",
		},
		JWT: JWTConfig{Secret: "test-secret-that-is-long-enough-0123"},
		AI: AIConfig{
			DefaultModel:   "gpt-4o-mini",
			RequestTimeout: 60 * time.Second,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "short jwt secret", mutate: func(c *Config) { c.JWT.Secret = "short" }},
		{name: "missing database name", mutate: func(c *Config) { c.Database.Name = "" }},
		{name: "missing default model", mutate: func(c *Config) { c.AI.DefaultModel = "" }},
		{name: "non-positive ai timeout", mutate: func(c *Config) { c.AI.RequestTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "director_assist",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=director_assist sslmode=disable",
		cfg.GetDatabaseURL())
}
