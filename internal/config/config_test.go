package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:              "development",
		Port:             "8080",
		JWTSecret:        "secure-secret-at-least-32-chars-long",
		StoreDriver:      StoreDriverPostgres,
		DBPassword:       "secure-password",
		DBSSLMode:        "require",
		CommentMaxDepth:  1,
		CommentMaxLength: 10000,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateStoreAndComments(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "cassandra" }, true},
		{"memory in production", func(c *Config) { c.Env = "production"; c.StoreDriver = StoreDriverMemory }, true},
		{"mongo in production", func(c *Config) { c.Env = "production"; c.StoreDriver = StoreDriverMongo }, false},
		{"zero depth", func(c *Config) { c.CommentMaxDepth = 0 }, true},
		{"zero length", func(c *Config) { c.CommentMaxLength = 0 }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("STORE_DRIVER", " Memory ")
	t.Setenv("COMMENT_MAX_DEPTH", "3")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, StoreDriverMemory, c.StoreDriver)
	assert.Equal(t, 3, c.CommentMaxDepth)
	assert.Equal(t, 10000, c.CommentMaxLength)
	assert.Equal(t, "8375", c.Port)
}
