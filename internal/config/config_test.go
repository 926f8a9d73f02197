package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:         "development",
		Port:        "5000",
		JWTSecret:   "secure-secret-at-least-32-chars-long",
		StoreDriver: DriverPostgres,
		DBPassword:  "secure-password",
		DBSSLMode:   "require",
		MongoURI:    "mongodb://localhost:27017",
		BcryptCost:  10,
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

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "cassandra" }, "unsupported STORE_DRIVER"},
		{"mongo without uri", func(c *Config) { c.StoreDriver = DriverMongo; c.MongoURI = "" }, "MONGO_URI is required"},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 40 }, "BCRYPT_COST"},
		{"sampler ratio out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }, "TRACING_SAMPLER_RATIO"},
		{"default secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, "changed from the default"},
		{"short secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = "short" }, "at least 32 characters"},
		{"weak db password in production", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, "DB_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("sqlite in production skips postgres checks", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.StoreDriver = DriverSQLite
		c.DBPassword = ""
		c.DBSSLMode = "disable"
		assert.NoError(t, c.Validate())
	})
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()
	for k, v := range map[string]string{
		"APP_ENV":      "development",
		"DB_SSLMODE":   "  DISABLE  ",
		"STORE_DRIVER": " SQLite ",
		"PORT":         "6001",
	} {
		require.NoError(t, os.Setenv(k, v))
		key := k
		defer os.Unsetenv(key)
	}

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, DriverSQLite, c.StoreDriver)
	assert.Equal(t, "6001", c.Port)
	assert.Equal(t, 10, c.BcryptCost)
	assert.False(t, c.IsProduction())
}
