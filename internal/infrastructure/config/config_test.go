package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"EINV_APP_NAME":                os.Getenv("EINV_APP_NAME"),
		"EINV_APP_ENV":                 os.Getenv("EINV_APP_ENV"),
		"EINV_APP_PORT":                os.Getenv("EINV_APP_PORT"),
		"EINV_DATABASE_HOST":           os.Getenv("EINV_DATABASE_HOST"),
		"EINV_DATABASE_PORT":           os.Getenv("EINV_DATABASE_PORT"),
		"EINV_DATABASE_USER":           os.Getenv("EINV_DATABASE_USER"),
		"EINV_DATABASE_PASSWORD":       os.Getenv("EINV_DATABASE_PASSWORD"),
		"EINV_DATABASE_DBNAME":         os.Getenv("EINV_DATABASE_DBNAME"),
		"EINV_DATABASE_SSLMODE":        os.Getenv("EINV_DATABASE_SSLMODE"),
		"EINV_DATABASE_MAX_OPEN_CONNS": os.Getenv("EINV_DATABASE_MAX_OPEN_CONNS"),
		"EINV_DATABASE_MAX_IDLE_CONNS": os.Getenv("EINV_DATABASE_MAX_IDLE_CONNS"),
		"EINV_INVOICE_TAX_RATE":        os.Getenv("EINV_INVOICE_TAX_RATE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "einvoice-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "einvoice", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "0.05", cfg.Invoice.TaxRate)
		assert.Equal(t, int64(50), cfg.Invoice.LowSerialThreshold)
	})

	t.Run("loads values from environment variables with EINV prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("EINV_APP_NAME", "test-app")
		os.Setenv("EINV_APP_ENV", "testing")
		os.Setenv("EINV_APP_PORT", "9000")
		os.Setenv("EINV_DATABASE_HOST", "testdb.local")
		os.Setenv("EINV_DATABASE_PORT", "5433")
		os.Setenv("EINV_DATABASE_USER", "testuser")
		os.Setenv("EINV_DATABASE_PASSWORD", "testpass")
		os.Setenv("EINV_DATABASE_DBNAME", "testdb")
		os.Setenv("EINV_DATABASE_SSLMODE", "require")
		os.Setenv("EINV_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("EINV_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("EINV_INVOICE_TAX_RATE", "0.02")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "0.02", cfg.Invoice.TaxRate)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("EINV_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("EINV_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("EINV_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("rejects a malformed tax rate", func(t *testing.T) {
		clearEnv()
		os.Setenv("EINV_INVOICE_TAX_RATE", "five percent")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invoice.tax_rate")
	})

	t.Run("rejects a negative tax rate", func(t *testing.T) {
		clearEnv()
		os.Setenv("EINV_INVOICE_TAX_RATE", "-0.05")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"EINV_APP_ENV":                   os.Getenv("EINV_APP_ENV"),
		"EINV_DATABASE_PASSWORD":         os.Getenv("EINV_DATABASE_PASSWORD"),
		"EINV_DATABASE_SSLMODE":          os.Getenv("EINV_DATABASE_SSLMODE"),
		"EINV_INVOICE_SELLER_IDENTIFIER": os.Getenv("EINV_INVOICE_SELLER_IDENTIFIER"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setValidProductionBase := func() {
		os.Setenv("EINV_APP_ENV", "production")
		os.Setenv("EINV_DATABASE_PASSWORD", "secure-password")
		os.Setenv("EINV_DATABASE_SSLMODE", "require")
		os.Setenv("EINV_INVOICE_SELLER_IDENTIFIER", "12345678")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("EINV_APP_ENV", "production")
		os.Setenv("EINV_DATABASE_SSLMODE", "require")
		os.Setenv("EINV_INVOICE_SELLER_IDENTIFIER", "12345678")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("EINV_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires seller identifier in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("EINV_INVOICE_SELLER_IDENTIFIER")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invoice.seller_identifier is required in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
