package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("SESSION_SECURE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "techsupport.db", cfg.DBDSN)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.False(t, cfg.SessionSecure)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "host=db user=app dbname=techsupport")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.True(t, cfg.SessionSecure)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("SESSION_SECURE", "")
	t.Setenv("BCRYPT_COST", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverSQLite, DBDSN: "x.db", SessionSecret: "s", BcryptCost: bcrypt.MinCost}

	missingSecret := base
	missingSecret.SessionSecret = ""
	assert.Error(t, missingSecret.Validate())

	badDriver := base
	badDriver.DBDriver = "mysql"
	assert.Error(t, badDriver.Validate())

	badCost := base
	badCost.BcryptCost = 99
	assert.Error(t, badCost.Validate())

	assert.NoError(t, base.Validate())
}
