package config_test

import (
	"testing"
	"time"

	"usermgmt/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "gorm", cfg.StoreDriver)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.StoreCallTimeout)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.False(t, cfg.RabbitMQEnabled)
	assert.False(t, cfg.StrictPasswordPairs)
	assert.False(t, cfg.AllowSelfEmail)
	assert.False(t, cfg.LegacyPatchFailureKind)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("STORE_CALL_TIMEOUT", "500ms")
	t.Setenv("GUARD_STRICT_PASSWORD_PAIRS", "true")
	t.Setenv("GUARD_LEGACY_PATCH_FAILURE_KIND", "true")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.StoreCallTimeout)
	assert.True(t, cfg.StrictPasswordPairs)
	assert.True(t, cfg.LegacyPatchFailureKind)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"store driver", "STORE_DRIVER", "redis"},
		{"db driver", "DB_DRIVER", "mysql"},
		{"bcrypt cost", "BCRYPT_COST", "99"},
		{"timeout", "STORE_CALL_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := config.Load(v)
			assert.Error(t, err)
		})
	}
}
