package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "stock-ledger", cfg.App.Name)
	assert.Equal(t, BackendMemory, cfg.Ledger.Backend)
	assert.False(t, cfg.Ledger.AllowNegativeStock, "por defecto el stock negativo se rechaza")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "ledger:", cfg.Redis.Prefix)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_BACKEND", "Redis")
	v.Set("LEDGER_ALLOW_NEGATIVE_STOCK", "true")
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_DB", "3")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Ledger.Backend)
	assert.True(t, cfg.Ledger.AllowNegativeStock)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestFromViper_BackendDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_BACKEND", "sqlite")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_PuertoInvalidoUsaDefault(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "no-es-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
