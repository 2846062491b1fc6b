package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"sim": { "weather": "rain", "seed": 42 },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "rain", viper.GetString("sim.weather"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./simlogs", viper.GetString("logsDir"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "viperball", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "sim_games", viper.GetString("influx.bucket"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
	// defaults stay usable when the file is missing
	assert.Equal(t, "balanced", GetSimConfig().OffenseStyle)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetSimConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))
	sc := GetSimConfig()
	assert.Equal(t, "balanced", sc.OffenseStyle)
	assert.Equal(t, "base_defense", sc.DefenseStyle)
	assert.Equal(t, "aces", sc.SpecialTeams)
	assert.Equal(t, "clear", sc.Weather)
	assert.Zero(t, sc.Seed)
	assert.Empty(t, sc.StyleOverrides)

	viper.Reset()
	require.NoError(t, Load(writeConfig(t, `{
		"sim": {
			"offenseStyle": "chain_gang",
			"seed": 9001,
			"styleOverrides": { "Riverton": "lateral_spread" }
		}
	}`)))
	sc = GetSimConfig()
	assert.Equal(t, "chain_gang", sc.OffenseStyle)
	assert.Equal(t, int64(9001), sc.Seed)
	// viper folds map keys to lower case
	assert.Equal(t, "lateral_spread", sc.StyleOverrides["riverton"])
}

func TestGetBatchConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{ "batch": { "games": 50, "workers": 3, "baseSeed": 7 } }`)))
	bc := GetBatchConfig()
	assert.Equal(t, 50, bc.Games)
	assert.Equal(t, 3, bc.Workers)
	assert.Equal(t, int64(7), bc.BaseSeed)
	assert.Equal(t, "./rosters", bc.RosterDir)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./results", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, true, cfg.Memory.WritePlays)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "ws://localhost:5000/api/sim", cfg.WebSocket.URL)
	assert.False(t, cfg.WritePlays)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"writePlays": true,
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m", "dumpPath": "/tmp/sim.db" },
			"websocket": { "url": "wss://example.test/api", "secret": "s3cret" }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.True(t, sc.WritePlays)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "/tmp/sim.db", sc.SQLite.DumpPath)
	assert.Equal(t, "wss://example.test/api", sc.WebSocket.URL)
	assert.Equal(t, "s3cret", sc.WebSocket.Secret)
}

func TestGetDBAndInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"db": { "host": "db.internal", "database": "league" },
		"influx": { "enabled": true, "org": "league-metrics" }
	}`)))

	db := GetDBConfig()
	assert.Equal(t, "db.internal", db.Host)
	assert.Equal(t, "5432", db.Port)
	assert.Equal(t, "league", db.Database)

	in := GetInfluxConfig()
	assert.True(t, in.Enabled)
	assert.Equal(t, "league-metrics", in.Org)
	assert.Equal(t, "8086", in.Port)
}

func TestGetUploadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))
	cfg := GetUploadConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "http://localhost:5000", cfg.URL)

	viper.Reset()
	require.NoError(t, Load(writeConfig(t, `{
		"upload": { "enabled": true, "url": "https://results.example.test", "apiKey": "k" }
	}`)))
	cfg = GetUploadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "https://results.example.test", cfg.URL)
	assert.Equal(t, "k", cfg.APIKey)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "viperball-sim", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{ "graylog": { "enabled": true, "address": "gelf:12201" } }`)))
	gc := GetGraylogConfig()
	assert.True(t, gc.Enabled)
	assert.Equal(t, "gelf:12201", gc.Address)
}
