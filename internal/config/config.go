package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "viperball_sim.cfg.json"

// SimConfig holds the default styles, weather and seed of a game
type SimConfig struct {
	OffenseStyle   string            `json:"offenseStyle" mapstructure:"offenseStyle"`
	DefenseStyle   string            `json:"defenseStyle" mapstructure:"defenseStyle"`
	SpecialTeams   string            `json:"specialTeams" mapstructure:"specialTeams"`
	Weather        string            `json:"weather" mapstructure:"weather"`
	Seed           int64             `json:"seed" mapstructure:"seed"`
	StyleOverrides map[string]string `json:"styleOverrides" mapstructure:"styleOverrides"`
}

// BatchConfig holds batch runner settings
type BatchConfig struct {
	Games     int    `json:"games" mapstructure:"games"`
	Workers   int    `json:"workers" mapstructure:"workers"`
	BaseSeed  int64  `json:"baseSeed" mapstructure:"baseSeed"`
	RosterDir string `json:"rosterDir" mapstructure:"rosterDir"`
	Label     string `json:"label" mapstructure:"label"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	WritePlays     bool   `json:"writePlays" mapstructure:"writePlays"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// WebSocketConfig holds settings for the streaming backend
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the result storage backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`

	// WritePlays stores every play in the database and stream backends.
	WritePlays bool `json:"writePlays" mapstructure:"writePlays"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// UploadConfig holds results server settings for exported batch files
type UploadConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	APIKey  string `json:"apiKey" mapstructure:"apiKey"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simlogs")

	viper.SetDefault("sim.offenseStyle", "balanced")
	viper.SetDefault("sim.defenseStyle", "base_defense")
	viper.SetDefault("sim.specialTeams", "aces")
	viper.SetDefault("sim.weather", "clear")
	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("sim.styleOverrides", map[string]string{})

	viper.SetDefault("batch.games", 200)
	viper.SetDefault("batch.workers", 0)
	viper.SetDefault("batch.baseSeed", 0)
	viper.SetDefault("batch.rosterDir", "./rosters")
	viper.SetDefault("batch.label", "")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.writePlays", false)
	viper.SetDefault("storage.memory.outputDir", "./results")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.writePlays", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./results/viperball_sim.db")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/api/sim")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "viperball")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "viperball")
	viper.SetDefault("influx.bucket", "sim_games")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("upload.enabled", false)
	viper.SetDefault("upload.url", "http://localhost:5000")
	viper.SetDefault("upload.apiKey", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "viperball-sim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetSimConfig returns the game settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		OffenseStyle:   viper.GetString("sim.offenseStyle"),
		DefenseStyle:   viper.GetString("sim.defenseStyle"),
		SpecialTeams:   viper.GetString("sim.specialTeams"),
		Weather:        viper.GetString("sim.weather"),
		Seed:           viper.GetInt64("sim.seed"),
		StyleOverrides: viper.GetStringMapString("sim.styleOverrides"),
	}
}

// GetBatchConfig returns the batch runner settings.
func GetBatchConfig() BatchConfig {
	return BatchConfig{
		Games:     viper.GetInt("batch.games"),
		Workers:   viper.GetInt("batch.workers"),
		BaseSeed:  viper.GetInt64("batch.baseSeed"),
		RosterDir: viper.GetString("batch.rosterDir"),
		Label:     viper.GetString("batch.label"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			WritePlays:     viper.GetBool("storage.memory.writePlays"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
		WritePlays: viper.GetBool("storage.writePlays"),
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the InfluxDB connection settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF output settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetUploadConfig returns the results server settings.
func GetUploadConfig() UploadConfig {
	return UploadConfig{
		Enabled: viper.GetBool("upload.enabled"),
		URL:     viper.GetString("upload.url"),
		APIKey:  viper.GetString("upload.apiKey"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
