package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/telano/nrbload/internal/domain"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Schema SchemaConfig `mapstructure:"schema"`
	Source SourceConfig `mapstructure:"source"`
	Store  StoreConfig  `mapstructure:"store"`
	Audit  AuditConfig  `mapstructure:"audit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchemaConfig carries the NRB field layout. The names are read once at
// startup into an immutable domain.Schema and never consulted again.
type SchemaConfig struct {
	FieldNames []string `mapstructure:"field_names"`
}

type SourceConfig struct {
	Type      string   `mapstructure:"type"` // local, s3
	Dir       string   `mapstructure:"dir"`
	Extension string   `mapstructure:"extension"`
	S3        S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type StoreConfig struct {
	Backend  string          `mapstructure:"backend"` // sqlite, postgres, http
	Database DatabaseConfig  `mapstructure:"database"`
	HTTP     HTTPStoreConfig `mapstructure:"http"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"` // sqlite file path
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type HTTPStoreConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Bucket  string        `mapstructure:"bucket"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuditConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from the optional config file, environment
// variables, and built-in defaults, in ascending priority.
// Parameters:
//   - configPath: explicit config file path; empty searches ./configs and
//     the working directory for config.yaml.
// Returns:
//   - *Config: resolved configuration.
//   - error: non-nil if reading or decoding fails.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("schema.field_names", domain.DefaultFieldNames)
	v.SetDefault("source.type", "local")
	v.SetDefault("source.dir", "./nrb_logs")
	v.SetDefault("source.extension", ".nrb")
	v.SetDefault("source.s3.region", "us-east-1")
	v.SetDefault("source.s3.use_ssl", true)
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.database.path", "./data/nrbload.db")
	v.SetDefault("store.database.ssl_mode", "disable")
	v.SetDefault("store.database.max_idle_conns", 2)
	v.SetDefault("store.database.max_open_conns", 10)
	v.SetDefault("store.database.conn_max_lifetime", "30m")
	v.SetDefault("store.database.auto_migrate", true)
	v.SetDefault("store.http.bucket", "nrb-log-data")
	v.SetDefault("store.http.timeout", "30s")
	v.SetDefault("audit.path", "./nrb_processing_log.csv")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("store.database.password", "DB_PASSWORD")
	v.BindEnv("store.http.api_key", "STORE_API_KEY")
	v.BindEnv("source.s3.access_key", "S3_ACCESS_KEY")
	v.BindEnv("source.s3.secret_key", "S3_SECRET_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
