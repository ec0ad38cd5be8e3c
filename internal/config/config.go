package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `yaml:"port"` // サーバーポート（8080）

	DB DBConfig `yaml:"db"`

	JWTSecret string `yaml:"jwt_secret"` // JWT検証シークレット

	GoEnv    string `yaml:"go_env"`    // dev/prod
	LogLevel string `yaml:"log_level"` // debug/info/warn/error

	TracingEnabled bool   `yaml:"tracing_enabled"`
	ServiceName    string `yaml:"service_name"`

	AutoMigrate    bool          `yaml:"auto_migrate"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DB接続。URL があれば最優先
type DBConfig struct {
	Driver   string `yaml:"driver"` // postgres / mysql / sqlite
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"` // postgresのみ
	Params   string `yaml:"params"`  // mysqlのみ
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	// ローカル開発・テスト用。URL はファイルパス
	DriverSQLite = "sqlite"
)

func defaults() Config {
	return Config{
		Port: "8080",
		DB: DBConfig{
			Driver:  DriverPostgres,
			Host:    "localhost",
			SSLMode: "disable",
		},
		GoEnv:          "dev",
		LogLevel:       "info",
		ServiceName:    "storefront",
		AutoMigrate:    true,
		RequestTimeout: 10 * time.Second,
	}
}

// Loadは .env → CONFIG_FILE(yaml) → 環境変数 の順で上書きする
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDB はDB接続だけ使うコマンド用（JWT_SECRET は見ない）
func LoadDB() (DBConfig, error) {
	cfg, err := load()
	if err != nil {
		return DBConfig{}, err
	}
	if err := cfg.DB.Validate(); err != nil {
		return DBConfig{}, err
	}
	return cfg.DB, nil
}

func load() (Config, error) {
	// .env は無くてもよい
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	clean := filepath.Clean(path)
	ext := filepath.Ext(clean)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("CONFIG_FILE must be yaml: %s", clean)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", clean, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", clean, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.GoEnv, "GO_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.ServiceName, "SERVICE_NAME")

	if err := setBool(&c.TracingEnabled, "TRACING_ENABLED"); err != nil {
		return err
	}
	if err := setBool(&c.AutoMigrate, "AUTO_MIGRATE"); err != nil {
		return err
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT must be duration: %w", err)
		}
		c.RequestTimeout = d
	}

	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.URL, "DATABASE_URL")

	// driverごとに読むキーが違う
	prefix := "POSTGRES_"
	if c.DB.Driver == DriverMySQL {
		prefix = "MYSQL_"
		if c.DB.Params == "" {
			c.DB.Params = "charset=utf8mb4&parseTime=True&loc=UTC"
		}
	}
	setString(&c.DB.Host, prefix+"HOST")
	setString(&c.DB.User, prefix+"USER")
	setString(&c.DB.Password, prefix+"PASSWORD")
	setString(&c.DB.Name, prefix+"DB")
	setString(&c.DB.SSLMode, prefix+"SSLMODE")
	setString(&c.DB.Params, prefix+"PARAMS")
	if err := setInt(&c.DB.Port, prefix+"PORT"); err != nil {
		return err
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
		if c.DB.Driver == DriverMySQL {
			c.DB.Port = 3306
		}
	}
	return nil
}

// 必須チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if err := c.DB.Validate(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug/info/warn/error: %q", c.LogLevel)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (d DBConfig) Validate() error {
	switch d.Driver {
	case DriverPostgres, DriverMySQL:
	case DriverSQLite:
		if d.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for sqlite")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, mysql or sqlite: %q", d.Driver)
	}
	if d.URL == "" {
		if d.User == "" {
			return fmt.Errorf("%s_USER is required", strings.ToUpper(d.Driver))
		}
		if d.Name == "" {
			return fmt.Errorf("%s_DB is required", strings.ToUpper(d.Driver))
		}
	}
	return nil
}

// ":8080" 形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s must be bool: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be number: %w", key, err)
	}
	*dst = i
	return nil
}
