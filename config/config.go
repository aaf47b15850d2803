package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage engines
const (
	EngineFirebase = "firebase"
	EngineRedis    = "redis"
	EngineSQLite   = "sqlite"
	EngineFile     = "file"
	EngineMemory   = "memory"
)

// Config holds the global service configuration
type Config struct {
	// General configuration
	General struct {
		// DataDir is the data storage directory
		DataDir string `yaml:"dataDir"`

		// LogLevel is the logging level
		LogLevel string `yaml:"logLevel"`

		// Development enables development mode
		Development bool `yaml:"development"`
	} `yaml:"general"`

	// Storage configuration
	Storage struct {
		// Engine selects the document store: firebase, redis, sqlite, file or memory
		Engine string `yaml:"engine"`

		// Path is the file engine document file or the sqlite database
		Path string `yaml:"path"`

		// WatchFile reloads the file engine when its file changes on disk
		WatchFile bool `yaml:"watchFile"`

		Firebase struct {
			DatabaseURL     string `yaml:"databaseUrl"`
			ProjectID       string `yaml:"projectId"`
			CredentialsFile string `yaml:"credentialsFile"`
		} `yaml:"firebase"`

		Redis struct {
			URL    string `yaml:"url"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	// HTTP server configuration
	HTTP struct {
		// Address to bind the HTTP server
		Address string `yaml:"address"`

		// Port to bind the HTTP server
		Port int `yaml:"port"`

		// TLS enables TLS
		TLS bool `yaml:"tls"`

		// CertFile is the TLS certificate path
		CertFile string `yaml:"certFile"`

		// KeyFile is the TLS private key path
		KeyFile string `yaml:"keyFile"`

		// CORS configuration
		CORS struct {
			// Enabled enables CORS
			Enabled bool `yaml:"enabled"`

			// AllowedOrigins is the list of allowed origins
			AllowedOrigins []string `yaml:"allowedOrigins"`
		} `yaml:"cors"`

		// JWT configuration
		JWT struct {
			// Secret is the signing key for tokens
			Secret string `yaml:"secret"`

			// ExpirationMinutes is the token validity duration
			ExpirationMinutes int `yaml:"expirationMinutes"`
		} `yaml:"jwt"`
	} `yaml:"http"`

	// Telegram notification relay
	Telegram struct {
		// BotToken disables the relay when empty
		BotToken string `yaml:"botToken"`

		// AdminChatID disables the relay when zero
		AdminChatID int64 `yaml:"adminChatId"`

		// WebhookURL is the default target of webhook setup
		WebhookURL string `yaml:"webhookUrl"`

		// APIEndpoint overrides the Bot API endpoint format
		APIEndpoint string `yaml:"apiEndpoint"`

		// Timeout bounds every outbound Bot API call
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"telegram"`

	// Security configuration
	Security struct {
		// EnableAuthentication protects the admin routes
		EnableAuthentication bool `yaml:"enableAuthentication"`

		// AdminUsername is the account created by bootstrap
		AdminUsername string `yaml:"adminUsername"`
	} `yaml:"security"`

	// Stats collection
	Stats struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"stats"`

	Logging struct {
		Level       string `yaml:"level"` // "ERROR", "WARN", "INFO", "DEBUG"
		ChannelSize int    `yaml:"channelSize"`
		Format      string `yaml:"format"`
		Output      string `yaml:"output"`
		FilePath    string `yaml:"filePath"`
	} `yaml:"logging"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	c := &Config{}

	// General configuration
	c.General.DataDir = "./data"
	c.General.LogLevel = "info"
	c.General.Development = false

	// Storage configuration
	c.Storage.Engine = EngineMemory
	c.Storage.Path = "documents.db"
	c.Storage.WatchFile = true
	c.Storage.Redis.Prefix = "bantuankita:"

	// HTTP server configuration
	c.HTTP.Address = "0.0.0.0"
	c.HTTP.Port = 3000
	c.HTTP.TLS = false
	c.HTTP.CORS.Enabled = true
	c.HTTP.CORS.AllowedOrigins = []string{"*"}
	c.HTTP.JWT.Secret = "changeme"
	c.HTTP.JWT.ExpirationMinutes = 60

	// Telegram configuration
	c.Telegram.APIEndpoint = "https://api.telegram.org/bot%s/%s"
	c.Telegram.Timeout = 10 * time.Second

	// Security configuration
	c.Security.EnableAuthentication = true
	c.Security.AdminUsername = "admin"

	c.Stats.Interval = 10 * time.Second

	// Logging configuration defaults
	c.Logging.Level = "INFO"
	c.Logging.ChannelSize = 1000
	c.Logging.Format = "json"
	c.Logging.Output = "stdout"
	c.Logging.FilePath = ""

	return c
}

// LoadConfig loads the configuration from a file, then applies the
// environment (and a .env file next to it, if any).
func LoadConfig(path string) (*Config, error) {
	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Load the default configuration
	config := DefaultConfig()

	// Decode the YAML file
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := LoadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	// Complete relative paths
	if !filepath.IsAbs(config.General.DataDir) {
		dir, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		config.General.DataDir = filepath.Join(dir, config.General.DataDir)
	}

	if config.Storage.Path != "" && config.Storage.Path != ":memory:" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(config.General.DataDir, config.Storage.Path)
	}

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides secrets and deployment values from the environment
func ApplyEnv(config *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("STORAGE_ENGINE", &config.Storage.Engine)
	setString("STORAGE_PATH", &config.Storage.Path)
	setString("FIREBASE_DATABASE_URL", &config.Storage.Firebase.DatabaseURL)
	setString("FIREBASE_PROJECT_ID", &config.Storage.Firebase.ProjectID)
	setString("FIREBASE_CREDENTIALS_FILE", &config.Storage.Firebase.CredentialsFile)
	setString("REDIS_URL", &config.Storage.Redis.URL)
	setString("TELEGRAM_BOT_TOKEN", &config.Telegram.BotToken)
	setString("TELEGRAM_WEBHOOK_URL", &config.Telegram.WebhookURL)
	setString("BANTUAN_JWT_SECRET", &config.HTTP.JWT.Secret)
	setString("LOG_LEVEL", &config.General.LogLevel)

	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		config.Telegram.AdminChatID = id
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		config.HTTP.Port = port
	}

	return nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	// Encode the configuration to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Create parent directory if necessary
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Check the log level
	logLevel := strings.ToLower(config.General.LogLevel)
	if logLevel != "debug" && logLevel != "info" && logLevel != "warn" && logLevel != "error" {
		return fmt.Errorf("invalid log level: %s", config.General.LogLevel)
	}

	// Check the storage engine
	switch strings.ToLower(config.Storage.Engine) {
	case EngineFirebase, EngineRedis, EngineSQLite, EngineFile, EngineMemory:
	default:
		return fmt.Errorf("invalid storage engine: %s", config.Storage.Engine)
	}

	// check ports
	if config.HTTP.Port < 1 || config.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", config.HTTP.Port)
	}

	if config.Telegram.Timeout < 0 {
		return fmt.Errorf("invalid telegram timeout: %s", config.Telegram.Timeout)
	}

	// Check the TLS configurations
	if config.HTTP.TLS && (config.HTTP.CertFile == "") != (config.HTTP.KeyFile == "") {
		return fmt.Errorf("TLS enabled but only one of certificate or key file specified")
	}

	return nil
}
