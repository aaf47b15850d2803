package config

import "time"

// safe for API structure
type PublicConfig struct {
	General struct {
		DataDir     string `yaml:"dataDir" json:"dataDir"`
		LogLevel    string `yaml:"logLevel" json:"logLevel"`
		Development bool   `yaml:"development" json:"development"`
	} `yaml:"general" json:"general"`

	Storage struct {
		Engine    string `yaml:"engine" json:"engine"`
		Path      string `yaml:"path" json:"path"`
		WatchFile bool   `yaml:"watchFile" json:"watchFile"`

		Firebase struct {
			DatabaseURL string `yaml:"databaseUrl" json:"databaseUrl"`
			ProjectID   string `yaml:"projectId" json:"projectId"`
		} `yaml:"firebase" json:"firebase"`

		// Redis URLs may carry a password, only report whether one is set
		RedisConfigured bool `yaml:"redisConfigured" json:"redisConfigured"`
	} `yaml:"storage" json:"storage"`

	HTTP struct {
		Address  string `yaml:"address" json:"address"`
		Port     int    `yaml:"port" json:"port"`
		TLS      bool   `yaml:"tls" json:"tls"`
		CertFile string `yaml:"certFile" json:"certFile"`
		KeyFile  string `yaml:"keyFile" json:"keyFile"`

		CORS struct {
			Enabled        bool     `yaml:"enabled" json:"enabled"`
			AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
		} `yaml:"cors" json:"cors"`

		JWT struct {
			ExpirationMinutes int `yaml:"expirationMinutes" json:"expirationMinutes"`
		} `yaml:"jwt" json:"jwt"`
	} `yaml:"http" json:"http"`

	Telegram struct {
		Enabled     bool          `yaml:"enabled" json:"enabled"`
		AdminChatID int64         `yaml:"adminChatId" json:"adminChatId"`
		WebhookURL  string        `yaml:"webhookUrl" json:"webhookUrl"`
		Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"telegram" json:"telegram"`

	Security struct {
		EnableAuthentication bool   `yaml:"enableAuthentication" json:"enableAuthentication"`
		AdminUsername        string `yaml:"adminUsername" json:"adminUsername"`
	} `yaml:"security" json:"security"`

	Logging struct {
		Level       string `yaml:"level" json:"level"`
		ChannelSize int    `yaml:"channelSize" json:"channelSize"`
		Format      string `yaml:"format" json:"format"`
		Output      string `yaml:"output" json:"output"`
		FilePath    string `yaml:"filePath" json:"filePath"`
	} `yaml:"logging" json:"logging"`
}

// Public copies every non-secret setting of c
func (c *Config) Public() *PublicConfig {
	p := &PublicConfig{}

	p.General.DataDir = c.General.DataDir
	p.General.LogLevel = c.General.LogLevel
	p.General.Development = c.General.Development

	p.Storage.Engine = c.Storage.Engine
	p.Storage.Path = c.Storage.Path
	p.Storage.WatchFile = c.Storage.WatchFile
	p.Storage.Firebase.DatabaseURL = c.Storage.Firebase.DatabaseURL
	p.Storage.Firebase.ProjectID = c.Storage.Firebase.ProjectID
	p.Storage.RedisConfigured = c.Storage.Redis.URL != ""

	p.HTTP.Address = c.HTTP.Address
	p.HTTP.Port = c.HTTP.Port
	p.HTTP.TLS = c.HTTP.TLS
	p.HTTP.CertFile = c.HTTP.CertFile
	p.HTTP.KeyFile = c.HTTP.KeyFile
	p.HTTP.CORS.Enabled = c.HTTP.CORS.Enabled
	p.HTTP.CORS.AllowedOrigins = append([]string(nil), c.HTTP.CORS.AllowedOrigins...)
	p.HTTP.JWT.ExpirationMinutes = c.HTTP.JWT.ExpirationMinutes

	p.Telegram.Enabled = c.Telegram.BotToken != "" && c.Telegram.AdminChatID != 0
	p.Telegram.AdminChatID = c.Telegram.AdminChatID
	p.Telegram.WebhookURL = c.Telegram.WebhookURL
	p.Telegram.Timeout = c.Telegram.Timeout

	p.Security.EnableAuthentication = c.Security.EnableAuthentication
	p.Security.AdminUsername = c.Security.AdminUsername

	p.Logging.Level = c.Logging.Level
	p.Logging.ChannelSize = c.Logging.ChannelSize
	p.Logging.Format = c.Logging.Format
	p.Logging.Output = c.Logging.Output
	p.Logging.FilePath = c.Logging.FilePath

	return p
}
