// Package config loads the billed configuration.
// Precedence: defaults < config file (billed.toml) < .env < BILLED_* env < flags.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Auth    AuthConfig    `toml:"auth" mapstructure:"auth"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Addr string `toml:"addr" mapstructure:"addr"`
	// APIURL is where the UI reaches the bill API. Empty means this process.
	APIURL        string `toml:"api_url" mapstructure:"api_url"`
	SecureCookies bool   `toml:"secure_cookies" mapstructure:"secure_cookies"`
}

// StorageConfig holds the database and receipt locations.
type StorageConfig struct {
	DBPath         string `toml:"db_path" mapstructure:"db_path"`
	ReceiptsDir    string `toml:"receipts_dir" mapstructure:"receipts_dir"`
	MaxUploadBytes int64  `toml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// AuthConfig holds the session token settings.
type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl" mapstructure:"token_ttl"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"` // debug | info | warn | error
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			DBPath:         "./data/billed.db",
			ReceiptsDir:    "./data/receipts",
			MaxUploadBytes: 5 << 20,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
