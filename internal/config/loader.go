package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "billed.toml"

// EnvPrefix prefixes every environment override, e.g. BILLED_AUTH_JWT_SECRET.
const EnvPrefix = "BILLED"

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath overrides DefaultConfigFile.
	ConfigPath string
	// EnvFile is loaded into the environment first. Defaults to ".env".
	EnvFile string
	// FlagOverrides are highest-priority overrides from CLI flags (dot-notated keys).
	FlagOverrides map[string]any
}

// Load returns the effective configuration.
func Load(opts LoadOptions) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Variables already set in the environment win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigFile
	}
	if err := mergeConfigFile(v, path, opts.ConfigPath != ""); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range opts.FlagOverrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults seeds viper with built-in defaults. Every key needs a default
// for AutomaticEnv to pick up its variable during Unmarshal.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.api_url", def.Server.APIURL)
	v.SetDefault("server.secure_cookies", def.Server.SecureCookies)

	v.SetDefault("storage.db_path", def.Storage.DBPath)
	v.SetDefault("storage.receipts_dir", def.Storage.ReceiptsDir)
	v.SetDefault("storage.max_upload_bytes", def.Storage.MaxUploadBytes)

	v.SetDefault("auth.jwt_secret", def.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", def.Auth.TokenTTL)

	v.SetDefault("log.level", def.Log.Level)
}

// mergeConfigFile merges the TOML config file. A missing file is only an
// error when it was asked for explicitly.
func mergeConfigFile(v *viper.Viper, path string, required bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

// WriteDefault writes cfg as TOML to path, refusing to overwrite an
// existing file.
func WriteDefault(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
