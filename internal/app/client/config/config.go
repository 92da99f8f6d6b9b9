package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	sharedcfg "herdbook/internal/config"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = sharedcfg.EnvLocal
	defaultConfigDir     = ".herdbook"
)

type Config struct {
	Env                   string        `mapstructure:"app_env"`
	ServerAddress         string        `mapstructure:"server_address"`
	EnableTLS             bool          `mapstructure:"enable_tls"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFile               string        `mapstructure:"log_file"`
	ConfigDir             string        `mapstructure:"config_dir"`
	TokenPath             string        `mapstructure:"token_path"`
	DataPath              string        `mapstructure:"data_path"`
	SyncInterval          time.Duration `mapstructure:"sync_interval_seconds"`
	ConnectivityInterval  time.Duration `mapstructure:"connectivity_interval_seconds"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout_seconds"`
	PruneMissing          bool          `mapstructure:"sync_prune_missing"`
	AcceptInsertWithoutID bool          `mapstructure:"sync_accept_insert_without_id"`
}

// Load загружает конфигурацию клиента из .env и переменных окружения
func Load() (*Config, error) {
	if _, err := sharedcfg.LoadDotEnv(); err != nil {
		fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
	}

	v := viper.GetViper()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("SYNC_INTERVAL_SECONDS", 60)
	v.SetDefault("CONNECTIVITY_INTERVAL_SECONDS", 15)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("SYNC_PRUNE_MISSING", true)
	v.SetDefault("SYNC_ACCEPT_INSERT_WITHOUT_ID", false)

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	tokenPath := v.GetString("TOKEN_PATH")
	if tokenPath == "" {
		tokenPath = filepath.Join(configDir, "token")
	}
	dataPath := v.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, "records.db")
	}

	config := &Config{
		Env:                   v.GetString("APP_ENV"),
		ServerAddress:         v.GetString("SERVER_ADDRESS"),
		EnableTLS:             v.GetBool("ENABLE_TLS"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFile:               v.GetString("LOG_FILE"),
		ConfigDir:             configDir,
		TokenPath:             tokenPath,
		DataPath:              dataPath,
		SyncInterval:          seconds(v.GetInt("SYNC_INTERVAL_SECONDS")),
		ConnectivityInterval:  seconds(v.GetInt("CONNECTIVITY_INTERVAL_SECONDS")),
		RequestTimeout:        seconds(v.GetInt("REQUEST_TIMEOUT_SECONDS")),
		PruneMissing:          v.GetBool("SYNC_PRUNE_MISSING"),
		AcceptInsertWithoutID: v.GetBool("SYNC_ACCEPT_INSERT_WITHOUT_ID"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	return config, nil
}

// MustLoad загружает конфигурацию клиента и паникует при ошибке
func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		panic(err.Error())
	}
	return config
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if !sharedcfg.ValidEnv(c.Env) {
		return fmt.Errorf("неизвестное окружение %q", c.Env)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds должен быть положительным")
	}
	if c.ConnectivityInterval <= 0 {
		return fmt.Errorf("connectivity_interval_seconds должен быть положительным")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds должен быть положительным")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == sharedcfg.EnvProd
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == sharedcfg.EnvLocal || c.Env == ""
}
