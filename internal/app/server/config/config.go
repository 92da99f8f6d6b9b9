package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"

	"herdbook/internal/config"
)

const defaultRunAddress = ":8080"

type Config struct {
	Env    string
	DB     DB
	Server Server
	Logger Logger
	Auth   Auth
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
	MaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

type Server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

var ErrNoSecret = errors.New("JWT_SECRET is not set")

// Load reads the server configuration from the environment and an optional .env file
func Load() (*Config, error) {
	if _, err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", config.EnvLocal)
	v.SetDefault("RUN_ADDRESS", defaultRunAddress)
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		DB: DB{
			DatabaseURI: v.GetString("DATABASE_URI"),
			Migrations:  v.GetString("MIGRATIONS_PATH"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
		},
		Server: Server{RunAddress: v.GetString("RUN_ADDRESS")},
		Logger: Logger{LogLevel: v.GetString("LOG_LEVEL")},
		Auth:   Auth{JWTSecret: v.GetString("JWT_SECRET")},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if !config.ValidEnv(c.Env) {
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	if c.DB.DatabaseURI == "" {
		return errors.New("DATABASE_URI is not set")
	}
	if c.DB.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DB.MaxConns)
	}
	if c.Auth.JWTSecret == "" {
		return ErrNoSecret
	}
	return nil
}
