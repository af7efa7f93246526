package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ModeServer   = "server"
	ModeTerminal = "terminal"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var (
	ErrUnknownMode  = errors.New("unknown mode")
	ErrUnknownStore = errors.New("unknown session store")
	ErrNoJWTSecret  = errors.New("jwt secret key is empty")
)

type Config struct {
	LogLevel     string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Mode         string   `yaml:"mode" env:"MODE" env-default:"server"`
	HTTPPort     string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	JWTSecretKey string   `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY"`
	Redis        Redis    `yaml:"redis"`
	Session      Session  `yaml:"session"`
	WebSocket    WS       `yaml:"websocket"`
	Terminal     Terminal `yaml:"terminal"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Session struct {
	Store string        `yaml:"store" env:"SESSION_STORE" env-default:"memory"`
	TTL   time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
}

type WS struct {
	AllowedOrigin string `yaml:"allowed-origin" env:"WS_ALLOWED_ORIGIN" env-default:""`
}

type Terminal struct {
	LogFile string `yaml:"log-file" env:"TERMINAL_LOG_FILE" env-default:"tictactoe.log"`
	Sound   bool   `yaml:"sound" env:"TERMINAL_SOUND" env-default:"true"`
}

// MustLoad - load all configurations in config.yml file, with .env and
// environment variables overriding it.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Mode {
	case ModeServer:
		if that.JWTSecretKey == "" {
			return ErrNoJWTSecret
		}
	case ModeTerminal:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, that.Mode)
	}

	switch that.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, that.Session.Store)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
