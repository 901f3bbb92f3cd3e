package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var (
	ErrMissingSecret  = errors.New("jwt secret key is not configured")
	ErrUnknownStorage = errors.New("unknown storage driver")
)

type Config struct {
	LogLevel      string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Port          string  `yaml:"port" env:"PORT" env-default:"3001"`
	JWTSecretKey  string  `yaml:"jwt-secret-key" env:"JWT_SECRET" env-required:"true"`
	IdentityClaim string  `yaml:"identity-claim" env:"JWT_IDENTITY_CLAIM" env-default:"telegramId"`
	AllowedOrigin string  `yaml:"allowed-origin" env:"ALLOWED_ORIGIN" env-default:"https://triswebapp.vercel.app"`
	Storage       Storage `yaml:"storage"`
	Redis         Redis   `yaml:"redis"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type Redis struct {
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	RoomTTL time.Duration `yaml:"room-ttl" env:"REDIS_ROOM_TTL" env-default:"24h"`
}

// MustLoad - load configuration from the yml file at path, when it exists, and from the environment.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, err
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	if that.JWTSecretKey == "" {
		return ErrMissingSecret
	}

	switch that.Storage.Driver {
	case StorageMemory, StorageRedis:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage.Driver)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
