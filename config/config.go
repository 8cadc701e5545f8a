package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"PFC_SERVER_"`
	Log        LogConfig        `envPrefix:"PFC_LOG_"`
	JWT        JWTConfig        `envPrefix:"PFC_JWT_"`
	Auth       AuthConfig       `envPrefix:"PFC_AUTH_"`
	Database   DatabaseConfig   `envPrefix:"PFC_DB_"`
	Revocation RevocationConfig `envPrefix:"PFC_REVOCATION_"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type JWTConfig struct {
	SecretKey     string        `env:"SECRET_KEY,required"`
	Issuer        string        `env:"ISSUER" envDefault:"pfc"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
}

type AuthConfig struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"pfc.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RevocationConfig struct {
	Store         string `env:"STORE" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
