package testutils

import (
	"time"

	"github.com/manugamu/pfc/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		JWT: config.JWTConfig{
			SecretKey:     "test-secret-key-32-chars-long!!!",
			Issuer:        "pfc-test",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 7 * 24 * time.Hour,
		},
		Auth: config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Revocation: config.RevocationConfig{
			Store: "memory",
		},
	}
}

var TestUsers = struct {
	Fallero struct {
		Username string
		Email    string
		Password string
	}
	Falla struct {
		Username  string
		Email     string
		Password  string
		FallaCode string
	}
}{
	Fallero: struct {
		Username string
		Email    string
		Password string
	}{
		Username: "pepet",
		Email:    "pepet@example.com",
		Password: "Password123",
	},
	Falla: struct {
		Username  string
		Email     string
		Password  string
		FallaCode string
	}{
		Username:  "falla-el-pilar",
		Email:     "elpilar@example.com",
		Password:  "Password123",
		FallaCode: "FLL-001",
	},
}
