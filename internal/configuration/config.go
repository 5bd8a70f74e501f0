package configuration

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type MongoConfig struct {
	Uri      string `json:"uri"`
	Database string `json:"database"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	SocketPort     int      `json:"socket_port"`
	SocketRoute    string   `json:"socket_route"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type AuthConfig struct {
	JwtSecret       string `json:"jwt_secret"`
	TokenTTLMinutes int    `json:"token_ttl_minutes"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Auth         AuthConfig   `json:"auth"`
}

// envOverrides are the secrets that must not live in the config file.
type envOverrides struct {
	MongoUri  string `envconfig:"MONGO_URI"`
	JwtSecret string `envconfig:"JWT_SECRET"`
	AppPort   int    `envconfig:"APP_PORT"`
}

func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// LoadConfig reads the JSON config file and applies environment
// overrides on top.
func LoadConfig(configPath string) (*Config, error) {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process("chatapp", &env); err != nil {
		return nil, err
	}
	if env.MongoUri != "" {
		config.ChatDatabase.Uri = env.MongoUri
	}
	if env.JwtSecret != "" {
		config.Auth.JwtSecret = env.JwtSecret
	}
	if env.AppPort != 0 {
		config.Server.AppPort = env.AppPort
	}

	if config.Server.SocketRoute == "" {
		config.Server.SocketRoute = "ws"
	}

	return &config, nil
}
