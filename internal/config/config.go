package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only suitable for local development. Any real
// deployment must override it via JWT_SECRET.
const DefaultJWTSecret = "scratch-show-secret-key-2024"

type Config struct {
	Env    string       `mapstructure:"env"`
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	DB     DBConfig     `mapstructure:"database"`
	Upload UploadConfig `mapstructure:"upload"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	// TokenTTLHours is the access token lifetime. Defaults to 24.
	TokenTTLHours int `mapstructure:"token_ttl_hours"`
}

type DBConfig struct {
	// Path to the SQLite database file. ":memory:" keeps everything
	// in-process, which the tests rely on.
	Path string `mapstructure:"path"`
}

type UploadConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs") // IDE from cmd/server

	viper.SetDefault("env", env)
	viper.SetDefault("server.port", "3002")
	viper.SetDefault("server.read_timeout_seconds", 30)
	viper.SetDefault("server.write_timeout_seconds", 60)
	viper.SetDefault("server.idle_timeout_seconds", 120)
	viper.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	viper.SetDefault("auth.token_ttl_hours", 24)
	viper.SetDefault("database.path", "data.db")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.max_upload_mb", 50)

	// Config file is optional - defaults plus ENV variables are enough
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variable overrides take precedence over the config file
	viper.AutomaticEnv()
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("database.path", "DB_PATH")
	viper.BindEnv("upload.dir", "UPLOAD_DIR")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
