package bootstrap

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	GrpcPort          string `mapstructure:"GRPC_PORT"`
	RedisUrl          string `mapstructure:"REDIS_URL"`
	MongoUri          string `mapstructure:"MONGO_URI"`
	MongoDatabase     string `mapstructure:"MONGO_DATABASE"`
	IsLocalCors       bool   `mapstructure:"LOCAL_CORS"`
	PageLimitRecords  int    `mapstructure:"PAGE_LIMIT_RECORDS"`
	BoardSize         int    `mapstructure:"BOARD_SIZE"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	AutosaveDir       string `mapstructure:"AUTOSAVE_DIR"`
	AppName           string `mapstructure:"APP_NAME"`
	Debug             bool   `mapstructure:"DEBUG"`
}

var defaults = map[string]any{
	"SERVER_PORT":         "8080",
	"GRPC_PORT":           "8082",
	"REDIS_URL":           "localhost:6379",
	"MONGO_URI":           "mongodb://localhost:27017",
	"MONGO_DATABASE":      "kifu_editor",
	"LOCAL_CORS":          false,
	"PAGE_LIMIT_RECORDS":  20,
	"BOARD_SIZE":          19,
	"SESSION_TTL_MINUTES": 720,
	"AUTOSAVE_DIR":        "",
	"APP_NAME":            "Kifu Editor",
	"DEBUG":               false,
}

// Setup reads cfgPath if it exists; environment variables override the file.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
