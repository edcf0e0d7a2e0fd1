package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Content  ContentConfig
	Flywheel FlywheelConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Path string
}

type ContentConfig struct {
	Dir string
}

type FlywheelConfig struct {
	APIKey         string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional; plain environment variables are enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	connectTimeout := time.Duration(viper.GetInt("FW_CONNECT_TIMEOUT")) * time.Second
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}

	requestTimeout := time.Duration(viper.GetInt("FW_REQUEST_TIMEOUT")) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 300 * time.Second
	}

	dbPath := viper.GetString("DB_PATH")
	if dbPath == "" {
		dbPath = "database/identifier.sqlite"
	}

	contentDir := viper.GetString("CONTENT_DIR")
	if contentDir == "" {
		contentDir = "cache"
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Path: dbPath,
		},
		Content: ContentConfig{
			Dir: contentDir,
		},
		Flywheel: FlywheelConfig{
			APIKey:         viper.GetString("FW_API_KEY"),
			ConnectTimeout: connectTimeout,
			RequestTimeout: requestTimeout,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(viper.GetString("CORS_ORIGINS")),
		},
	}

	return config, nil
}

func parseOrigins(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8000"}
	}
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
