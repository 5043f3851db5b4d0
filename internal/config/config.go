package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string

	// AuthJWTSecret verifies bearer tokens minted by the identity provider.
	AuthJWTSecret string

	StorageEndpoint       string
	StorageAccessKey      string
	StorageSecretKey      string
	StorageUseSSL         bool
	StoragePublicEndpoint string

	MaxVideoUploadMB int
	SignedReadTTL    time.Duration
	SignedUploadTTL  time.Duration
	ListCacheTTL     time.Duration

	OpenAIAPIKey string
	AIModel      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SKILLCAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SkillCam API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("max_video_upload_mb", 250)
	v.SetDefault("signed_read_ttl", "1h")
	v.SetDefault("signed_upload_ttl", "30m")
	v.SetDefault("list_cache_ttl", "1m")
	v.SetDefault("ai.model", "gpt-4o-mini")

	readTTL, err := time.ParseDuration(v.GetString("signed_read_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid signed read ttl: %w", err)
	}

	uploadTTL, err := time.ParseDuration(v.GetString("signed_upload_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid signed upload ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("list_cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid list cache ttl: %w", err)
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		AuthJWTSecret:         v.GetString("auth.jwt_secret"),
		StorageEndpoint:       v.GetString("storage.endpoint"),
		StorageAccessKey:      v.GetString("storage.access_key"),
		StorageSecretKey:      v.GetString("storage.secret_key"),
		StorageUseSSL:         v.GetBool("storage.use_ssl"),
		StoragePublicEndpoint: v.GetString("storage.public_endpoint"),
		MaxVideoUploadMB:      v.GetInt("max_video_upload_mb"),
		SignedReadTTL:         readTTL,
		SignedUploadTTL:       uploadTTL,
		ListCacheTTL:          cacheTTL,
		OpenAIAPIKey:          v.GetString("openai_api_key"),
		AIModel:               v.GetString("ai.model"),
	}

	if cfg.AuthJWTSecret == "" {
		return Config{}, fmt.Errorf("auth jwt secret must be provided")
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.MaxVideoUploadMB <= 0 {
		cfg.MaxVideoUploadMB = 250
	}

	return cfg, nil
}
