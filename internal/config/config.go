package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Cognito   CognitoConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// CognitoConfig describes the user pool whose tokens are accepted.
type CognitoConfig struct {
	Region          string
	UserPoolID      string
	ClientIDs       []string
	IssuerURL       string
	JWKSDiscovery   bool
	JWKSPerMinute   int
	JWKSHTTPTimeout time.Duration
	ClockSkew       time.Duration
}

type MongoDBConfig struct {
	URI             string
	Database        string
	UsersCollection string
	Timeout         time.Duration
}

type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	ProfileCacheTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// MinIOConfig holds MinIO connection configuration used for avatars
type MinIOConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Bucket         string
	PublicURL      string
	AvatarMaxBytes int64
}

// ConfigurationError reports required settings that are absent. The process
// must not serve requests when LoadConfig returns it.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "configuration missing: set " + strings.Join(e.Missing, " and ")
}

// Issuer returns the expected `iss` claim for tokens of the configured pool.
func (c CognitoConfig) Issuer() string {
	if c.IssuerURL != "" {
		return strings.TrimRight(c.IssuerURL, "/")
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// JWKSURL returns the conventional key-set location below the issuer.
func (c CognitoConfig) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "4000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("JWKS_REQUESTS_PER_MINUTE", 10)
	v.SetDefault("JWKS_HTTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("AUTH_CLOCK_SKEW_SECONDS", 0)
	v.SetDefault("MONGODB_DATABASE", "scavhunt")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("USERS_COLLECTION", "users")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("PROFILE_CACHE_TTL_SECONDS", 300)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_BUCKET", "scavhunt-avatars")
	v.SetDefault("AVATAR_MAX_BYTES", 5<<20)

	region := strings.TrimSpace(v.GetString("COGNITO_REGION"))
	if region == "" {
		region = strings.TrimSpace(v.GetString("AWS_REGION"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Cognito: CognitoConfig{
			Region:          region,
			UserPoolID:      strings.TrimSpace(v.GetString("COGNITO_USER_POOL_ID")),
			ClientIDs:       splitList(v.GetString("COGNITO_CLIENT_IDS")),
			IssuerURL:       strings.TrimSpace(v.GetString("COGNITO_ISSUER_URL")),
			JWKSDiscovery:   v.GetBool("COGNITO_JWKS_DISCOVERY"),
			JWKSPerMinute:   v.GetInt("JWKS_REQUESTS_PER_MINUTE"),
			JWKSHTTPTimeout: time.Duration(v.GetInt("JWKS_HTTP_TIMEOUT_SECONDS")) * time.Second,
			ClockSkew:       time.Duration(v.GetInt("AUTH_CLOCK_SKEW_SECONDS")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGODB_URI"),
			Database:        v.GetString("MONGODB_DATABASE"),
			UsersCollection: v.GetString("USERS_COLLECTION"),
			Timeout:         time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:            v.GetString("REDIS_HOST"),
			Port:            v.GetString("REDIS_PORT"),
			Password:        v.GetString("REDIS_PASSWORD"),
			DB:              v.GetInt("REDIS_DB"),
			ProfileCacheTTL: time.Duration(v.GetInt("PROFILE_CACHE_TTL_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		MinIO: MinIOConfig{
			Endpoint:       v.GetString("MINIO_ENDPOINT"),
			AccessKey:      v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:      v.GetString("MINIO_SECRET_KEY"),
			UseSSL:         v.GetBool("MINIO_USE_SSL"),
			Bucket:         v.GetString("MINIO_BUCKET"),
			PublicURL:      strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
			AvatarMaxBytes: v.GetInt64("AVATAR_MAX_BYTES"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Cognito.UserPoolID == "" {
		missing = append(missing, "COGNITO_USER_POOL_ID")
	}
	if c.Cognito.Region == "" {
		missing = append(missing, "COGNITO_REGION")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
