package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	S3    S3Config
}

// AuthConfig holds the token signing secrets and expiry policies. Both
// secrets are required; they are read once at startup and immutable after.
type AuthConfig struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,  required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL,     default=15m"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL,    default=240h"`
	BcryptCost         int           `env:"BCRYPT_COST,          default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type S3Config struct {
	Region        string `env:"S3_REGION,          default=us-east-1"`
	Bucket        string `env:"S3_BUCKET,          default=accounts-media"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	Endpoint      string `env:"S3_ENDPOINT"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
