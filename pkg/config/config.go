package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/anonto42/gamematch/backend/pkg/logger"
)

type Config struct {
	Port     string         `mapstructure:"port"`
	Env      string         `mapstructure:"env"`
	Log      logger.Config  `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Auth     AuthConfig     `mapstructure:"auth"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // postgres, sqlite
	PostgresURL  string `mapstructure:"postgres_url"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AuthConfig struct {
	Provider                string `mapstructure:"provider"` // firebase, jwt
	FirebaseCredentialsPath string `mapstructure:"firebase_credentials_path"`
	JWTSecret               string `mapstructure:"jwt_secret"`
}

type PubSubConfig struct {
	Driver        string        `mapstructure:"driver"` // redis, kafka, none
	RedisAddress  string        `mapstructure:"redis_address"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	KafkaBrokers  string        `mapstructure:"kafka_brokers"`
	KafkaTopic    string        `mapstructure:"kafka_topic"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
}

type StorageConfig struct {
	Driver            string `mapstructure:"driver"` // local, s3
	LocalPath         string `mapstructure:"local_path"`
	PublicURL         string `mapstructure:"public_url"`
	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3Region          string `mapstructure:"s3_region"`
	S3Bucket          string `mapstructure:"s3_bucket"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	S3UsePathStyle    bool   `mapstructure:"s3_use_path_style"`
	S3PublicURL       string `mapstructure:"s3_public_url"`
}

type FeedConfig struct {
	Window         time.Duration `mapstructure:"window"`
	PageSize       int           `mapstructure:"page_size"`
	FollowPriority bool          `mapstructure:"follow_priority"`
}

type NotifyConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// IsDevelopment reports whether error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		l := logger.L()
		l.Info().Msg("no .env file found, using process environment")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "gamematch")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.postgres_url", "")
	v.SetDefault("database.sqlite_path", "./data/gamematch.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "gamematch")
	v.SetDefault("auth.provider", "firebase")
	v.SetDefault("auth.firebase_credentials_path", "./firebase_credentials.json")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("pubsub.driver", "redis")
	v.SetDefault("pubsub.redis_address", "localhost:6379")
	v.SetDefault("pubsub.redis_password", "")
	v.SetDefault("pubsub.redis_db", 0)
	v.SetDefault("pubsub.kafka_brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka_topic", "user-notifications")
	v.SetDefault("pubsub.dial_timeout", "5s")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_path", "./public/uploads")
	v.SetDefault("storage.public_url", "/uploads")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_use_path_style", false)
	v.SetDefault("feed.window", "720h")
	v.SetDefault("feed.page_size", 10)
	v.SetDefault("feed.follow_priority", true)
	v.SetDefault("notify.timeout", "5s")

	bindings := map[string]string{
		"port":                           "PORT",
		"env":                            "ENV",
		"log.level":                      "LOG_LEVEL",
		"log.pretty":                     "LOG_PRETTY",
		"database.driver":                "DB_DRIVER",
		"database.postgres_url":          "POSTGRES_CONN_STR",
		"database.sqlite_path":           "SQLITE_PATH",
		"database.max_idle_conns":        "DB_MAX_IDLE_CONNS",
		"database.max_open_conns":        "DB_MAX_OPEN_CONNS",
		"mongo.uri":                      "MONGO_URI",
		"mongo.database":                 "MONGO_DATABASE",
		"auth.provider":                  "AUTH_PROVIDER",
		"auth.firebase_credentials_path": "FIREBASE_CREDENTIALS_PATH",
		"auth.jwt_secret":                "JWT_SECRET",
		"pubsub.driver":                  "PUBSUB_DRIVER",
		"pubsub.redis_address":           "REDIS_ADDRESS",
		"pubsub.redis_password":          "REDIS_PASSWORD",
		"pubsub.redis_db":                "REDIS_DB",
		"pubsub.kafka_brokers":           "KAFKA_BROKERS",
		"pubsub.kafka_topic":             "KAFKA_TOPIC",
		"storage.driver":                 "STORAGE_DRIVER",
		"storage.local_path":             "STORAGE_LOCAL_PATH",
		"storage.public_url":             "STORAGE_PUBLIC_URL",
		"storage.s3_endpoint":            "S3_ENDPOINT",
		"storage.s3_region":              "S3_REGION",
		"storage.s3_bucket":              "S3_BUCKET",
		"storage.s3_access_key_id":       "S3_ACCESS_KEY_ID",
		"storage.s3_secret_access_key":   "S3_SECRET_ACCESS_KEY",
		"storage.s3_use_path_style":      "S3_USE_PATH_STYLE",
		"storage.s3_public_url":          "S3_PUBLIC_URL",
		"feed.window":                    "FEED_WINDOW",
		"feed.page_size":                 "FEED_PAGE_SIZE",
		"feed.follow_priority":           "FEED_FOLLOW_PRIORITY",
		"notify.timeout":                 "NOTIFY_TIMEOUT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Feed.PageSize < 1 {
		cfg.Feed.PageSize = 10
	}
	if cfg.Feed.Window < 0 {
		return nil, fmt.Errorf("FEED_WINDOW must not be negative")
	}
	return &cfg, nil
}
