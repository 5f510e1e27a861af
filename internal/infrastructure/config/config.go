package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// AdminActorID is the single chat actor allowed to perform
	// administrative actions.
	AdminActorID int64 `env:"ADMIN_ACTOR_ID"`

	RateLimit         int `env:"RATE_LIMIT,          default=5"`
	RateWindowSeconds int `env:"RATE_WINDOW_SECONDS, default=60"`

	// Nickname policy: length bounds and character set restriction are
	// independent knobs, different communities want different rules.
	NicknameMinLen       int  `env:"NICKNAME_MIN_LEN,      default=1"`
	NicknameMaxLen       int  `env:"NICKNAME_MAX_LEN,      default=15"`
	NicknameAlphanumeric bool `env:"NICKNAME_ALPHANUMERIC, default=false"`

	ChallengeEnabled bool   `env:"CHALLENGE_ENABLED, default=true"`
	ChallengeFile    string `env:"CHALLENGE_FILE,    default=data/challenge_questions.json"`

	// DispatcherWorkers is the number of sharded update workers.
	DispatcherWorkers int `env:"DISPATCHER_WORKERS, default=8"`

	Chat  ChatConfig
	Mongo MongoConfig
	Redis RedisConfig
	Minio MinioConfig
}

type ChatConfig struct {
	GatewayURL string `env:"CHAT_GATEWAY_URL, default=http://localhost:9090"`
	Token      string `env:"CHAT_GATEWAY_TOKEN"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=roster_bot"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=roster-proofs"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
