package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Storage: "mongo" in deployments, "memory" for local runs without a replica set.
	Storage      string `mapstructure:"STORAGE"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	// SeedMentors preloads "id:rate[:currency]" entries, comma separated, in memory mode.
	SeedMentors  string `mapstructure:"SEED_MENTORS"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Rate limiting.
	MaxRequestsPerMin     int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	BookingRequestsPerMin int           `mapstructure:"BOOKING_REQUESTS_PER_MIN"`
	WebhookRequestsPerMin int           `mapstructure:"WEBHOOK_REQUESTS_PER_MIN"`
	RateLimitTTL          time.Duration `mapstructure:"RATE_LIMIT_TTL"`

	// Redis configuration.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	RateCacheTTL  time.Duration `mapstructure:"RATE_CACHE_TTL"`

	// Payment provider.
	PaymentChecksumKey   string        `mapstructure:"PAYMENT_CHECKSUM_KEY"`
	PaymentWebhookSecret string        `mapstructure:"PAYMENT_WEBHOOK_SECRET"`
	WebhookTimeout       time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
	WebhookVerifyTimeout time.Duration `mapstructure:"WEBHOOK_VERIFY_TIMEOUT"`
	StripeKey            string        `mapstructure:"STRIPE_KEY"`
	DefaultCurrency      string        `mapstructure:"DEFAULT_CURRENCY"`

	// Kafka event publishing. Empty brokers disables publishing.
	KafkaBrokers      string `mapstructure:"KAFKA_BROKERS"`
	KafkaBookingTopic string `mapstructure:"KAFKA_BOOKING_TOPIC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("DATABASE_NAME", "mentorlink")
	viper.SetDefault("SEED_MENTORS", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("BOOKING_REQUESTS_PER_MIN", 10)
	viper.SetDefault("WEBHOOK_REQUESTS_PER_MIN", 600)
	viper.SetDefault("RATE_LIMIT_TTL", "10m")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("RATE_CACHE_TTL", "5m")
	viper.SetDefault("PAYMENT_CHECKSUM_KEY", "")
	viper.SetDefault("PAYMENT_WEBHOOK_SECRET", "")
	viper.SetDefault("WEBHOOK_TIMEOUT", "10s")
	viper.SetDefault("WEBHOOK_VERIFY_TIMEOUT", "2s")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("DEFAULT_CURRENCY", "VND")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_BOOKING_TOPIC", "booking-events")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Brokers splits the comma separated KAFKA_BROKERS value.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
