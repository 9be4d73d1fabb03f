package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Port        string
	Env         string
	CORSOrigins []string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Google sign-in; empty disables the endpoint
	GoogleClientID string

	// Report cache; empty MemcacheHosts disables caching
	MemcacheHosts  []string
	ReportCacheTTL time.Duration

	// Ledger events; empty AMQPURL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger behaviour
	ReverseOnDelete bool

	// Optional shared key guarding /metrics
	MetricsAPIKey string
}

var appConfig *Config

// Load loads configuration from the environment, after merging a .env
// file if one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		Port:        v.GetString("PORT"),
		Env:         v.GetString("ENV"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),

		MemcacheHosts: splitList(v.GetString("MEMCACHE_HOSTS")),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		ReverseOnDelete: v.GetBool("LEDGER_REVERSE_ON_DELETE"),
		MetricsAPIKey:   v.GetString("METRICS_API_KEY"),
	}

	config.JWTExpirationDur = parseDuration(v, "JWT_EXPIRES_IN", 24*time.Hour)
	config.ReportCacheTTL = parseDuration(v, "REPORT_CACHE_TTL", 10*time.Minute)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "flowtrack")
	v.SetDefault("DB_PASSWORD", "flowtrack")
	v.SetDefault("DB_NAME", "flowtrack")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "fallback-secret-key-for-dev-only")
	v.SetDefault("JWT_EXPIRES_IN", "24h")

	v.SetDefault("REPORT_CACHE_TTL", "10m")
	v.SetDefault("AMQP_EXCHANGE", "flowtrack.ledger")
	v.SetDefault("AMQP_QUEUE", "flowtrack.ledger.events")
	v.SetDefault("LEDGER_REVERSE_ON_DELETE", false)
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

// splitList turns a comma-separated value into its non-empty trimmed parts.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
