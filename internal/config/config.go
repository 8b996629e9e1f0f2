package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           string        `envconfig:"PORT" default:"9091"`
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:9091"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"changeme"`
	JWTTTL         time.Duration `envconfig:"JWT_TTL" default:"24h"`
	DBDriver       string        `envconfig:"DB_DRIVER" default:"memory"` // memory | sqlite
	DBSource       string        `envconfig:"DB_SOURCE" default:"craftmart.db"`
	RedisURL       string        `envconfig:"REDIS_URL" default:""`
	CartTTL        time.Duration `envconfig:"CART_TTL" default:"168h"`
	CartDir        string        `envconfig:"CART_DIR" default:".craftmart/carts"`
	KafkaBrokers   string        `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic     string        `envconfig:"KAFKA_TOPIC" default:"craftmart.orders"`
	SeedFile       string        `envconfig:"SEED_FILE" default:""`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	TraceStdout    bool          `envconfig:"TRACE_STDOUT" default:"false"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	MarketToken    string        `envconfig:"MARKET_TOKEN" default:""`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "memory", "sqlite":
	default:
		return errors.New("DB_DRIVER must be memory or sqlite")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.JWTTTL <= 0 || c.RequestTimeout <= 0 {
		return errors.New("JWT_TTL and REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// KafkaEnabled reports whether order events go to Kafka
func (c *Config) KafkaEnabled() bool { return strings.TrimSpace(c.KafkaBrokers) != "" }
