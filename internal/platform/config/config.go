package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StoreBackend selects the ClaimStore implementation.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreLevelDB  StoreBackend = "leveldb"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

// DefaultProofLimit bounds fingerprint length when CLAIMD_PROOF_LIMIT is
// unset. Fingerprints are expected to be digests, so 64 bytes covers SHA-512.
const DefaultProofLimit = 64

// Server captures process-level configuration.
type Server struct {
	Addr          string
	ProofLimit    int
	Store         StoreBackend
	LevelDBPath   string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string
	ClockInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          getEnv("CLAIMD_ADDR", ":8080"),
		ProofLimit:    getEnvInt("CLAIMD_PROOF_LIMIT", DefaultProofLimit),
		Store:         StoreBackend(getEnv("CLAIMD_STORE", string(StoreMemory))),
		LevelDBPath:   getEnv("CLAIMD_LEVELDB_PATH", "/var/lib/claimd/claims"),
		PostgresURL:   os.Getenv("CLAIMD_POSTGRES_URL"),
		RedisURL:      os.Getenv("CLAIMD_REDIS_URL"),
		KafkaTopic:    getEnv("CLAIMD_KAFKA_TOPIC", "claimd.events"),
		ClockInterval: getEnvDuration("CLAIMD_CLOCK_INTERVAL", 6*time.Second),
	}

	if brokers := os.Getenv("CLAIMD_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.JWTSigningKey = os.Getenv("CLAIMD_JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
