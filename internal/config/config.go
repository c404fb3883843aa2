package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
)

type Config struct {
	Port     string
	Env      string
	LogLevel slog.Level

	StoreBackend            string
	MongoURI                string
	MongoDB                 string
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	RedisURL string

	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool

	ProfileCacheTTL time.Duration

	Location      *time.Location
	DefaultLocale string
	OnePerDay     bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	tz := getEnv("TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("parse JWT_TTL: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("PROFILE_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("parse PROFILE_CACHE_TTL: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: level,

		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", BackendMongo)),
		MongoURI:                getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGODB_DATABASE", "absensi"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTTTL:       ttl,
		CookieSecure: getBool("COOKIE_SECURE", false),

		ProfileCacheTTL: cacheTTL,

		Location:      loc,
		DefaultLocale: getEnv("DEFAULT_LOCALE", "id"),
		OnePerDay:     getBool("ATTENDANCE_ONE_PER_DAY", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo:
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
