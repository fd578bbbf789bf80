package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once in main and handed down read-only. Nothing on the
// request path mutates it.
type Config struct {
	Env  string
	Port int

	DBURL string

	// auth
	JWTSecret           string
	JWTAccessTTLMinutes int
	AdminSignupToken    string

	// seeded admin account (optional)
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// redis (optional, used for the weather cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// weather lookup
	WeatherBaseURL         string
	WeatherCacheTTLMinutes int

	// observability
	OTELEndpoint string

	CORSAllowedOrigins []string

	// rate limiting for the auth endpoints
	AuthRateLimit         int
	AuthRateWindowSeconds int
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),
		AdminSignupToken:    getEnv("ADMIN_SIGNUP_TOKEN", "AAABnvxRVklrnYxKZ0aHgTBcXukeZygoC"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "admin"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		WeatherBaseURL:         getEnv("WEATHER_BASE_URL", "https://f-api.github.io/f-api"),
		WeatherCacheTTLMinutes: getEnvInt("WEATHER_CACHE_TTL_MINUTES", 60),

		OTELEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		AuthRateLimit:         getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindowSeconds: getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60),
	}
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) WeatherCacheTTL() time.Duration {
	return time.Duration(c.WeatherCacheTTLMinutes) * time.Minute
}

func (c Config) AuthRateWindow() time.Duration {
	return time.Duration(c.AuthRateWindowSeconds) * time.Second
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "schedhub")
	pass := getEnv("DB_PASSWORD", "schedhub")
	name := getEnv("DB_NAME", "schedhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}

	return fallback
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
