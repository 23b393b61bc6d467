package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 运行时配置，全部来自环境变量（main 中已通过 godotenv 加载 .env）
type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string

	JWTSecret     string
	TokenTTL      time.Duration
	SessionSecret string

	AdminPassword     string
	AdminPasswordHash string // bcrypt hash, 优先于明文密码

	UploadDir   string
	MaxFileSize int64

	FrontendURL string

	LoginRateLimitRPS   float64
	LoginRateLimitBurst int

	CacheTTL time.Duration
}

// Load reads the environment and applies local-dev fallbacks.
func Load() *Config {
	cfg := &Config{
		Port:                getEnv("PORT", "3001"),
		GinMode:             os.Getenv("GIN_MODE"),
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://sufganiot.db"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            getDuration("TOKEN_TTL", 24*time.Hour),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		MaxFileSize:         getInt64("MAX_FILE_SIZE", 5*1024*1024),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		LoginRateLimitRPS:   getFloat("LOGIN_RATE_LIMIT_RPS", 0.5),
		LoginRateLimitBurst: getInt("LOGIN_RATE_LIMIT_BURST", 10),
		CacheTTL:            getDuration("RESULTS_CACHE_TTL", 5*time.Second),
	}

	if cfg.JWTSecret == "" {
		// Fallback for local dev if not set
		cfg.JWTSecret = "jwt_secret_change_me"
		log.Println("JWT_SECRET not set, using insecure development secret")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "secret_key_change_me"
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		cfg.AdminPassword = "admin"
		log.Println("ADMIN_PASSWORD not set, admin password defaults to 'admin'")
	}

	return cfg
}

// AllowedOrigins splits FRONTEND_URL on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
