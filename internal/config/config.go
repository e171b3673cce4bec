package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "github.com/pweat/Opieka-Plus-sub000/pkg/config"
)

// Config opieka-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	JWT    JWTConfig  `yaml:"jwt"`
	Push   PushConfig `yaml:"push"`
	Invite InviteConfig
}

// JWTConfig 令牌签发配置
type JWTConfig struct {
	Secret     string        `yaml:"secret"`      // HS256 签名密钥
	AccessTTL  time.Duration `yaml:"access_ttl"`  // access token 有效期
	RefreshTTL time.Duration `yaml:"refresh_ttl"` // refresh token 有效期
}

// PushConfig 推送网关配置
type PushConfig struct {
	Enabled     bool   `yaml:"enabled"`      // 是否启用推送投递（默认 false）
	GatewayURL  string `yaml:"gateway_url"`  // 推送网关地址（如 "https://exp.host"）
	DefaultLang string `yaml:"default_lang"` // 通知文案语言
}

// InviteConfig 邀请码配置
type InviteConfig struct {
	TTL time.Duration // 邀请码有效期
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, opieka-data will fall back to
	// in-memory repositories. This avoids "empty app screens" when starting with plain `go run`.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "opieka")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// JWT 配置
	cfg.JWT.Secret = getEnv("JWT_SECRET", "opieka-dev-secret")
	cfg.JWT.AccessTTL = parseDuration(getEnv("JWT_ACCESS_TTL", "24h"), 24*time.Hour)
	cfg.JWT.RefreshTTL = parseDuration(getEnv("JWT_REFRESH_TTL", "720h"), 720*time.Hour)

	// 推送配置（默认禁用，事件仍会进入队列）
	cfg.Push.Enabled = getEnv("PUSH_ENABLED", "false") == "true"
	cfg.Push.GatewayURL = getEnv("PUSH_GATEWAY_URL", "https://exp.host")
	cfg.Push.DefaultLang = getEnv("PUSH_DEFAULT_LANG", "en")

	cfg.Invite.TTL = parseDuration(getEnv("INVITE_TTL", "72h"), 72*time.Hour)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
