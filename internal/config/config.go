package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env       string
	Port      string
	AppSecret string
	JWTExpiry time.Duration

	// 数据库
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	SQLitePath  string

	// 用户资料存储: sql | redis | memory
	ProfileStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// 消息总线，为空时使用进程内通道
	NatsURL string

	// 外部信息补全
	OMDbAPIKey     string
	OMDbBaseURL    string
	TMDBToken      string
	TMDBBaseURL    string
	TMDBRegion     string
	WikipediaURL   string
	EnrichTimeout  time.Duration
	EnrichRetries  int
	EnrichCacheTTL time.Duration

	// 管理后台
	AdminPasswordHash string

	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

const defaultSecret = "your-secret-key-change-in-production"

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "12"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	enrichRetries, _ := strconv.Atoi(getEnv("ENRICH_RETRIES", "2"))
	rateBurst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	rateRPS, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "nextflix")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", defaultSecret)
	env := getEnv("APP_ENV", "development")

	if env == "production" && appSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:       env,
		Port:      getEnv("PORT", "5000"),
		AppSecret: appSecret,
		JWTExpiry: time.Duration(expiryHours) * time.Hour,

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: dbURL,
		SQLitePath:  getEnv("SQLITE_PATH", "movies.db"),

		ProfileStore:  getEnv("PROFILE_STORE", "sql"),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		NatsURL: getEnv("NATS_URL", ""),

		OMDbAPIKey:     getEnv("OMDB_API_KEY", ""),
		OMDbBaseURL:    getEnv("OMDB_BASE_URL", "https://www.omdbapi.com"),
		TMDBToken:      getEnv("TMDB_TOKEN", ""),
		TMDBBaseURL:    getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBRegion:     getEnv("TMDB_REGION", "US"),
		WikipediaURL:   getEnv("WIKIPEDIA_URL", "https://en.wikipedia.org"),
		EnrichTimeout:  getDuration("ENRICH_TIMEOUT", 4*time.Second),
		EnrichRetries:  enrichRetries,
		EnrichCacheTTL: getDuration("ENRICH_CACHE_TTL", time.Hour),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:3000"),
		RateLimitRPS:   rateRPS,
		RateLimitBurst: rateBurst,
	}
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
