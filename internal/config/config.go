package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type AdminCredential struct {
	Username string
	Password string
}

type Config struct {
	Env              string
	MongoURI         string
	MongoDB          string
	Port             string
	PublicDir        string
	FrontendOrigin   string
	Admins           []AdminCredential
	SessionSecret    []byte
	RedisURL         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CacheTTLSeconds  int
	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool
	OTelEnabled      bool
	OTelEndpoint     string
	OTelSampleRatio  float64
	LogLevel         string
	Timezone         *time.Location
}

// CookieSecure reports whether session cookies must carry the Secure flag.
func (c *Config) CookieSecure() bool {
	return c.Env == EnvProduction
}

func (c *Config) ServerAddr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Load reads the process environment once. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGODB_URI", "mongodb://localhost:27017/salon")
	mongoDB := getEnv("MONGODB_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "salon"
	}

	port := getEnv("PORT", "3000")
	if _, err := strconv.Atoi(port); err != nil {
		slog.Warn("config: invalid PORT, falling back to default", slog.String("port", port))
		port = "3000"
	}

	ratio := getEnvFloat("OTEL_SAMPLING_RATIO", 1)
	if ratio < 0 || ratio > 1 {
		ratio = 1
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		MongoURI:         mongoURI,
		MongoDB:          mongoDB,
		Port:             port,
		PublicDir:        getEnv("PUBLIC_DIR", "./public"),
		FrontendOrigin:   getEnv("FRONTEND_ORIGIN", ""),
		Admins:           loadAdmins(),
		SessionSecret:    loadSessionSecret(),
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:  getEnvInt("CACHE_TTL_SECONDS", 30),
		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", ""),
		BrevoSandbox:     getEnvBool("BREVO_SANDBOX", false),
		OTelEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio:  ratio,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Timezone:         loc,
	}

	return cfg, nil
}

func loadAdmins() []AdminCredential {
	admins := make([]AdminCredential, 0, 2)
	for _, suffix := range []string{"1", "2"} {
		username := os.Getenv("ADMIN_USERNAME_" + suffix)
		password := os.Getenv("ADMIN_PASSWORD_" + suffix)
		if username == "" || password == "" {
			continue
		}
		admins = append(admins, AdminCredential{Username: username, Password: password})
	}
	if len(admins) == 0 {
		slog.Warn("config: no admin credentials configured, login is disabled")
	}
	return admins
}

func loadSessionSecret() []byte {
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		return []byte(secret)
	}
	slog.Warn("config: SESSION_SECRET not set, generating a random secret; sessions will not survive a restart")
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	}
	return []byte(hex.EncodeToString(buf))
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
