package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/psds-microservice/support-console/internal/kafka"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// APIBaseURL: origin удалённого admin API; запросы идут на APIBaseURL + "/api".
	APIBaseURL string
	// AdminToken: если задан, сессия восстанавливается при старте без логина.
	AdminToken  string
	HTTPTimeout time.Duration

	TicketPollInterval time.Duration
	ChatPollInterval   time.Duration
	AllowedOrigins     []string

	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	DraftTTL time.Duration

	// DB: журнал аудита; при пустом DB_HOST аудит выключен.
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
	AuditRetentionDays int
	AuditPruneSchedule string

	KafkaBrokers          []string
	KafkaTopicAdminEvents string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:    getEnv("APP_HOST", "127.0.0.1"),
		HTTPPort:   firstEnv("APP_PORT", "HTTP_PORT", "8098"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		APIBaseURL: strings.TrimSuffix(getEnv("API_BASE_URL", "http://localhost:3000"), "/"),
		AdminToken: getEnv("ADMIN_TOKEN", ""),

		AllowedOrigins:        splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		AuditPruneSchedule:    getEnv("AUDIT_PRUNE_SCHEDULE", "0 30 3 * * *"),
		KafkaBrokers:          kafka.ParseBrokers(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicAdminEvents: getEnv("KAFKA_TOPIC_ADMIN_EVENTS", "support.admin-events"),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.TicketPollInterval, err = getDuration("TICKET_POLL_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ChatPollInterval, err = getDuration("CHAT_POLL_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DraftTTL, err = getDuration("DRAFT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AuditRetentionDays, err = getInt("AUDIT_RETENTION_DAYS", 90); err != nil {
		return nil, err
	}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.DB.Host = getEnv("DB_HOST", "")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "support_console")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.TicketPollInterval <= 0 || c.ChatPollInterval <= 0 {
		return errors.New("config: poll intervals must be positive")
	}
	if c.ChatPollInterval > c.TicketPollInterval {
		return errors.New("config: CHAT_POLL_INTERVAL must not exceed TICKET_POLL_INTERVAL")
	}
	if c.AuditEnabled() {
		if c.DB.Database == "" {
			return errors.New("config: DB_DATABASE is required when DB_HOST is set")
		}
		if c.AppEnv == "production" && c.DB.Password == "" {
			return errors.New("config: in production DB_PASSWORD is required")
		}
		if c.AuditRetentionDays <= 0 {
			return errors.New("config: AUDIT_RETENTION_DAYS must be positive")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func (c *Config) AuditEnabled() bool { return c.DB.Host != "" }

func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration принимает Go duration ("15s") или число секунд ("15").
func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
