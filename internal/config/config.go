// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// локально переменные можно положить в .env (godotenv).
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- HTTP ---
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	HTTPWriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	// Разрешённые источники для CORS через запятую
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	// Сервис за доверенным прокси: адрес клиента берётся из X-Forwarded-For / X-Real-IP
	TrustProxyHeaders bool `envconfig:"TRUST_PROXY_HEADERS" default:"false"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"wingman"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"wingman"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Единая зона для границы дня челленджей у всех пользователей
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- Challenges ---
	MilestonesRaw    string `envconfig:"CHALLENGE_MILESTONES" default:"3,7,14,30,100"`
	Milestones       []int  `envconfig:"-"` // заполним вручную
	ChallengesPerDay int    `envconfig:"CHALLENGES_PER_DAY" default:"3"`
	HistoryPageLimit int    `envconfig:"HISTORY_PAGE_LIMIT" default:"100"`

	// --- Reminders ---
	ReminderCron      string `envconfig:"REMINDER_CRON" default:"0 18 * * *"`
	ReminderMinStreak int    `envconfig:"REMINDER_MIN_STREAK" default:"3"`

	// --- Admin ---
	// Argon2id-хеш админ-токена, см. cmd/hashtoken
	AdminTokenHash string `envconfig:"ADMIN_TOKEN_HASH" required:"true"`

	// --- Metrics ---
	MetricsUser string `envconfig:"METRICS_USER"`
	MetricsPass string `envconfig:"METRICS_PASS"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureRemindersEnabled bool `envconfig:"FEATURE_REMINDERS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	if c.DBPassword == "" || c.AdminTokenHash == "" {
		return fmt.Errorf("DB_PASSWORD и ADMIN_TOKEN_HASH обязательны")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if len(c.Milestones) == 0 {
		return fmt.Errorf("CHALLENGE_MILESTONES не задан")
	}
	if c.ChallengesPerDay <= 0 {
		return fmt.Errorf("CHALLENGES_PER_DAY должен быть > 0")
	}
	if c.HistoryPageLimit <= 0 {
		return fmt.Errorf("HISTORY_PAGE_LIMIT должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения, заполняет структуру Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("Файл .env не найден, используем только окружение")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	milestones, err := parseMilestones(cfg.MilestonesRaw)
	if err != nil {
		return nil, fmt.Errorf("CHALLENGE_MILESTONES parse: %w", err)
	}
	cfg.Milestones = milestones

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseMilestones разбирает "3,7,14" в возрастающий список без повторов.
func parseMilestones(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	seen := make(map[int]bool, len(parts))
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad int %q: %w", p, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("веха должна быть > 0, получено %d", v)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}
