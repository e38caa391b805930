package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrImproperlyConfigured is returned when an environment value is missing or out of range.
var ErrImproperlyConfigured = errors.New("improperly configured")

// Employee name collision policies for restaurant assignment.
const (
	EmployeePolicyRejectBeforeAdd = "reject-before-add"
	EmployeePolicyRemoveAfterAdd  = "remove-after-add"
	EmployeePolicyRaiseOnAdd      = "raise-on-add"
)

var logLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

type Config struct {
	Production bool
	GinMode    string
	Port       string
	LogLevel   string
	SecretKey  string

	AllowedHosts   []string
	AllowedOrigins []string

	PasswordSimilarity   float64
	TokenRefreshInterval time.Duration
	TokenTTL             time.Duration
	PaginationSize       int
	EmployeeNamePolicy   string

	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool
	CacheTTL      time.Duration

	RabbitMQURL string

	TestDataJSONFilePath string
}

// LoadConfig reads the .env file (if any) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	production, err := getEnvBool("PRODUCTION", true)
	if err != nil {
		return nil, err
	}

	defaultLevel := "INFO"
	if production {
		defaultLevel = "WARNING"
	}

	cfg := &Config{
		Production:           production,
		GinMode:              getEnv("GIN_MODE", ""),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             strings.ToUpper(getEnv("LOG_LEVEL", defaultLevel)),
		SecretKey:            os.Getenv("SECRET_KEY"),
		AllowedHosts:         getEnvList("ALLOWED_HOSTS"),
		AllowedOrigins:       getEnvList("ALLOWED_ORIGINS"),
		EmployeeNamePolicy:   getEnv("EMPLOYEE_NAME_POLICY", EmployeePolicyRejectBeforeAdd),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:                getEnv("DB_DSN", "smartserve.db"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:          os.Getenv("RABBITMQ_URL"),
		TestDataJSONFilePath: os.Getenv("TEST_DATA_JSON_FILE_PATH"),
	}

	if cfg.PasswordSimilarity, err = getEnvFloat("PASSWORD_SIMILARITY_TO_USER_ATTRIBUTES", 0.627); err != nil {
		return nil, err
	}
	refreshSeconds, err := getEnvFloat("AUTH_TOKEN_MINIMUM_REFRESH_INTERVAL", 300)
	if err != nil {
		return nil, err
	}
	cfg.TokenRefreshInterval = time.Duration(refreshSeconds * float64(time.Second))
	if cfg.TokenTTL, err = getEnvDuration("AUTH_TOKEN_TTL", 10*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PaginationSize, err = getEnvInt("API_RESPONSE_PAGINATION_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.DBConnLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = getEnvBool("CACHE_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges of an already populated Config.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return improperlyConfigured("SECRET_KEY", "must be set")
	}
	if !contains(logLevels, c.LogLevel) {
		return improperlyConfigured("LOG_LEVEL", "must be one of "+strings.Join(logLevels, ", "))
	}
	if c.PasswordSimilarity < 0.1 || c.PasswordSimilarity > 1.0 {
		return improperlyConfigured("PASSWORD_SIMILARITY_TO_USER_ATTRIBUTES", "must be between 0.1 and 1.0")
	}
	if c.TokenRefreshInterval < time.Second {
		return improperlyConfigured("AUTH_TOKEN_MINIMUM_REFRESH_INTERVAL", "must be at least 1 second")
	}
	if c.TokenTTL <= 0 {
		return improperlyConfigured("AUTH_TOKEN_TTL", "must be positive")
	}
	if c.PaginationSize <= 0 {
		return improperlyConfigured("API_RESPONSE_PAGINATION_SIZE", "must be greater than 0")
	}
	switch c.EmployeeNamePolicy {
	case EmployeePolicyRejectBeforeAdd, EmployeePolicyRemoveAfterAdd, EmployeePolicyRaiseOnAdd:
	default:
		return improperlyConfigured("EMPLOYEE_NAME_POLICY", "unknown policy "+c.EmployeeNamePolicy)
	}
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return improperlyConfigured("DB_DRIVER", "must be sqlite, mysql or postgres")
	}
	return nil
}

func improperlyConfigured(key, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrImproperlyConfigured, key, reason)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, improperlyConfigured(key, "must be an integer")
	}
	return i, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, improperlyConfigured(key, "must be a number")
	}
	return f, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, improperlyConfigured(key, "must be a boolean")
	}
	return b, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, improperlyConfigured(key, "must be a duration such as 30s")
	}
	return d, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
