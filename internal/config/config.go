package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds the optional Redis connection used for calculation locks.
// An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds calculation policy and scheduling settings
type PayrollConfig struct {
	Workers            int
	MonthlyWorkHours   decimal.Decimal
	DaysPerMonth       decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	HolidayMultiplier  decimal.Decimal
	CalculationDay     int
	AutoCalculate      bool
	LockTTL            time.Duration
}

// DefaultPayrollConfig returns the statutory defaults: 209 monthly work
// hours, 30 days per month, 1.5x weekday and 2.0x holiday overtime.
func DefaultPayrollConfig() PayrollConfig {
	return PayrollConfig{
		Workers:            1,
		MonthlyWorkHours:   decimal.NewFromInt(209),
		DaysPerMonth:       decimal.NewFromInt(30),
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
		HolidayMultiplier:  decimal.RequireFromString("2.0"),
		CalculationDay:     25,
		AutoCalculate:      false,
		LockTTL:            30 * time.Minute,
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbMinConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
		MinConns: int32(dbMinConns),
	}

	// Redis configuration
	redisPort, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     redisPort,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "payroll-engine"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	accessTokenExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRATION", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRATION: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:                getEnv("JWT_SECRET_KEY", ""),
		AccessTokenExpiration: accessTokenExpiration,
	}

	// Payroll configuration
	config.Payroll, err = loadPayrollConfig()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayrollConfig() (PayrollConfig, error) {
	cfg := DefaultPayrollConfig()
	var err error

	if cfg.Workers, err = strconv.Atoi(getEnv("PAYROLL_WORKERS", strconv.Itoa(cfg.Workers))); err != nil {
		return cfg, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	if cfg.MonthlyWorkHours, err = getEnvDecimal("PAYROLL_MONTHLY_WORK_HOURS", cfg.MonthlyWorkHours); err != nil {
		return cfg, err
	}
	if cfg.DaysPerMonth, err = getEnvDecimal("PAYROLL_DAYS_PER_MONTH", cfg.DaysPerMonth); err != nil {
		return cfg, err
	}
	if cfg.OvertimeMultiplier, err = getEnvDecimal("PAYROLL_OVERTIME_MULTIPLIER", cfg.OvertimeMultiplier); err != nil {
		return cfg, err
	}
	if cfg.HolidayMultiplier, err = getEnvDecimal("PAYROLL_HOLIDAY_MULTIPLIER", cfg.HolidayMultiplier); err != nil {
		return cfg, err
	}
	if cfg.CalculationDay, err = strconv.Atoi(getEnv("PAYROLL_CALCULATION_DAY", strconv.Itoa(cfg.CalculationDay))); err != nil {
		return cfg, fmt.Errorf("invalid PAYROLL_CALCULATION_DAY: %w", err)
	}
	if cfg.AutoCalculate, err = strconv.ParseBool(getEnv("PAYROLL_AUTO_CALCULATE", strconv.FormatBool(cfg.AutoCalculate))); err != nil {
		return cfg, fmt.Errorf("invalid PAYROLL_AUTO_CALCULATE: %w", err)
	}
	if cfg.LockTTL, err = time.ParseDuration(getEnv("PAYROLL_LOCK_TTL", cfg.LockTTL.String())); err != nil {
		return cfg, fmt.Errorf("invalid PAYROLL_LOCK_TTL: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.Payroll.Validate()
}

// Validate validates the payroll policy
func (p PayrollConfig) Validate() error {
	if p.Workers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1")
	}
	if !p.MonthlyWorkHours.IsPositive() {
		return fmt.Errorf("PAYROLL_MONTHLY_WORK_HOURS must be positive")
	}
	if !p.DaysPerMonth.IsPositive() {
		return fmt.Errorf("PAYROLL_DAYS_PER_MONTH must be positive")
	}
	if p.OvertimeMultiplier.IsNegative() || p.HolidayMultiplier.IsNegative() {
		return fmt.Errorf("overtime multipliers must not be negative")
	}
	if p.CalculationDay < 1 || p.CalculationDay > 28 {
		return fmt.Errorf("PAYROLL_CALCULATION_DAY must be between 1 and 28")
	}
	if p.LockTTL <= 0 {
		return fmt.Errorf("PAYROLL_LOCK_TTL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RedisAddr returns host:port, or "" when Redis is not configured
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
