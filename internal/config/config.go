package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Chain    ChainConfig
	Recon    ReconConfig
	Staking  StakingConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Cron     CronConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ChainConfig holds QCC chain API configuration
type ChainConfig struct {
	APIBaseURL string
	// PrivateKey signs outbound transfers from the staking pool.
	PrivateKey  string
	PoolAddress string
	// EnableRealTransactions gates real broadcasts; off means dry-run payouts
	// with provisional tx references.
	EnableRealTransactions bool
	TimeoutSeconds         int
}

// ReconConfig holds reconciliation window configuration (all in whole days,
// matching the daily cadence of the scans)
type ReconConfig struct {
	// ScanLagDays is how far back the recent-deposit scan looks: deposits get
	// one full day to finalize before their hash is checked.
	ScanLagDays int
	// RetryCooldownDays is the age a quarantined record must reach before the
	// stale scan re-queries its deposit hash.
	RetryCooldownDays int
	// PurgeAgeDays is the age past which a still-unverified record is deleted.
	PurgeAgeDays int
	// CallDelay is the fixed pause between settlement network queries.
	CallDelay time.Duration
}

// StakingConfig holds staking period configuration
type StakingConfig struct {
	// Periods are the mandatory lock periods (days); every period must have a
	// configured interest rate at all times.
	Periods []int
}

// JWTConfig holds admin session token configuration
type JWTConfig struct {
	Secret         string
	AdminTokenMins int
}

// AdminConfig holds admin credential bootstrap configuration
type AdminConfig struct {
	// InitialPassword seeds the admin credential when none exists yet.
	InitialPassword string
}

// CronConfig holds the schedule specs for background jobs
type CronConfig struct {
	SweepSpec      string
	ScanRecentSpec string
	ScanStaleSpec  string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3001"),
		Database: loadDatabaseConfig(appMode),
		Chain:    loadChainConfig(),
		Recon:    loadReconConfig(),
		Staking:  loadStakingConfig(),
		JWT:      loadJWTConfig(appMode),
		Admin:    AdminConfig{InitialPassword: getEnv("ADMIN_INITIAL_PASSWORD", "")},
		Cron:     loadCronConfig(),
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "qcc_stakevault"),
	}
}

func loadChainConfig() ChainConfig {
	enableReal, _ := strconv.ParseBool(getEnv("ENABLE_REAL_TRANSACTIONS", "false"))
	timeout := getEnvInt("CHAIN_TIMEOUT_SECONDS", 30)

	return ChainConfig{
		APIBaseURL:             getEnv("CHAIN_API_BASE_URL", "https://qcc-backend.com"),
		PrivateKey:             getEnv("CHAIN_PRIVATE_KEY", ""),
		PoolAddress:            getEnv("STAKING_POOL_ADDRESS", ""),
		EnableRealTransactions: enableReal,
		TimeoutSeconds:         timeout,
	}
}

func loadReconConfig() ReconConfig {
	delayMs := getEnvInt("RECON_CALL_DELAY_MS", 50)

	return ReconConfig{
		ScanLagDays:       getEnvInt("RECON_SCAN_LAG_DAYS", 1),
		RetryCooldownDays: getEnvInt("RECON_RETRY_COOLDOWN_DAYS", 2),
		PurgeAgeDays:      getEnvInt("RECON_PURGE_AGE_DAYS", 3),
		CallDelay:         time.Duration(delayMs) * time.Millisecond,
	}
}

func loadStakingConfig() StakingConfig {
	raw := getEnv("STAKING_PERIODS", "30,90,180,365")

	var periods []int
	for _, part := range strings.Split(raw, ",") {
		if p, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && p > 0 {
			periods = append(periods, p)
		}
	}
	if len(periods) == 0 {
		periods = []int{30, 90, 180, 365}
	}

	return StakingConfig{Periods: periods}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return JWTConfig{
		Secret:         getEnv(prefix+"JWT_SECRET", "default_secret"),
		AdminTokenMins: getEnvInt("ADMIN_TOKEN_MINUTES", 60),
	}
}

func loadCronConfig() CronConfig {
	return CronConfig{
		// Sweep matured stakings hourly; reconciliation runs once a day,
		// after the deposit finalization lag.
		SweepSpec:      getEnv("SWEEP_CRON", "0 * * * *"),
		ScanRecentSpec: getEnv("RECON_SCAN_CRON", "30 1 * * *"),
		ScanStaleSpec:  getEnv("RECON_STALE_CRON", "0 2 * * *"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://staking.qcc-chain.com"
	}
	return origins
}

// HasPeriod reports whether days is one of the configured lock periods
func (c *StakingConfig) HasPeriod(days int) bool {
	for _, p := range c.Periods {
		if p == days {
			return true
		}
	}
	return false
}
