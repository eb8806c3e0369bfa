package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quangdvn/footyodds/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	CacheTTL time.Duration

	FootballAPIBaseURL               string
	FootballAPIKey                   string
	FootballAPITimeout               time.Duration
	FootballAPIMaxRetries            int
	FootballAPICircuitEnabled        bool
	FootballAPICircuitFailureCount   int
	FootballAPICircuitOpenTimeout    time.Duration
	FootballAPICircuitHalfOpenMaxReq int

	OddsMaxPages         int
	OddsExpectedPageSize int
	OddsMaxFixtures      int
	OddsFallbackLimit    int
	OddsConcurrency      int
	PriorityLeagues      []string

	UptraceEnabled bool
	UptraceDSN     string
	PprofEnabled   bool
	PprofAddr      string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	apiTimeout, err := time.ParseDuration(getEnv("FOOTBALL_API_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_TIMEOUT: %w", err)
	}
	if apiTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_TIMEOUT must be > 0")
	}
	apiMaxRetries, err := getEnvAsInt("FOOTBALL_API_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_MAX_RETRIES: %w", err)
	}
	if apiMaxRetries < 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_MAX_RETRIES must be >= 0")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	oddsMaxPages, err := getEnvAsInt("ODDS_MAX_PAGES", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_MAX_PAGES: %w", err)
	}
	if oddsMaxPages < 1 {
		return Config{}, fmt.Errorf("ODDS_MAX_PAGES must be >= 1")
	}
	oddsExpectedPageSize, err := getEnvAsInt("ODDS_EXPECTED_PAGE_SIZE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_EXPECTED_PAGE_SIZE: %w", err)
	}
	if oddsExpectedPageSize < 1 {
		return Config{}, fmt.Errorf("ODDS_EXPECTED_PAGE_SIZE must be >= 1")
	}
	oddsMaxFixtures, err := getEnvAsInt("ODDS_MAX_FIXTURES", 150)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_MAX_FIXTURES: %w", err)
	}
	if oddsMaxFixtures < 1 {
		return Config{}, fmt.Errorf("ODDS_MAX_FIXTURES must be >= 1")
	}
	oddsFallbackLimit, err := getEnvAsInt("ODDS_FALLBACK_LIMIT", 150)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_FALLBACK_LIMIT: %w", err)
	}
	if oddsFallbackLimit < 1 {
		return Config{}, fmt.Errorf("ODDS_FALLBACK_LIMIT must be >= 1")
	}
	oddsConcurrency, err := getEnvAsInt("ODDS_CONCURRENCY", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_CONCURRENCY: %w", err)
	}
	if oddsConcurrency < 1 {
		return Config{}, fmt.Errorf("ODDS_CONCURRENCY must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "footyodds-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		CacheTTL: cacheTTL,

		FootballAPIBaseURL:               getEnv("FOOTBALL_API_BASE_URL", "https://v3.football.api-sports.io"),
		FootballAPIKey:                   strings.TrimSpace(getEnv("FOOTBALL_API_KEY", "")),
		FootballAPITimeout:               apiTimeout,
		FootballAPIMaxRetries:            apiMaxRetries,
		FootballAPICircuitEnabled:        circuitEnabled,
		FootballAPICircuitFailureCount:   circuitFailureCount,
		FootballAPICircuitOpenTimeout:    circuitOpenTimeout,
		FootballAPICircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		OddsMaxPages:         oddsMaxPages,
		OddsExpectedPageSize: oddsExpectedPageSize,
		OddsMaxFixtures:      oddsMaxFixtures,
		OddsFallbackLimit:    oddsFallbackLimit,
		OddsConcurrency:      oddsConcurrency,
		PriorityLeagues:      splitCSV(getEnv("PRIORITY_LEAGUES", "Premier League,La Liga,Ligue 1,Serie A,V-League,Bundesliga")),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,
		PprofEnabled:   pprofEnabled,
		PprofAddr:      pprofAddr,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
