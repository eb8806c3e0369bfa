package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quangdvn/footyodds/external/apifootball"
	"github.com/quangdvn/footyodds/internal/config"
	"github.com/quangdvn/footyodds/internal/interfaces/httpapi"
	"github.com/quangdvn/footyodds/internal/platform/cache"
	"github.com/quangdvn/footyodds/internal/platform/logging"
	"github.com/quangdvn/footyodds/internal/platform/metrics"
	"github.com/quangdvn/footyodds/internal/platform/resilience"
	"github.com/quangdvn/footyodds/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if httpLogger == nil {
		httpLogger = slog.Default()
	}

	store := cache.NewStore(cfg.CacheTTL)
	m := metrics.New()

	client := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		APIKey:     cfg.FootballAPIKey,
		Timeout:    cfg.FootballAPITimeout,
		MaxRetries: cfg.FootballAPIMaxRetries,
		Logger:     logger,
		Metrics:    m,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballAPICircuitEnabled,
			FailureThreshold: cfg.FootballAPICircuitFailureCount,
			OpenTimeout:      cfg.FootballAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballAPICircuitHalfOpenMaxReq,
		},
	})

	mergeSvc := usecase.NewOddsMergeService(client, store, logger, m, usecase.OddsMergeConfig{
		MaxPages:         cfg.OddsMaxPages,
		ExpectedPageSize: cfg.OddsExpectedPageSize,
		MaxFixtures:      cfg.OddsMaxFixtures,
		FallbackLimit:    cfg.OddsFallbackLimit,
		Concurrency:      cfg.OddsConcurrency,
		PriorityLeagues:  cfg.PriorityLeagues,
	})
	fixtureSvc := usecase.NewFixtureService(client, store, logger)
	predictionSvc := usecase.NewPredictionService(client, logger)

	handler := httpapi.NewHandler(mergeSvc, fixtureSvc, predictionSvc, httpLogger)
	router := httpapi.NewRouter(handler, httpLogger, cfg.CORSAllowedOrigins, m.Handler())

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
