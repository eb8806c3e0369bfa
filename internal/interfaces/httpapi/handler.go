package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quangdvn/footyodds/internal/domain/fixture"
	"github.com/quangdvn/footyodds/internal/usecase"
)

type Handler struct {
	mergeService      *usecase.OddsMergeService
	fixtureService    *usecase.FixtureService
	predictionService *usecase.PredictionService
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	mergeService *usecase.OddsMergeService,
	fixtureService *usecase.FixtureService,
	predictionService *usecase.PredictionService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		mergeService:      mergeService,
		fixtureService:    fixtureService,
		predictionService: predictionService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// League is an id-or-label filter forwarded to the provider as-is.
type dayQuery struct {
	Date     string `validate:"required,datetime=2006-01-02"`
	Timezone string `validate:"omitempty,max=64"`
	League   string `validate:"omitempty,max=128"`
}

func (h *Handler) parseDayQuery(r *http.Request) (dayQuery, error) {
	query := dayQuery{
		Date:     strings.TrimSpace(r.URL.Query().Get("date")),
		Timezone: strings.TrimSpace(r.URL.Query().Get("timezone")),
		League:   strings.TrimSpace(r.URL.Query().Get("league")),
	}
	if err := h.validator.Struct(query); err != nil {
		return dayQuery{}, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput)
	}
	return query, nil
}

type oddsMergedResponse struct {
	OK       bool               `json:"ok"`
	Fixtures []fixture.Fixture  `json:"fixtures"`
	Merged   []fixture.Fixture  `json:"merged"`
	Count    int                `json:"count"`
	Debug    usecase.MergeDebug `json:"debug"`
}

func (h *Handler) OddsMerged(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OddsMerged")
	defer span.End()

	query, err := h.parseDayQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, cached, err := h.mergeService.MergeOdds(ctx, usecase.MergeQuery{
		Date:     query.Date,
		Timezone: query.Timezone,
		League:   query.League,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "odds merge failed", "date", query.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	setCacheStatus(w, cached)
	writeJSON(ctx, w, http.StatusOK, oddsMergedResponse{
		OK:       true,
		Fixtures: result.Fixtures,
		Merged:   result.Merged,
		Count:    result.Count,
		Debug:    result.Debug,
	})
}

type fixturesResponse struct {
	OK       bool              `json:"ok"`
	Fixtures []fixture.Fixture `json:"fixtures"`
	Count    int               `json:"count"`
}

func (h *Handler) Fixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Fixtures")
	defer span.End()

	query, err := h.parseDayQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	fixtures, cached, err := h.fixtureService.ListByDate(ctx, query.Date, query.Timezone, query.League)
	if err != nil {
		h.logger.ErrorContext(ctx, "list fixtures failed", "date", query.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	setCacheStatus(w, cached)
	writeJSON(ctx, w, http.StatusOK, fixturesResponse{
		OK:       true,
		Fixtures: fixtures,
		Count:    len(fixtures),
	})
}

type predictionsResponse struct {
	OK         bool                     `json:"ok"`
	Prediction usecase.PredictionResult `json:"prediction"`
}

func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Predictions")
	defer span.End()

	homeID, err := parseTeamID(r, "home")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	awayID, err := parseTeamID(r, "away")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("n")); raw != "" {
		matches, err = strconv.Atoi(raw)
		if err != nil || matches < 1 {
			writeError(ctx, w, fmt.Errorf("%w: n must be a positive integer", usecase.ErrInvalidInput))
			return
		}
	}

	result, err := h.predictionService.Predict(ctx, usecase.PredictionQuery{
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Matches:    matches,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "prediction failed", "home", homeID, "away", awayID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, predictionsResponse{OK: true, Prediction: result})
}

func parseTeamID(r *http.Request, param string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s team id is required", usecase.ErrInvalidInput, param)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s team id must be a positive integer", usecase.ErrInvalidInput, param)
	}
	return id, nil
}
