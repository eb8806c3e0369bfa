package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/quangdvn/footyodds/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const cacheStatusHeader = "X-Cache-Status"

type errorEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"ok":false,"error":"encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	writeJSON(ctx, w, errorStatus(err), errorEnvelope{OK: false, Error: err.Error()})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorEnvelope{OK: false, Error: "internal server error"})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, usecase.ErrMissingCredentials):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func setCacheStatus(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(cacheStatusHeader, "HIT")
		return
	}
	w.Header().Set(cacheStatusHeader, "MISS")
}
