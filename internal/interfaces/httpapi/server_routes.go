package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerAPIRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/odds-merged", handler.OddsMerged)
	mux.HandleFunc("GET /api/fixtures", handler.Fixtures)
	mux.HandleFunc("GET /api/predictions", handler.Predictions)
}
