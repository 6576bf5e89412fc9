// Package api собирает HTTP-роутер сервиса: маршруты фич, health, metrics и middleware.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serotonyl.ru/wingman-challenges/internal/api/httpx"
	"serotonyl.ru/wingman-challenges/internal/api/middleware"
	"serotonyl.ru/wingman-challenges/internal/config"
)

// Pinger — то, что умеет проверить доступность БД (pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registrar — фича, которая подключает свои маршруты к /api/v1.
type Registrar interface {
	Register(r *mux.Router)
}

// NewRouter создаёт корневой обработчик.
// Ограничение частоты запросов фичи подключают сами, на своих маршрутах.
func NewRouter(cfg *config.Config, db Pinger, gatherer prometheus.Gatherer, features ...Registrar) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recover)
	r.Use(middleware.LogRequests)
	r.Use(middleware.Monitor)

	r.HandleFunc("/health", healthHandler(db)).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass,
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	for _, f := range features {
		f.Register(v1)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: "not_found", Message: "route not found"})
	})

	var h http.Handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Admin-Token"}),
	)(r)
	if cfg.TrustProxyHeaders {
		// RemoteAddr = адрес из X-Forwarded-For / X-Real-IP, его видят лимитер и логи
		h = handlers.ProxyHeaders(h)
	}
	return h
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  "database connection failed",
				})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
