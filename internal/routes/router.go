package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"questline/engine/internal/models/entities"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewOpsRouter serves the operational surface: liveness plus Prometheus
// metrics. The engine itself exposes no HTTP API; user actions reach it
// through the presentation adapter, not this listener.
func NewOpsRouter(rdb *sqlx.DB, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthHandler(rdb, upSince))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(rdb *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		status := "ok"
		details := "store reachable"
		if err := rdb.Ping(); err != nil {
			status = "down"
			details = err.Error()
		}
		services["store"] = entities.ServiceStatus{Status: status, Details: details}

		overall := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overall = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Status:   overall,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: services,
		}

		w.Header().Set("Content-Type", "application/json")
		if overall != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
