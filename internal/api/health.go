package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/models/entities"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Reports backing services and the reconciliation loop.
// @Tags Misc
// @Success 200 {object} entities.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(checks map[string]Pinger, sweep SweepReporter, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus, len(checks))

		for name, p := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := p.Ping(ctx)
			cancel()

			if err != nil {
				services[name] = entities.ServiceStatus{Status: "down", Details: err.Error()}
				continue
			}
			services[name] = entities.ServiceStatus{Status: "ok", Details: name + " reachable"}
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince.UTC(),
			Uptime:   common.FormatUptime(time.Since(upSince)),
		}
		if sweep != nil {
			resp.Sweeper = sweep.SweeperStatus()
		}

		w.Header().Set("Content-Type", "application/json")
		if overallStatus != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
