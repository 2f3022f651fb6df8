package entities

import "time"

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type SweeperStatus struct {
	LastTickAt   *time.Time `json:"last_tick_at,omitempty"`
	LastScanned  int        `json:"last_scanned"`
	LastChanged  int        `json:"last_changed"`
	LastFailed   int        `json:"last_failed"`
	LastError    string     `json:"last_error,omitempty"`
	TicksTotal   int64      `json:"ticks_total"`
	ActiveViewer int        `json:"active_sessions"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	Sweeper  SweeperStatus            `json:"sweeper"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}
