package controllers

import (
	"net/http"

	"postboard/app/repositories"
)

// HealthController exposes liveness and readiness probes.
type HealthController struct {
	store repositories.Pinger
}

func NewHealthController(store repositories.Pinger) *HealthController {
	return &HealthController{store: store}
}

// Liveness responds OK while the process is up; it checks no dependency.
func (hc *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness pings the store.
func (hc *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := hc.store.Ping(r.Context()); err != nil {
		sendJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
