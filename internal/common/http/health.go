package http

import (
	"net/http"
)

type HealthStats struct {
	Users          int `json:"users"`
	ActiveSessions int `json:"active_sessions"`
}

type HealthResponse struct {
	Status string `json:"status"`
	HealthStats
}

// StatsFunc reports live server figures for the health endpoint.
type StatsFunc func() HealthStats

func HealthHandler(stats StatsFunc) http.HandlerFunc {
	return RequireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if stats != nil {
			resp.HealthStats = stats()
		}
		WriteJSON(w, http.StatusOK, resp)
	})
}
