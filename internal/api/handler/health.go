package handler

import (
	"net/http"

	"github.com/avely-labs/formation-advisor/internal/advisor"
	"github.com/avely-labs/formation-advisor/internal/api/response"
)

// SessionCounter exposes the live-session view needed by the health check
type SessionCounter interface {
	SessionCount() int
	EvictExpiredSessions() int
}

// HealthCheck returns the capability manifest and current session count.
// Expired sessions are swept opportunistically so the count stays honest.
func HealthCheck(sessions SessionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.EvictExpiredSessions()

		response.OK(w, map[string]any{
			"status":         "healthy",
			"agents":         advisor.AgentNames(),
			"activeSessions": sessions.SessionCount(),
		})
	}
}
