package handler

import (
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/response"
)

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.Health{Status: "ok"})
}
