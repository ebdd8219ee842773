package handler

import (
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/middleware"
	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/services/games"
)

// GamesHandler handles ticket spending, score reports and the leaderboard
type GamesHandler struct {
	gamesService *games.Service
}

// NewGamesHandler creates a new games handler
func NewGamesHandler(gamesService *games.Service) *GamesHandler {
	return &GamesHandler{gamesService: gamesService}
}

// Start handles POST /api/v1/games/start
func (h *GamesHandler) Start(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	result, err := h.gamesService.StartGame(r.Context(), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.StartGameResponseFromResult(result))
}

// Score handles POST /api/v1/games/score
func (h *GamesHandler) Score(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.ScoreRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.gamesService.ReportScore(r.Context(), account.ID, req.GameType, *req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.ScoreResponseFromResult(result))
}

// Leaderboard handles GET /api/v1/games/leaderboard?game=
// Signed-in callers get their own row flagged.
func (h *GamesHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.gamesService.Leaderboard(r.Context(), r.URL.Query().Get("game"))
	if err != nil {
		WriteError(w, err)
		return
	}

	body := response.LeaderboardFromEntries(entries)
	if account := middleware.GetAccount(r.Context()); account != nil {
		for i := range body {
			body[i].IsYou = body[i].ID == string(account.ID)
		}
	}

	response.OK(w, body)
}
