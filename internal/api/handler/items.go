package handler

import (
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/middleware"
	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/services/companion"
)

// ItemsHandler handles companion selection and daily check-ins
type ItemsHandler struct {
	companionService *companion.Service
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(companionService *companion.Service) *ItemsHandler {
	return &ItemsHandler{companionService: companionService}
}

// Choose handles POST /api/v1/items/choose
func (h *ItemsHandler) Choose(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.ChooseItemRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	item, err := h.companionService.Choose(r.Context(), account.ID, model.ItemType(req.Type), req.Name, req.Personality)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.ItemFromModel(item))
}

// Get handles GET /api/v1/items/me
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	item, err := h.companionService.Get(r.Context(), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.ItemFromModel(item))
}

// CheckIn handles POST /api/v1/items/checkin
func (h *ItemsHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	result, err := h.companionService.CheckIn(r.Context(), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.CheckInResponseFromResult(result))
}
