package handler

import (
	"fmt"
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/services/users"
)

// UsersHandler handles the admin-only account administration endpoints
type UsersHandler struct {
	usersService *users.Service
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(usersService *users.Service) *UsersHandler {
	return &UsersHandler{usersService: usersService}
}

// List handles GET /api/v1/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.usersService.ListStudents(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.AccountsFromModel(accounts))
}

// SetStatus handles PATCH /api/v1/users/{id}/status
func (h *UsersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.SetStatusRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	account, err := h.usersService.SetStatus(r.Context(), id, model.Status(req.Status))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.StatusResponse{
		Message: fmt.Sprintf("User status changed to %s", account.Status),
		User:    response.AccountFromModel(account),
	})
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err = h.usersService.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
