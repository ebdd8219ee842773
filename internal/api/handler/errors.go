package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ijo-project/ijo-backend/internal/api/apierr"
	"github.com/ijo-project/ijo-backend/internal/model"
)

// WriteError writes err as a JSON error body with its mapped status
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// accountIDFromPath reads the {id} route variable
func accountIDFromPath(r *http.Request) (model.AccountID, error) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		return "", apierr.NewInvalidRequestError("account id is required")
	}
	return model.AccountID(id), nil
}
