package handler

import (
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/services/content"
)

// ContentHandler serves and edits the landing page CMS
type ContentHandler struct {
	contentService *content.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *content.Service) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// Public handles GET /api/v1/content/public
func (h *ContentHandler) Public(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.contentService.Public(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, blocks)
}

// Update handles POST /api/v1/content/update
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateContentRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	entry, err := h.contentService.Update(r.Context(), req.Key, req.Value)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.ContentEntryFromModel(entry))
}
