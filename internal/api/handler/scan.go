package handler

import (
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/middleware"
	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/services/scan"
)

// ScanHandler handles trash scan reports
type ScanHandler struct {
	scanService *scan.Service
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanService *scan.Service) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// Scan handles POST /api/v1/garbage/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.ScanRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.scanService.ReportScan(r.Context(), account.ID, req.Category)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.ScanResponseFromResult(result))
}
