package server

import "net/http"

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	service *Service
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(service *Service) *SystemHandler {
	return &SystemHandler{service: service}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	Transactions int    `json:"transactions"`
	Error        string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	database := "none"
	if h.service.repo != nil {
		database = "connected"
	}
	if err := h.service.CheckHealth(r.Context()); err != nil {
		RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}
	RespondJSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		Database:     database,
		Transactions: h.service.ledger.Len(),
	})
}
