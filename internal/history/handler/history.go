package handler

import (
	"net/http"
	"strconv"

	"github.com/vaxstock/vaxstock-backend/internal/history/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

// HistoryHandler handles audit trail endpoints
type HistoryHandler struct {
	repo   *repository.HistoryRepository
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(repo *repository.HistoryRepository, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:   repo,
		logger: log,
	}
}

// List returns the account's audit entries, newest first
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
