// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votegate/middleware"
	"github.com/danielhkuo/votegate/models"
)

// TallySource projects the ledger into per-candidate counts
type TallySource interface {
	Tally(ctx context.Context, categoryID string) (models.Tally, error)
}

type ResultsHandler struct {
	tallies TallySource
}

func NewResultsHandler(tallies TallySource) *ResultsHandler {
	return &ResultsHandler{tallies: tallies}
}

// GetStats handles GET /api/stats
// Returns candidateId -> count over every accepted vote, or over one
// category when ?category= is given. Candidates with no votes are absent.
func (h *ResultsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	tally, err := h.tallies.Tally(r.Context(), category)
	if err != nil {
		slog.Error("failed to compute tally", "error", err, "category_id", category)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tally)
}
