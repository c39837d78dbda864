// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/votegate/admission"
	"github.com/danielhkuo/votegate/identity"
	"github.com/danielhkuo/votegate/middleware"
	"github.com/danielhkuo/votegate/models"
)

type VotingHandler struct {
	controller *admission.Controller
	extractor  identity.Extractor
}

func NewVotingHandler(controller *admission.Controller, extractor identity.Extractor) *VotingHandler {
	return &VotingHandler{controller: controller, extractor: extractor}
}

// CastVote handles POST /api/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.VoteResponse{
			Success: false,
			Error:   models.ReasonMalformedInput,
			Message: "Invalid JSON.",
		})
		return
	}
	req.Normalize()

	rec, err := h.controller.Admit(r.Context(), admission.Request{
		CandidateID: req.CandidateID,
		CategoryID:  req.CategoryID,
		Signals:     h.extractor.Extract(r, req),
	})
	if err != nil {
		reason := admission.ReasonOf(err)
		message := "Failed to record vote."
		var rej *admission.Rejection
		if errors.As(err, &rej) {
			message = rej.Message
		}
		middleware.JSONResponse(w, StatusForReason(reason), models.VoteResponse{
			Success: false,
			Error:   reason,
			Message: message,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Success: true,
		ID:      rec.ID,
	})
}

// StatusForReason maps a rejection reason to its HTTP status
func StatusForReason(reason models.ReasonCode) int {
	switch reason {
	case "":
		return http.StatusOK
	case models.ReasonMalformedInput:
		return http.StatusBadRequest
	case models.ReasonRateLimited:
		return http.StatusTooManyRequests
	case models.ReasonSystemClosed,
		models.ReasonAlreadyVoted,
		models.ReasonDeviceAlreadyVoted,
		models.ReasonNetworkLimitReached:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
