// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/votegate/admission"
	"github.com/danielhkuo/votegate/auth"
	"github.com/danielhkuo/votegate/cliparse"
	"github.com/danielhkuo/votegate/middleware"
	"github.com/danielhkuo/votegate/models"
)

// SessionCookie is the name of the signed admin session cookie
const SessionCookie = "admin_session"

// Resetter empties the vote ledger
type Resetter interface {
	Reset(ctx context.Context) (int64, error)
}

type AdminHandler struct {
	ledger Resetter
	system *admission.SystemConfig
	cfg    cliparse.Config
	now    func() time.Time
}

func NewAdminHandler(ledger Resetter, system *admission.SystemConfig, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{ledger: ledger, system: system, cfg: cfg, now: time.Now}
}

// Authenticate handles POST /api/admin-auth
// A valid PIN sets the admin session cookie.
func (h *AdminHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.ValidatePIN(req.PIN, h.cfg.AdminPIN); err != nil {
		slog.Warn("admin authentication failed", "remote", middleware.GetClientIP(r, h.cfg.TrustProxy))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid PIN")
		return
	}

	expires := h.now().Add(auth.SessionTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    auth.GenerateSessionToken(expires, h.cfg.SessionSalt),
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("admin authenticated")

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Reset handles POST /api/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !h.authorized(r, req.PIN) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deleted, err := h.ledger.Reset(r.Context())
	if err != nil {
		slog.Error("failed to reset ledger", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset votes")
		return
	}

	slog.Info("ledger reset", "deleted", deleted)

	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		Success: true,
		Deleted: deleted,
	})
}

// GetSystemStatus handles GET /api/system-status
func (h *AdminHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.SystemStatusResponse{
		Success:      true,
		SystemStatus: h.system.Snapshot(),
	})
}

// UpdateSystemStatus handles POST /api/system-status
// Absent fields are left unchanged; an invalid limit changes nothing.
func (h *AdminHandler) UpdateSystemStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSystemStatusRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !h.authorized(r, req.PIN) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := req.MaxVotesPerNetwork
	if limit == nil {
		limit = req.NewMaxVotes
	}

	status, err := h.system.Update(req.IsOpen, limit)
	if errors.Is(err, admission.ErrInvalidLimit) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "maxVotesPerNetwork must be a positive integer")
		return
	}
	if err != nil {
		slog.Error("failed to update system status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update system status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SystemStatusResponse{
		Success:      true,
		SystemStatus: status,
	})
}

// authorized accepts either the PIN from the body or a valid session cookie
func (h *AdminHandler) authorized(r *http.Request, pin string) bool {
	if pin != "" {
		return auth.ValidatePIN(pin, h.cfg.AdminPIN) == nil
	}

	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return false
	}
	return auth.ValidateSessionToken(cookie.Value, h.cfg.SessionSalt, h.now()) == nil
}

// parseOptionalBody decodes a JSON body, treating an empty body as {}
func parseOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := middleware.ParseJSONBody(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
