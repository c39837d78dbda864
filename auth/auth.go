// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPIN     = errors.New("invalid admin PIN")
	ErrInvalidSession = errors.New("invalid admin session")
	ErrSessionExpired = errors.New("admin session expired")
)

// SessionTTL is how long an admin session cookie stays valid
const SessionTTL = 24 * time.Hour

// ValidatePIN checks the provided PIN against the configured one in
// constant time
func ValidatePIN(provided, expected string) error {
	if expected == "" || !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidPIN
	}
	return nil
}

// GenerateSessionToken creates a signed admin session token that expires
// at the given time. Format: <unix expiry>.<base64url hmac>
func GenerateSessionToken(expiresAt time.Time, salt string) string {
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	return exp + "." + signSession(exp, salt)
}

// ValidateSessionToken verifies the signature and expiry of a token
// produced by GenerateSessionToken
func ValidateSessionToken(token, salt string, now time.Time) error {
	exp, sig, ok := strings.Cut(token, ".")
	if !ok || exp == "" || sig == "" {
		return ErrInvalidSession
	}
	if !hmac.Equal([]byte(sig), []byte(signSession(exp, salt))) {
		return ErrInvalidSession
	}

	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return ErrInvalidSession
	}
	if !now.Before(time.Unix(unix, 0)) {
		return ErrSessionExpired
	}
	return nil
}

func signSession(exp, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("admin_session:"))
	h.Write([]byte(exp))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding so the token is cookie-safe
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
