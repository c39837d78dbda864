// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhkuo/votegate/auth"
	"github.com/danielhkuo/votegate/middleware"
	"github.com/danielhkuo/votegate/models"
)

// MaxSignalLength bounds every identity signal and choice identifier
const MaxSignalLength = 256

var (
	ErrMissingSignal = errors.New("missing identity signal")
	ErrSignalTooLong = errors.New("identity signal too long")
)

// Signals are the weak identity signals attached to one vote attempt.
// DeviceFingerprint is optional and kept for diagnostics only.
type Signals struct {
	NetworkAddress    string
	VoterToken        string
	HardwareProfile   string
	DeviceFingerprint string
}

// Validate checks that every mandatory signal is present and bounded
func (s Signals) Validate() error {
	required := []struct {
		name, value string
	}{
		{"networkAddress", s.NetworkAddress},
		{"voterToken", s.VoterToken},
		{"hardwareProfile", s.HardwareProfile},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingSignal, f.name)
		}
		if len(f.value) > MaxSignalLength {
			return fmt.Errorf("%w: %s", ErrSignalTooLong, f.name)
		}
	}
	if len(s.DeviceFingerprint) > MaxSignalLength {
		return fmt.Errorf("%w: deviceFingerprint", ErrSignalTooLong)
	}
	return nil
}

// Extractor derives the identity signals for a vote attempt from the HTTP
// request and its decoded body. Implementations must be deterministic: the
// same client state yields the same strings. Extract does not validate;
// missing signals are reported by the admission controller after its
// closed-system check.
type Extractor interface {
	Extract(r *http.Request, req models.VoteRequest) Signals
}

// RequestExtractor takes the voter token, hardware profile and fingerprint
// from the body and the network address from the connection.
type RequestExtractor struct {
	// TrustProxy honours X-Forwarded-For / X-Real-IP
	TrustProxy bool
	// AddressSalt, when set, replaces the raw address with a salted hash
	AddressSalt string
}

func (e RequestExtractor) Extract(r *http.Request, req models.VoteRequest) Signals {
	addr := middleware.GetClientIP(r, e.TrustProxy)
	if addr != "" && e.AddressSalt != "" {
		addr = auth.HashIP(addr, e.AddressSalt)
	}

	return Signals{
		NetworkAddress:    addr,
		VoterToken:        req.VoterToken,
		HardwareProfile:   CanonicalHardwareProfile(req.HardwareProfile, r.UserAgent()),
		DeviceFingerprint: req.DeviceFingerprint,
	}
}
