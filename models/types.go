package models

import (
	"strings"
	"time"
)

// ReasonCode identifies why a vote attempt was not recorded.
type ReasonCode string

// Admission outcome codes
const (
	ReasonSystemClosed        ReasonCode = "SYSTEM_CLOSED"
	ReasonAlreadyVoted        ReasonCode = "ALREADY_VOTED"
	ReasonDeviceAlreadyVoted  ReasonCode = "DEVICE_ALREADY_VOTED"
	ReasonNetworkLimitReached ReasonCode = "NETWORK_LIMIT_REACHED"
	ReasonRateLimited         ReasonCode = "RATE_LIMITED"
	ReasonMalformedInput      ReasonCode = "MALFORMED_INPUT"
	ReasonServerError         ReasonCode = "SERVER_ERROR"
)

// Retryable reports whether the client may succeed by retrying later
// without any administrator action.
func (c ReasonCode) Retryable() bool {
	return c == ReasonRateLimited || c == ReasonServerError
}

// Domain types

// VoteRecord is one accepted vote. Records are never updated, only
// removed in bulk by an administrative reset.
type VoteRecord struct {
	ID                string    `json:"id"`
	CandidateID       string    `json:"candidateId"`
	CategoryID        string    `json:"categoryId"`
	NetworkAddress    string    `json:"-"` // Never expose in JSON
	DeviceFingerprint string    `json:"-"`
	VoterToken        string    `json:"-"`
	HardwareProfile   string    `json:"-"`
	Timestamp         time.Time `json:"timestamp"`
}

// Tally maps candidate_id -> accepted vote count
type Tally map[string]int

// Request types

// VoteRequest is the body of POST /api/vote. The voterId, hardwareId and
// fingerprint fields are the names older clients send.
type VoteRequest struct {
	CandidateID       string `json:"candidateId"`
	CategoryID        string `json:"categoryId"`
	VoterToken        string `json:"voterToken"`
	HardwareProfile   string `json:"hardwareProfile"`
	DeviceFingerprint string `json:"deviceFingerprint,omitempty"`

	LegacyVoterID     string `json:"voterId,omitempty"`
	LegacyHardwareID  string `json:"hardwareId,omitempty"`
	LegacyFingerprint string `json:"fingerprint,omitempty"`
}

// Normalize folds legacy field names into the current ones and trims
// surrounding whitespace.
func (r *VoteRequest) Normalize() {
	if r.VoterToken == "" {
		r.VoterToken = r.LegacyVoterID
	}
	if r.HardwareProfile == "" {
		r.HardwareProfile = r.LegacyHardwareID
	}
	if r.DeviceFingerprint == "" {
		r.DeviceFingerprint = r.LegacyFingerprint
	}
	r.LegacyVoterID, r.LegacyHardwareID, r.LegacyFingerprint = "", "", ""

	r.CandidateID = strings.TrimSpace(r.CandidateID)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
	r.VoterToken = strings.TrimSpace(r.VoterToken)
	r.HardwareProfile = strings.TrimSpace(r.HardwareProfile)
	r.DeviceFingerprint = strings.TrimSpace(r.DeviceFingerprint)
}

type AdminRequest struct {
	PIN string `json:"pin"`
}

// UpdateSystemStatusRequest changes the live admission settings. Nil
// fields are left unchanged. NewMaxVotes is the older client's name for
// MaxVotesPerNetwork.
type UpdateSystemStatusRequest struct {
	PIN                string `json:"pin"`
	IsOpen             *bool  `json:"isOpen,omitempty"`
	MaxVotesPerNetwork *int   `json:"maxVotesPerNetwork,omitempty"`
	NewMaxVotes        *int   `json:"newMaxVotes,omitempty"`
}

// Response types

type VoteResponse struct {
	Success bool       `json:"success"`
	ID      string     `json:"id,omitempty"`
	Error   ReasonCode `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

type SystemStatus struct {
	IsOpen             bool `json:"isOpen"`
	MaxVotesPerNetwork int  `json:"maxVotesPerNetwork"`
}

type SystemStatusResponse struct {
	Success bool `json:"success"`
	SystemStatus
}

type ResetResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
