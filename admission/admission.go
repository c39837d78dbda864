// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/votegate/identity"
	"github.com/danielhkuo/votegate/ledger"
	"github.com/danielhkuo/votegate/models"
)

// Ledger is the transactional store the controller appends to
type Ledger interface {
	InTx(ctx context.Context, fn func(ledger.Tx) error) error
}

// Observer receives every decision. reason is empty for an admitted vote.
type Observer interface {
	ObserveDecision(reason models.ReasonCode, took time.Duration)
}

// Policy selects which checks run after the voter-token check. The
// voter-token check and the storage uniqueness backing it are always on.
type Policy struct {
	// DeviceCheck rejects a second voter with the same hardware profile
	// on the same network in a category.
	DeviceCheck bool
	// NetworkLimit caps voters per network address in a category.
	NetworkLimit bool
}

// DefaultPolicy enables every check
func DefaultPolicy() Policy {
	return Policy{DeviceCheck: true, NetworkLimit: true}
}

// Rejection is a policy decision not to record a vote
type Rejection struct {
	Reason  models.ReasonCode
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("vote rejected: %s: %s", r.Reason, r.Message)
}

func reject(reason models.ReasonCode, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf classifies an error returned by Admit. Any error that is not a
// Rejection is a SERVER_ERROR.
func ReasonOf(err error) models.ReasonCode {
	if err == nil {
		return ""
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return models.ReasonServerError
}

// Request is one vote attempt
type Request struct {
	CandidateID string
	CategoryID  string
	Signals     identity.Signals
}

// Controller decides whether vote attempts are recorded.
type Controller struct {
	ledger   Ledger
	config   *SystemConfig
	policy   Policy
	observer Observer
	now      func() time.Time
	newID    func() string
}

type Option func(*Controller)

func WithPolicy(p Policy) Option {
	return func(c *Controller) { c.policy = p }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(l Ledger, cfg *SystemConfig, opts ...Option) *Controller {
	c := &Controller{
		ledger: l,
		config: cfg,
		policy: DefaultPolicy(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the live settings the controller consults
func (c *Controller) Config() *SystemConfig {
	return c.config
}

// Admit runs the policy chain and, if every check passes, appends the vote.
// Checks run in order and the first failure wins:
//
//  1. system closed           -> SYSTEM_CLOSED
//  2. malformed request       -> MALFORMED_INPUT
//  3. voter token seen        -> ALREADY_VOTED
//  4. same network + hardware -> DEVICE_ALREADY_VOTED
//  5. network quota used up   -> NETWORK_LIMIT_REACHED
//
// Checks 3-5 and the append share one ledger transaction. Policy failures
// are returned as *Rejection; anything else is a storage error.
func (c *Controller) Admit(ctx context.Context, req Request) (models.VoteRecord, error) {
	start := time.Now()
	rec, err := c.admit(ctx, req)
	reason := ReasonOf(err)

	if c.observer != nil {
		c.observer.ObserveDecision(reason, time.Since(start))
	}

	switch reason {
	case "":
		slog.Info("vote admitted",
			"vote_id", rec.ID,
			"category_id", rec.CategoryID,
			"candidate_id", rec.CandidateID,
		)
	case models.ReasonServerError:
		slog.Error("vote admission failed", "category_id", req.CategoryID, "error", err)
	default:
		slog.Info("vote rejected", "category_id", req.CategoryID, "reason", reason)
	}

	return rec, err
}

func (c *Controller) admit(ctx context.Context, req Request) (models.VoteRecord, error) {
	cfg := c.config.Snapshot()
	if !cfg.IsOpen {
		return models.VoteRecord{}, reject(models.ReasonSystemClosed, "Voting is currently closed.")
	}

	if err := validate(req); err != nil {
		return models.VoteRecord{}, reject(models.ReasonMalformedInput, "Missing voting data (%v).", err)
	}

	rec := models.VoteRecord{
		ID:                c.newID(),
		CandidateID:       req.CandidateID,
		CategoryID:        req.CategoryID,
		NetworkAddress:    req.Signals.NetworkAddress,
		DeviceFingerprint: req.Signals.DeviceFingerprint,
		VoterToken:        req.Signals.VoterToken,
		HardwareProfile:   req.Signals.HardwareProfile,
		Timestamp:         c.now().UTC(),
	}

	err := c.ledger.InTx(ctx, func(tx ledger.Tx) error {
		seen, err := tx.VoterExists(ctx, rec.CategoryID, rec.VoterToken)
		if err != nil {
			return err
		}
		if seen {
			return reject(models.ReasonAlreadyVoted, "You have already voted in this category.")
		}

		if c.policy.DeviceCheck {
			seen, err := tx.DeviceExists(ctx, rec.CategoryID, rec.NetworkAddress, rec.HardwareProfile)
			if err != nil {
				return err
			}
			if seen {
				return reject(models.ReasonDeviceAlreadyVoted, "This device has already voted in this category.")
			}
		}

		if c.policy.NetworkLimit {
			n, err := tx.CountByNetwork(ctx, rec.CategoryID, rec.NetworkAddress)
			if err != nil {
				return err
			}
			if n >= cfg.MaxVotesPerNetwork {
				return reject(models.ReasonNetworkLimitReached,
					"Network limit reached (max %d voters per network).", cfg.MaxVotesPerNetwork)
			}
		}

		return tx.Append(ctx, rec)
	})
	if errors.Is(err, ledger.ErrDuplicateVoter) {
		return models.VoteRecord{}, reject(models.ReasonAlreadyVoted, "You have already voted in this category.")
	}
	if err != nil {
		return models.VoteRecord{}, err
	}

	return rec, nil
}

func validate(req Request) error {
	for _, f := range []struct{ name, value string }{
		{"candidateId", req.CandidateID},
		{"categoryId", req.CategoryID},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s", identity.ErrMissingSignal, f.name)
		}
		if len(f.value) > identity.MaxSignalLength {
			return fmt.Errorf("%w: %s", identity.ErrSignalTooLong, f.name)
		}
	}
	return req.Signals.Validate()
}
