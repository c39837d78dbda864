// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a vote attempt is recorded.

# System Config

SystemConfig owns the two administrator settings: whether voting is open
and how many voters one network address may contribute per category.

	cfg := admission.NewSystemConfig(false, admission.DefaultMaxVotesPerNetwork)
	status, err := cfg.Update(&open, &limit)

# Controller

	c := admission.NewController(store, cfg,
		admission.WithPolicy(admission.DefaultPolicy()),
		admission.WithObserver(collector),
	)
	rec, err := c.Admit(ctx, req)

Admit returns either the stored record or an error. Policy rejections are
*Rejection values carrying a reason code; ReasonOf maps any error to the
code the client sees.

# Concurrency

The voter, device and network checks and the insert run in one ledger
transaction on a serialized writer, so two attempts for the same category
cannot both pass the checks. The ledger's UNIQUE (category_id, voter_token)
constraint backs the voter check; a violation is reported as ALREADY_VOTED.
*/
package admission
