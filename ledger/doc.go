// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the append-only store of accepted votes.

Admission checks and the insert run in one write transaction:

	err := store.InTx(ctx, func(tx ledger.Tx) error {
		if seen, err := tx.VoterExists(ctx, category, token); err != nil || seen {
			...
		}
		return tx.Append(ctx, rec)
	})

A uniqueness violation on (category_id, voter_token) surfaces as
ErrDuplicateVoter regardless of driver, so a concurrent double submit that
slips past the read checks is still caught.

Every operation runs under the store's timeout; a query that exceeds it
returns an error wrapping context.DeadlineExceeded.
*/
package ledger
