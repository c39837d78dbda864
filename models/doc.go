// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - VoteRequest: candidateId, categoryId, voterToken, hardwareProfile, deviceFingerprint
  - AdminRequest: pin
  - UpdateSystemStatusRequest: pin, isOpen, maxVotesPerNetwork

VoteRequest also accepts the field names sent by older clients
(voterId, hardwareId, fingerprint). Call Normalize after decoding.

# Response Types

  - VoteResponse: success, id or error code and message
  - SystemStatus / SystemStatusResponse: isOpen, maxVotesPerNetwork
  - ResetResponse: success, deleted
  - ErrorResponse: error, message

# Domain Types

  - VoteRecord: one accepted vote and the identity signals it was admitted with
  - Tally: candidate id to vote count

# Reason Codes

Every vote that is not recorded carries exactly one reason:

	SYSTEM_CLOSED          voting is closed
	ALREADY_VOTED          voter token already used in the category
	DEVICE_ALREADY_VOTED   same hardware on same network already voted
	NETWORK_LIMIT_REACHED  network address has used up its voter quota
	RATE_LIMITED           too many requests, retry later
	MALFORMED_INPUT        missing or oversized identity signal
	SERVER_ERROR           storage failure, retry later
*/
package models
