// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the administrator gate and address hashing.

# Admin PIN

Administrative calls (reset, system status changes) carry the PIN:

	if err := auth.ValidatePIN(req.PIN, cfg.AdminPIN); err != nil {
		// 401
	}

The comparison is constant time. An empty configured PIN never matches.

# Admin Sessions

After a successful PIN check the dashboard receives a session cookie:

	token := auth.GenerateSessionToken(time.Now().Add(auth.SessionTTL), salt)
	err := auth.ValidateSessionToken(token, salt, time.Now())

Tokens are "<unix expiry>.<hmac>" with an HMAC-SHA256 signature over the
expiry, URL-safe base64 without padding. Nothing is stored server side;
rotating the salt invalidates every session.

# IP Hashing

For deployments that must not keep raw client addresses:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. Equal addresses map to
equal hashes, so admission checks work unchanged.
*/
package auth
