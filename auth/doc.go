// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth guards administrative operations and anonymizes client addresses.

# Admin Key

Destructive operations (clearing all submissions, setting prompts) require the
X-Admin-Key header to equal the configured ADMIN_KEY:

	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey); err != nil {
		// 401
	}

# IP Hashing

Client IPs are never kept raw. The vote rate limiter keys its buckets by

	auth.HashIP(clientIP, salt)
*/
package auth
