// Package token implements the signed invitation redemption token.
//
// A token is the base64url-encoded JSON payload followed by a truncated
// HMAC-SHA256 signature, separated by a dot. The signature binds the payload
// to the issuing service's secret, so a token cannot be forged or altered to
// point at another invitation, tenant, or expiry. Verification uses a
// constant-time comparison.
//
// Tokens are bearer credentials: they are returned once at invitation time
// and only a hash of them is persisted. Single-use semantics are enforced by
// the membership store's atomic claim, not by the token itself; Parse only
// guarantees authenticity and freshness.
//
//	plaintext, err := token.Generate(token.Payload{
//		InvitationID: inv.ID,
//		TenantID:     inv.TenantID,
//		Email:        inv.Email,
//		ExpiresAt:    inv.ExpiresAt,
//	}, secret)
//
//	payload, err := token.Parse(plaintext, secret)
//	if errors.Is(err, token.ErrTokenExpired) { ... }
package token
