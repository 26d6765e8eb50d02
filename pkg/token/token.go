package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// signatureLen is the number of HMAC-SHA256 bytes kept in the token.
// 8 bytes (64 bits) keeps tokens short while leaving forgery infeasible
// for an online attacker.
const signatureLen = 8

// Payload is the signed content of a redemption token.
type Payload struct {
	InvitationID uuid.UUID `json:"inv"`
	TenantID     uuid.UUID `json:"tid"`
	Email        string    `json:"eml"`
	ExpiresAt    time.Time `json:"exp"`
}

// Generate creates a redemption token for the payload signed with the secret.
func Generate(p Payload, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	sig := mac.Sum(nil)[:signatureLen]

	return base64.RawURLEncoding.EncodeToString(data) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Parse verifies the token's signature and expiry and returns its payload.
// The signature is checked before the payload is decoded, and compared in
// constant time.
func Parse(token, secret string) (Payload, error) {
	var p Payload
	if secret == "" {
		return p, ErrEmptySecret
	}

	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return p, ErrMalformedToken
	}

	data, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return p, ErrMalformedToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return p, ErrMalformedToken
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	expected := mac.Sum(nil)[:signatureLen]
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return p, ErrSignatureMismatch
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, ErrMalformedToken
	}

	if !p.ExpiresAt.IsZero() && !time.Now().Before(p.ExpiresAt) {
		return p, ErrTokenExpired
	}

	return p, nil
}
