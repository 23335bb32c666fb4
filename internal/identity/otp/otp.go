// Package otp issues and redeems one-time passcodes for email verification
// and password reset.
//
// Codes live server-side with a TTL and are consumed exactly once. A wrong
// code and an expired/consumed code are distinct failures so clients can tell
// "typo" apart from "request a new code".
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Purpose namespaces codes so a password-reset code can never verify an email.
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email-verify"
	PurposePasswordReset Purpose = "password-reset"
)

// Store persists codes with expiry. Implementations return
// sentinel.ErrExpired when no live code exists for the key and
// sentinel.ErrInvalidState when a live code does not match.
type Store interface {
	// Put stores the code for the key, replacing any previous one.
	Put(ctx context.Context, purpose Purpose, key, code string, ttl time.Duration) error
	// Consume redeems the code for the key. The stored code is removed on a
	// match; mismatches leave it in place so a typo does not burn the code.
	Consume(ctx context.Context, purpose Purpose, key, code string) error
}

// Generate returns a 6-digit numeric code from crypto/rand.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
