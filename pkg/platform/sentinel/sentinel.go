package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: unique constraint hit (duplicate email, duplicate link)
// - ErrExpired: OTP, pending-application link, or invitation has expired
// - ErrAlreadyUsed: one-shot resource (OTP) already consumed
// - ErrInvalidState: entity in the wrong lifecycle state for the operation
// - ErrUnavailable: dependency temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
