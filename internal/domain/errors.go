package domain

import "errors"

var (
	// ErrNotFound is returned when a username does not resolve to an account.
	ErrNotFound = errors.New("user not found")
	// ErrUnknownCode is returned for codes that were never generated.
	ErrUnknownCode = errors.New("unknown invite code")
	// ErrAlreadyUsed is returned for codes consumed by an earlier claim.
	ErrAlreadyUsed = errors.New("invite code already used")
	// ErrUpstream wraps transport and non-2xx failures from the platform.
	ErrUpstream = errors.New("upstream platform error")
	// ErrRemoteFailure means a code was claimed but the join mutation failed.
	// The code stays consumed and needs manual reconciliation.
	ErrRemoteFailure = errors.New("code consumed but remote mutation failed")
	ErrNotInGroup    = errors.New("user is not in the group")
	ErrAtCeiling     = errors.New("user already holds the highest rank")
	ErrAtFloor       = errors.New("user already holds the lowest rank")
	ErrRoleNotFound  = errors.New("rank not found")

	ErrInvalidArgument = errors.New("invalid argument")
)
