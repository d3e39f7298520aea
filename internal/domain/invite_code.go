package domain

import "time"

// InviteCode is a single-use code that grants one group join.
type InviteCode struct {
	Code      string     `json:"code"`
	Used      bool       `json:"used"`
	CreatedOn time.Time  `json:"created_on"`
	UsedOn    *time.Time `json:"used_on,omitempty"`
}

// ClaimResult is the outcome of an atomic claim attempt on a code.
type ClaimResult int

const (
	ClaimUnknown ClaimResult = iota
	ClaimAlreadyUsed
	ClaimClaimed
)

func (r ClaimResult) String() string {
	switch r {
	case ClaimUnknown:
		return "unknown"
	case ClaimAlreadyUsed:
		return "already_used"
	case ClaimClaimed:
		return "claimed"
	default:
		return "invalid"
	}
}

// Err maps a non-claimed result to its sentinel error. Claimed maps to nil.
func (r ClaimResult) Err() error {
	switch r {
	case ClaimClaimed:
		return nil
	case ClaimAlreadyUsed:
		return ErrAlreadyUsed
	default:
		return ErrUnknownCode
	}
}
