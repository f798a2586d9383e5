package auth

import (
	"github.com/dmitrijs2005/casauth/internal/server/models"
)

// AccountStatus is the login-relevant state of a user record.
type AccountStatus uint8

const (
	StatusUnknown AccountStatus = iota
	StatusActive
	StatusNotConfirmed
	StatusNotClaimed
	StatusDisabled
	StatusMerged
)

func (s AccountStatus) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusNotConfirmed:
		return "NOT_CONFIRMED"
	case StatusNotClaimed:
		return "NOT_CLAIMED"
	case StatusDisabled:
		return "DISABLED"
	case StatusMerged:
		return "MERGED"
	default:
		return "UNKNOWN"
	}
}

// Classify maps a user record to exactly one status. The first matching rule
// wins:
//
//  1. active users are Active whatever else is set;
//  2. unclaimed, unregistered, unconfirmed users are NotClaimed when no real
//     password was ever set and NotConfirmed when a recognised hash exists;
//  3. merged users are Merged;
//  4. disabled users are Disabled;
//  5. everything else is Unknown.
func Classify(u models.User) AccountStatus {
	if u.Active {
		return StatusActive
	}
	if !u.Claimed && !u.Registered && !u.Confirmed {
		if IsUnusablePassword(u.PasswordHash) {
			return StatusNotClaimed
		}
		if HasRecognizedScheme(u.PasswordHash) {
			return StatusNotConfirmed
		}
	}
	if u.Merged {
		return StatusMerged
	}
	if u.Disabled {
		return StatusDisabled
	}
	return StatusUnknown
}

// StatusError returns the login failure for a status, nil for Active.
func StatusError(s AccountStatus) error {
	switch s {
	case StatusActive:
		return nil
	case StatusNotConfirmed:
		return ErrLoginNotAllowed
	case StatusDisabled:
		return ErrAccountDisabled
	default:
		return ErrInconsistentAccountState
	}
}
