package entity

import (
	"errors"
	"fmt"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
)

var (
	ErrUsernameTaken = fmt.Errorf("%w: username", goerror.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email", goerror.ErrConflict)

	// ErrTOTPTransition is returned when a state change is not allowed from the stored state.
	ErrTOTPTransition = errors.New("identity: totp state transition not allowed")
)

// TOTPState is where an account is in TOTP enrollment.
type TOTPState int16

const (
	// TOTPStateUnset mean TOTP was never set up.
	TOTPStateUnset TOTPState = 0

	// TOTPStatePending mean a secret is stored but was not confirmed with a code.
	TOTPStatePending TOTPState = 1

	// TOTPStateEnabled mean login requires a code or a recovery code.
	TOTPStateEnabled TOTPState = 2

	// TOTPStateDisabled mean TOTP was turned off and the secret cleared.
	TOTPStateDisabled TOTPState = 3
)

func (ts TOTPState) String() string {
	switch ts {
	case TOTPStateUnset:
		return "Unset"
	case TOTPStatePending:
		return "Pending"
	case TOTPStateEnabled:
		return "Enabled"
	case TOTPStateDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether ts may move to next.
//
//	Unset    -> Pending
//	Pending  -> Pending, Enabled
//	Enabled  -> Disabled
//	Disabled -> Pending
func (ts TOTPState) CanTransition(next TOTPState) bool {
	switch ts {
	case TOTPStateUnset, TOTPStateDisabled:
		return next == TOTPStatePending
	case TOTPStatePending:
		return next == TOTPStatePending || next == TOTPStateEnabled
	case TOTPStateEnabled:
		return next == TOTPStateDisabled
	default:
		return false
	}
}
