package guard

import (
	"errors"
	"time"

	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
)

var (
	ErrApplicationNotActive = errors.New("application_not_active")
	ErrMissingExpiryDate    = errors.New("application_missing_expiry_date")
	ErrNotYetExpired        = errors.New("application_not_yet_expired")
)

// EnsureApplicationCanExpire reports whether an application is past its
// cover. The expiry date is the last covered day, so it expires from the
// following day on.
func EnsureApplicationCanExpire(status appdomain.Status, expiryDate *time.Time, today time.Time) error {
	if !status.CanTransitionTo(appdomain.StatusExpired) {
		return ErrApplicationNotActive
	}
	if expiryDate == nil {
		return ErrMissingExpiryDate
	}
	if !expiryDate.Before(today) {
		return ErrNotYetExpired
	}
	return nil
}
