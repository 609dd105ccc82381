package guard

import (
	"testing"
	"time"

	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	"github.com/stretchr/testify/assert"
)

func TestEnsureApplicationCanExpire(t *testing.T) {
	today := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, EnsureApplicationCanExpire(appdomain.StatusActive, &lastDay, today))
	assert.ErrorIs(t, EnsureApplicationCanExpire(appdomain.StatusActive, &today, today), ErrNotYetExpired)
	assert.ErrorIs(t, EnsureApplicationCanExpire(appdomain.StatusApproved, &lastDay, today), ErrApplicationNotActive)
	assert.ErrorIs(t, EnsureApplicationCanExpire(appdomain.StatusActive, nil, today), ErrMissingExpiryDate)
}
