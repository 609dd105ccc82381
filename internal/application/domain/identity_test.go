package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidIDCard(t *testing.T) {
	assert.True(t, ValidIDCard("11010519491231002X"))
	assert.True(t, ValidIDCard("11010519491231002x"))
	assert.False(t, ValidIDCard("110105194912310021"))
	assert.False(t, ValidIDCard("1101051949123100"))
	assert.False(t, ValidIDCard("1101051949A231002X"))
}

func TestBirthDateFromIDCard(t *testing.T) {
	birth, ok := BirthDateFromIDCard("11010519491231002X")
	assert.True(t, ok)
	assert.Equal(t, time.Date(1949, 12, 31, 0, 0, 0, 0, time.UTC), birth)

	_, ok = BirthDateFromIDCard("110105194913310021")
	assert.False(t, ok)
	_, ok = BirthDateFromIDCard("E1234567")
	assert.False(t, ok)
}

func TestGenderFromIDCard(t *testing.T) {
	g, ok := GenderFromIDCard("11010519491231002X")
	assert.True(t, ok)
	assert.Equal(t, GenderFemale, g)

	g, ok = GenderFromIDCard("110105194912310010")
	assert.True(t, ok)
	assert.Equal(t, GenderMale, g)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusPendingUnderwriting))
	assert.True(t, StatusUnderReview.CanTransitionTo(StatusApproved))
	assert.True(t, StatusUnderReview.CanTransitionTo(StatusRejected))
	assert.True(t, StatusApproved.CanTransitionTo(StatusActive))
	assert.True(t, StatusActive.CanTransitionTo(StatusExpired))

	assert.False(t, StatusDraft.CanTransitionTo(StatusActive))
	assert.False(t, StatusRejected.CanTransitionTo(StatusActive))
	assert.False(t, StatusExpired.CanTransitionTo(StatusActive))
	assert.False(t, Status("bogus").Valid())
}
