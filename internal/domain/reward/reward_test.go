package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRewardValidation(t *testing.T) {
	_, err := NewReward(NewRewardParams{ID: "", OwnerID: 1, Title: "x", Cost: 10})
	assert.Error(t, err)

	_, err = NewReward(NewRewardParams{ID: "r1", OwnerID: 1, Title: "  ", Cost: 10})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = NewReward(NewRewardParams{ID: "r1", OwnerID: 1, Title: "x", Cost: 0})
	assert.ErrorIs(t, err, ErrInvalidCost)

	r, err := NewReward(NewRewardParams{ID: "r1", OwnerID: 1, Title: " поход в кино ", Cost: 150})
	assert.NoError(t, err)
	assert.Equal(t, "поход в кино", r.Title)
	assert.False(t, r.Claimed)
}

func TestCheckClaimWindow(t *testing.T) {
	sunday := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// The weekday check comes first: a Monday with a perfect week is
	// still rejected as not-sunday, not as rate-too-low.
	assert.ErrorIs(t, CheckClaimWindow(monday, 100), ErrNotSunday)

	assert.ErrorIs(t, CheckClaimWindow(sunday, 79.9), ErrRateTooLow)
	assert.ErrorIs(t, CheckClaimWindow(sunday, 80.0), ErrRateTooLow)
	assert.NoError(t, CheckClaimWindow(sunday, 80.1))
	assert.NoError(t, CheckClaimWindow(sunday, 100))
}

func TestClaimIsOneShot(t *testing.T) {
	r, err := NewReward(NewRewardParams{ID: "r1", OwnerID: 1, Title: "x", Cost: 10})
	assert.NoError(t, err)

	assert.NoError(t, r.Claim(time.Now()))
	assert.True(t, r.Claimed)
	assert.NotNil(t, r.ClaimedAt)

	assert.ErrorIs(t, r.Claim(time.Now()), ErrAlreadyClaimed)
}
