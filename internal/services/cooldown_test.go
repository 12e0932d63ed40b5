package services

import (
	"testing"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateCooldown(t *testing.T) {
	rejectedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rejected := &models.FriendRequest{Status: models.RequestStatusRejected, RejectedAt: &rejectedAt}

	tests := []struct {
		name    string
		elapsed time.Duration
		want    CooldownDecision
	}{
		{"just rejected", 0, CooldownDecision{Proceed: false, DaysLeft: 7}},
		{"one hour later", time.Hour, CooldownDecision{Proceed: false, DaysLeft: 7}},
		{"exactly one day", 24 * time.Hour, CooldownDecision{Proceed: false, DaysLeft: 6}},
		{"three and a half days", 84 * time.Hour, CooldownDecision{Proceed: false, DaysLeft: 4}},
		{"one second before the end", RequestCooldown - time.Second, CooldownDecision{Proceed: false, DaysLeft: 1}},
		{"exactly seven days", RequestCooldown, CooldownDecision{Proceed: true}},
		{"long after", 30 * 24 * time.Hour, CooldownDecision{Proceed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCooldown(rejected, rejectedAt.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateCooldown_NoRejectionTime(t *testing.T) {
	now := time.Now()

	assert.True(t, EvaluateCooldown(nil, now).Proceed)
	assert.True(t, EvaluateCooldown(&models.FriendRequest{Status: models.RequestStatusRejected}, now).Proceed)

	zero := time.Time{}
	assert.True(t, EvaluateCooldown(&models.FriendRequest{Status: models.RequestStatusRejected, RejectedAt: &zero}, now).Proceed)
}

func TestEvaluateCooldown_DaysLeftNeverIncreases(t *testing.T) {
	rejectedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rejected := &models.FriendRequest{RejectedAt: &rejectedAt}

	prev := EvaluateCooldown(rejected, rejectedAt).DaysLeft
	for elapsed := time.Duration(0); elapsed < RequestCooldown; elapsed += 5 * time.Hour {
		d := EvaluateCooldown(rejected, rejectedAt.Add(elapsed))
		assert.False(t, d.Proceed)
		assert.Greater(t, d.DaysLeft, 0)
		assert.LessOrEqual(t, d.DaysLeft, prev)
		prev = d.DaysLeft
	}
}
