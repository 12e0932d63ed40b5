package services

import (
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/models"
)

// RequestCooldown is how long a rejected pair must wait before a new request.
const RequestCooldown = 7 * 24 * time.Hour

const day = 24 * time.Hour

// CooldownDecision is the outcome of checking a rejected request against the cooldown.
type CooldownDecision struct {
	Proceed  bool
	DaysLeft int
}

// EvaluateCooldown decides whether a new request may replace rejected at now.
// A rejected request without a rejection time never blocks.
func EvaluateCooldown(rejected *models.FriendRequest, now time.Time) CooldownDecision {
	if rejected == nil || rejected.RejectedAt == nil || rejected.RejectedAt.IsZero() {
		return CooldownDecision{Proceed: true}
	}

	elapsed := now.Sub(*rejected.RejectedAt)
	if elapsed >= RequestCooldown {
		return CooldownDecision{Proceed: true}
	}

	timeLeft := RequestCooldown - elapsed
	daysLeft := int((timeLeft + day - 1) / day)
	return CooldownDecision{Proceed: false, DaysLeft: daysLeft}
}
