package model

import (
	"time"
)

// Challenge statuses are derived per request, never stored.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusExpired   = "EXPIRED"
)

// Day statuses.
const (
	DayActive    = "ACTIVE"
	DayCompleted = "COMPLETED"
)

type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	LimitTime   time.Time `json:"limit_time"`
	DayNumber   int       `json:"day_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChallengeView is a Challenge enriched with the per-request derived state.
type ChallengeView struct {
	Challenge
	Status          string `json:"status"`
	SubmissionCount int    `json:"submission_count"`
}

// DayView aggregates one camp day.
type DayView struct {
	Day             int    `json:"day"`
	Status          string `json:"status"`
	ChallengeCount  int    `json:"challenge_count"`
	SubmissionCount int    `json:"submission_count"`
}

// ChallengeStatus derives the status of a challenge for one actor at one
// instant. Expiry dominates completion: a submitted-then-expired challenge
// reports EXPIRED, because status communicates current actionability, not
// historical success.
func ChallengeStatus(c Challenge, hasSubmission bool, now time.Time) string {
	if now.After(c.LimitTime) {
		return StatusExpired
	}
	if hasSubmission {
		return StatusCompleted
	}
	return StatusPending
}

// DayStatus is COMPLETED only when the day has challenges and every one of
// them is past its deadline. A day with no challenges stays ACTIVE.
func DayStatus(challenges []Challenge, now time.Time) string {
	if len(challenges) == 0 {
		return DayActive
	}
	for _, c := range challenges {
		if !now.After(c.LimitTime) {
			return DayActive
		}
	}
	return DayCompleted
}

// Disclosable reports whether a challenge's submissions may be shown to
// anonymous callers. Monotonic in time: once the deadline passes it never
// flips back.
func Disclosable(c Challenge, now time.Time) bool {
	return now.After(c.LimitTime)
}
