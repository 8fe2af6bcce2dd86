package model

import (
	"time"
)

// Submission is one user's single photo response to one challenge. The
// (user, challenge) pair is unique; UploadedAt is set once at creation and
// survives image replacement.
type Submission struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"image_url"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`

	// Denormalized for responses, populated by repository joins.
	Username       string `json:"username,omitempty"`
	ChallengeTitle string `json:"challenge_title,omitempty"`
}
