package domain

import "time"

// StrengthEvaluatedEvent represents the payload for passmeter.strength.evaluated messages.
type StrengthEvaluatedEvent struct {
	EventID     string
	Level       StrengthLevel
	Score       int
	ZxcvbnScore int
	Cached      bool
	Source      string
	EvaluatedAt time.Time
	Metadata    map[string]any
}

// PasswordRejectedEvent represents the payload for passmeter.password.rejected messages.
type PasswordRejectedEvent struct {
	EventID    string
	Code       string
	Level      StrengthLevel
	Source     string
	RejectedAt time.Time
	Metadata   map[string]any
}
