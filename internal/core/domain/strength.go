package domain

import (
	"fmt"
	"strings"
	"time"
)

// StrengthLevel is the ordered classification of password quality.
type StrengthLevel int

const (
	StrengthVeryWeak StrengthLevel = iota
	StrengthWeak
	StrengthAverage
	StrengthStrong
	StrengthVeryStrong
	StrengthSecure
	StrengthVerySecure
)

var strengthLevelNames = [...]string{
	StrengthVeryWeak:   "very_weak",
	StrengthWeak:       "weak",
	StrengthAverage:    "average",
	StrengthStrong:     "strong",
	StrengthVeryStrong: "very_strong",
	StrengthSecure:     "secure",
	StrengthVerySecure: "very_secure",
}

// AllStrengthLevels returns every level from weakest to strongest.
func AllStrengthLevels() []StrengthLevel {
	levels := make([]StrengthLevel, len(strengthLevelNames))
	for i := range strengthLevelNames {
		levels[i] = StrengthLevel(i)
	}
	return levels
}

// Valid reports whether the level is one of the seven known members.
func (l StrengthLevel) Valid() bool {
	return l >= StrengthVeryWeak && l <= StrengthVerySecure
}

func (l StrengthLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("StrengthLevel(%d)", int(l))
	}
	return strengthLevelNames[l]
}

// MarshalText encodes the level using its wire name.
func (l StrengthLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid strength level %d", int(l))
	}
	return []byte(strengthLevelNames[l]), nil
}

// UnmarshalText decodes a wire name into the level.
func (l *StrengthLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseStrengthLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseStrengthLevel accepts wire names ("very_strong") as well as camel case ("veryStrong").
func ParseStrengthLevel(value string) (StrengthLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for i, name := range strengthLevelNames {
		if normalized == name || normalized == strings.ReplaceAll(name, "_", "") {
			return StrengthLevel(i), nil
		}
	}
	return StrengthVeryWeak, fmt.Errorf("unknown strength level %q", value)
}

// CharacterCounts holds per-category character counts of a password.
// Every count is bounded by Length; characters outside the tracked
// categories only contribute to Length.
type CharacterCounts struct {
	Length    int
	Digits    int
	Symbols   int
	Lowercase int
	Uppercase int
}

// ScoreBreakdown carries the sub-score awarded for each category.
type ScoreBreakdown struct {
	Length    int
	Digits    int
	Symbols   int
	Lowercase int
	Uppercase int
}

// Total sums all sub-scores.
func (b ScoreBreakdown) Total() int {
	return b.Length + b.Digits + b.Symbols + b.Lowercase + b.Uppercase
}

// LevelBand describes the inclusive score range mapped to a level.
// MaxScore is nil for the open-ended top band.
type LevelBand struct {
	Level    StrengthLevel
	MinScore int
	MaxScore *int
}

// Estimate is the zxcvbn second opinion reported next to the classifier result.
type Estimate struct {
	Score            int
	Entropy          float64
	CrackTimeSeconds float64
	CrackTimeDisplay string
}

// Evaluation is the full result of scoring one password.
type Evaluation struct {
	Level       StrengthLevel
	Counts      CharacterCounts
	Breakdown   ScoreBreakdown
	Estimate    Estimate
	EvaluatedAt time.Time
}

// Score returns the total score of the evaluation.
func (e Evaluation) Score() int {
	return e.Breakdown.Total()
}

// EvaluationRecord is the anonymous statistics row persisted for each evaluation.
// It never carries the password or anything derived from it besides counts.
type EvaluationRecord struct {
	ID          string
	Level       StrengthLevel
	Score       int
	Counts      CharacterCounts
	ZxcvbnScore int
	Source      string
	EvaluatedAt time.Time
}

// PasswordContext carries user attributes that must not appear in a password.
type PasswordContext struct {
	Username string
	Email    string
	Phone    *string
}
