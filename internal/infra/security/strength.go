package security

import (
	"fmt"

	"github.com/arklim/passmeter/internal/core/domain"
)

// ScoreStep awards Points once a category count reaches AtLeast.
type ScoreStep struct {
	AtLeast int
	Points  int
}

// ScoreSteps is an ascending list of steps for one category.
type ScoreSteps []ScoreStep

// Points returns the points of the highest step reached by count, or 0.
func (s ScoreSteps) Points(count int) int {
	points := 0
	for _, step := range s {
		if count < step.AtLeast {
			break
		}
		points = step.Points
	}
	return points
}

func (s ScoreSteps) validate(name string) error {
	prevAt, prevPoints := 0, 0
	for i, step := range s {
		if step.AtLeast <= prevAt {
			return fmt.Errorf("%s step %d: threshold %d must exceed %d", name, i, step.AtLeast, prevAt)
		}
		if step.Points < prevPoints {
			return fmt.Errorf("%s step %d: points %d lower than previous %d", name, i, step.Points, prevPoints)
		}
		prevAt, prevPoints = step.AtLeast, step.Points
	}
	return nil
}

// ScoringTable maps category counts to sub-scores.
type ScoringTable struct {
	Length    ScoreSteps
	Digits    ScoreSteps
	Symbols   ScoreSteps
	Lowercase ScoreSteps
	Uppercase ScoreSteps
}

// DefaultScoringTable tops out at 20+20+25+10+25 = 100 points.
func DefaultScoringTable() ScoringTable {
	return ScoringTable{
		Length:    ScoreSteps{{AtLeast: 1, Points: 5}, {AtLeast: 5, Points: 10}, {AtLeast: 9, Points: 20}},
		Digits:    ScoreSteps{{AtLeast: 1, Points: 10}, {AtLeast: 2, Points: 15}, {AtLeast: 3, Points: 20}},
		Symbols:   ScoreSteps{{AtLeast: 1, Points: 15}, {AtLeast: 2, Points: 20}, {AtLeast: 3, Points: 25}},
		Lowercase: ScoreSteps{{AtLeast: 1, Points: 5}, {AtLeast: 2, Points: 7}, {AtLeast: 3, Points: 10}},
		Uppercase: ScoreSteps{{AtLeast: 1, Points: 10}, {AtLeast: 2, Points: 15}, {AtLeast: 3, Points: 25}},
	}
}

// Validate ensures every category is ascending in both threshold and points.
func (t ScoringTable) Validate() error {
	for _, c := range []struct {
		name  string
		steps ScoreSteps
	}{
		{"length", t.Length},
		{"digits", t.Digits},
		{"symbols", t.Symbols},
		{"lowercase", t.Lowercase},
		{"uppercase", t.Uppercase},
	} {
		if err := c.steps.validate(c.name); err != nil {
			return err
		}
	}
	return nil
}

// Breakdown converts counts into per-category sub-scores.
func (t ScoringTable) Breakdown(counts domain.CharacterCounts) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{
		Length:    t.Length.Points(counts.Length),
		Digits:    t.Digits.Points(counts.Digits),
		Symbols:   t.Symbols.Points(counts.Symbols),
		Lowercase: t.Lowercase.Points(counts.Lowercase),
		Uppercase: t.Uppercase.Points(counts.Uppercase),
	}
}

// levelThresholds is ordered from the strongest level down.
var levelThresholds = []struct {
	min   int
	level domain.StrengthLevel
}{
	{100, domain.StrengthVerySecure},
	{90, domain.StrengthSecure},
	{80, domain.StrengthVeryStrong},
	{70, domain.StrengthStrong},
	{60, domain.StrengthAverage},
	{50, domain.StrengthWeak},
}

// LevelForScore maps a total score to its strength level.
func LevelForScore(total int) domain.StrengthLevel {
	for _, th := range levelThresholds {
		if total >= th.min {
			return th.level
		}
	}
	return domain.StrengthVeryWeak
}

// MinScoreForLevel returns the lowest total that reaches level.
func MinScoreForLevel(level domain.StrengthLevel) int {
	for _, th := range levelThresholds {
		if th.level == level {
			return th.min
		}
	}
	return 0
}

// LevelBands lists the score range of every level, weakest first.
func LevelBands() []domain.LevelBand {
	bands := make([]domain.LevelBand, 0, len(levelThresholds)+1)
	upper := -1
	for _, th := range levelThresholds {
		band := domain.LevelBand{Level: th.level, MinScore: th.min}
		if upper >= 0 {
			max := upper - 1
			band.MaxScore = &max
		}
		upper = th.min
		bands = append(bands, band)
	}
	max := upper - 1
	bands = append(bands, domain.LevelBand{Level: domain.StrengthVeryWeak, MinScore: 0, MaxScore: &max})

	for i, j := 0, len(bands)-1; i < j; i, j = i+1, j-1 {
		bands[i], bands[j] = bands[j], bands[i]
	}
	return bands
}

// Classifier scores passwords against a fixed table. It is immutable and safe for concurrent use.
type Classifier struct {
	table ScoringTable
}

// NewClassifier returns a classifier using DefaultScoringTable.
func NewClassifier() *Classifier {
	return &Classifier{table: DefaultScoringTable()}
}

// NewClassifierWithTable returns a classifier for a custom table after validating it.
func NewClassifierWithTable(table ScoringTable) (*Classifier, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring table: %w", err)
	}
	return &Classifier{table: table}, nil
}

// Score returns the sub-scores for the password.
func (c *Classifier) Score(password string) domain.ScoreBreakdown {
	return c.table.Breakdown(CountCharacters(password))
}

// Evaluate returns counts, sub-scores and level in one pass.
func (c *Classifier) Evaluate(password string) (domain.CharacterCounts, domain.ScoreBreakdown, domain.StrengthLevel) {
	counts := CountCharacters(password)
	breakdown := c.table.Breakdown(counts)
	return counts, breakdown, LevelForScore(breakdown.Total())
}

// Classify returns the strength level of the password.
func (c *Classifier) Classify(password string) domain.StrengthLevel {
	return LevelForScore(c.Score(password).Total())
}

var defaultClassifier = NewClassifier()

// Classify rates a password with the default scoring table.
func Classify(password string) domain.StrengthLevel {
	return defaultClassifier.Classify(password)
}
