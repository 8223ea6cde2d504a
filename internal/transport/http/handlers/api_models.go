package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/passmeter/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// NewCodedErrorResponse creates an error response carrying a machine readable code.
func NewCodedErrorResponse(c *gin.Context, code, errorMsg string) ErrorResponse {
	resp := NewErrorResponse(c, errorMsg)
	resp.Code = code
	return resp
}

// StrengthRequest is the payload of the strength endpoint.
type StrengthRequest struct {
	Password   string   `json:"password"`
	UserInputs []string `json:"user_inputs"`
}

// CharacterCountsResponse lists the per-category character counts.
type CharacterCountsResponse struct {
	Length    int `json:"length"`
	Digits    int `json:"digits"`
	Symbols   int `json:"symbols"`
	Lowercase int `json:"lowercase"`
	Uppercase int `json:"uppercase"`
}

// ScoreBreakdownResponse lists the points awarded per category.
type ScoreBreakdownResponse struct {
	Length    int `json:"length"`
	Digits    int `json:"digits"`
	Symbols   int `json:"symbols"`
	Lowercase int `json:"lowercase"`
	Uppercase int `json:"uppercase"`
}

// EstimateResponse carries the zxcvbn estimate.
type EstimateResponse struct {
	Score            int     `json:"score"`
	Entropy          float64 `json:"entropy"`
	CrackTimeSeconds float64 `json:"crack_time_seconds"`
	CrackTimeDisplay string  `json:"crack_time_display"`
}

// StrengthResponse is returned by the strength endpoint.
type StrengthResponse struct {
	Level       string                  `json:"level" example:"very_strong"`
	Score       int                     `json:"score" example:"80"`
	Breakdown   ScoreBreakdownResponse  `json:"breakdown"`
	Counts      CharacterCountsResponse `json:"counts"`
	Estimate    EstimateResponse        `json:"estimate"`
	Cached      bool                    `json:"cached"`
	EvaluatedAt time.Time               `json:"evaluated_at"`
}

// ValidateRequest is the payload of the validate endpoint.
type ValidateRequest struct {
	Password string  `json:"password"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
}

// ValidateResponse is returned when the password satisfies the policy.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Level string `json:"level" example:"strong"`
}

// LevelBandResponse describes the score range of a level. MaxScore is omitted for the top band.
type LevelBandResponse struct {
	Level    string `json:"level"`
	MinScore int    `json:"min_score"`
	MaxScore *int   `json:"max_score,omitempty"`
}

// LevelsResponse lists every level, weakest first.
type LevelsResponse struct {
	Levels []LevelBandResponse `json:"levels"`
}

// StatsResponse reports how many recorded evaluations fell into each level.
type StatsResponse struct {
	Since        *time.Time     `json:"since,omitempty"`
	Total        int            `json:"total"`
	Distribution map[string]int `json:"distribution"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse reports the outcome of each dependency check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func newStrengthResponse(evaluation domain.Evaluation, cached bool) StrengthResponse {
	return StrengthResponse{
		Level: evaluation.Level.String(),
		Score: evaluation.Score(),
		Breakdown: ScoreBreakdownResponse{
			Length:    evaluation.Breakdown.Length,
			Digits:    evaluation.Breakdown.Digits,
			Symbols:   evaluation.Breakdown.Symbols,
			Lowercase: evaluation.Breakdown.Lowercase,
			Uppercase: evaluation.Breakdown.Uppercase,
		},
		Counts: CharacterCountsResponse{
			Length:    evaluation.Counts.Length,
			Digits:    evaluation.Counts.Digits,
			Symbols:   evaluation.Counts.Symbols,
			Lowercase: evaluation.Counts.Lowercase,
			Uppercase: evaluation.Counts.Uppercase,
		},
		Estimate: EstimateResponse{
			Score:            evaluation.Estimate.Score,
			Entropy:          evaluation.Estimate.Entropy,
			CrackTimeSeconds: evaluation.Estimate.CrackTimeSeconds,
			CrackTimeDisplay: evaluation.Estimate.CrackTimeDisplay,
		},
		Cached:      cached,
		EvaluatedAt: evaluation.EvaluatedAt,
	}
}

func newLevelsResponse(bands []domain.LevelBand) LevelsResponse {
	levels := make([]LevelBandResponse, 0, len(bands))
	for _, band := range bands {
		levels = append(levels, LevelBandResponse{
			Level:    band.Level.String(),
			MinScore: band.MinScore,
			MaxScore: band.MaxScore,
		})
	}
	return LevelsResponse{Levels: levels}
}

func newStatsResponse(since time.Time, distribution map[domain.StrengthLevel]int) StatsResponse {
	resp := StatsResponse{Distribution: make(map[string]int, len(distribution))}
	if !since.IsZero() {
		utc := since.UTC()
		resp.Since = &utc
	}
	for level, count := range distribution {
		resp.Distribution[level.String()] = count
		resp.Total += count
	}
	return resp
}
