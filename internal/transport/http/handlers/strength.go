package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/infra/security"
	"github.com/arklim/passmeter/internal/usecase"
)

const (
	httpSource          = "http"
	codePasswordLength  = "password_too_long"
	codeRequestTooLarge = "request_too_large"
)

// RequestBodyLimit bounds password request bodies for the given rune limit. Every rune and
// user input may arrive as a JSON escape, so the worst case is budgeted with slack for keys.
func RequestBodyLimit(maxLength int) int64 {
	const bytesPerEscapedRune = 12
	runes := maxLength + usecase.MaxUserInputs*usecase.MaxUserInputLength
	return int64(runes*bytesPerEscapedRune) + 1024
}

// StrengthHandler exposes password strength endpoints.
type StrengthHandler struct {
	service *usecase.StrengthService
}

// NewStrengthHandler constructs a StrengthHandler.
func NewStrengthHandler(service *usecase.StrengthService) *StrengthHandler {
	return &StrengthHandler{service: service}
}

// RegisterRoutes mounts the password endpoints. Limited routes run behind the supplied middlewares.
func (h *StrengthHandler) RegisterRoutes(group *gin.RouterGroup, evaluate, validate []gin.HandlerFunc) {
	group.POST("/strength", append(append([]gin.HandlerFunc{}, evaluate...), h.Evaluate)...)
	group.POST("/validate", append(append([]gin.HandlerFunc{}, validate...), h.Validate)...)
	group.GET("/levels", h.Levels)
	group.GET("/stats", h.Stats)
}

// Evaluate godoc
// @Summary Evaluate password strength
// @Description Classifies the password into one of seven levels and reports the score breakdown with a zxcvbn estimate. The password is never stored.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body StrengthRequest true "Password to evaluate"
// @Success 200 {object} StrengthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/strength [post]
func (h *StrengthHandler) Evaluate(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "strength service not configured"))
		return
	}

	var req StrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "invalid strength payload")
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), usecase.EvaluateInput{
		Password:   req.Password,
		UserInputs: req.UserInputs,
		Source:     httpSource,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPasswordTooLong, Status: http.StatusRequestEntityTooLarge, Code: codePasswordLength, Message: "password exceeds maximum evaluated length"},
		}, http.StatusInternalServerError, "failed to evaluate password")
		return
	}

	c.JSON(http.StatusOK, newStrengthResponse(result.Evaluation, result.Cached))
}

// Validate godoc
// @Summary Validate a password against the policy
// @Description Applies the configured policy (length, character classes, minimum level, zxcvbn score). User attributes are used to reject passwords derived from them.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Password and user attributes"
// @Success 200 {object} ValidateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/validate [post]
func (h *StrengthHandler) Validate(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "strength service not configured"))
		return
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "invalid validate payload")
		return
	}

	result, err := h.service.Validate(c.Request.Context(), usecase.ValidateInput{
		Password: req.Password,
		Context: domain.PasswordContext{
			Username: req.Username,
			Email:    req.Email,
			Phone:    req.Phone,
		},
		Source: httpSource,
	})
	if err != nil {
		var violation *security.PasswordValidationError
		if errors.As(err, &violation) {
			c.JSON(http.StatusUnprocessableEntity, NewCodedErrorResponse(c, violation.Code, violation.Message))
			return
		}
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to validate password")
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{Valid: true, Level: result.Level.String()})
}

func respondBindError(c *gin.Context, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, NewCodedErrorResponse(c, codeRequestTooLarge, "request body too large"))
		return
	}
	c.JSON(http.StatusBadRequest, NewErrorResponse(c, message))
}

// Levels godoc
// @Summary List strength levels
// @Description Returns every strength level with its score range, weakest first.
// @Tags Password
// @Produce json
// @Success 200 {object} LevelsResponse
// @Router /api/v1/password/levels [get]
func (h *StrengthHandler) Levels(c *gin.Context) {
	var bands []domain.LevelBand
	if h.service != nil {
		bands = h.service.Levels()
	} else {
		bands = security.LevelBands()
	}
	c.JSON(http.StatusOK, newLevelsResponse(bands))
}

// Stats godoc
// @Summary Strength level distribution
// @Description Counts recorded evaluations per level, optionally since an RFC 3339 instant.
// @Tags Password
// @Produce json
// @Param since query string false "Lower bound (RFC 3339)"
// @Success 200 {object} StatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/stats [get]
func (h *StrengthHandler) Stats(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "strength service not configured"))
		return
	}

	var since time.Time
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "since must be an RFC 3339 timestamp"))
			return
		}
		since = parsed
	}

	distribution, err := h.service.Distribution(c.Request.Context(), since)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrStatsUnavailable, Status: http.StatusServiceUnavailable, Message: "evaluation statistics unavailable"},
		}, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	c.JSON(http.StatusOK, newStatsResponse(since, distribution))
}
