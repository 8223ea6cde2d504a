package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ErrorCase maps a sentinel error to a status, an optional code and a message.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// RespondWithMappedError writes the first matching case, or the fallback when none match.
// Unmatched errors are attached to the gin context so the request logger records them.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewCodedErrorResponse(c, cs.Code, cs.Message))
			return
		}
	}

	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
