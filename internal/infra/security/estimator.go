package security

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/arklim/passmeter/internal/core/domain"
)

// Estimator produces a zxcvbn estimate alongside the classifier result.
type Estimator struct{}

// NewEstimator constructs a zxcvbn-backed estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate scores the password, penalising fragments of the supplied user inputs.
func (e *Estimator) Estimate(password string, userInputs []string) domain.Estimate {
	result := zxcvbn.PasswordStrength(password, userInputs)
	return domain.Estimate{
		Score:            result.Score,
		Entropy:          result.Entropy,
		CrackTimeSeconds: result.CrackTime,
		CrackTimeDisplay: result.CrackTimeDisplay,
	}
}
