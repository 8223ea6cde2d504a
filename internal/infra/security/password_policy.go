package security

import (
	"fmt"
	"strings"

	"github.com/arklim/passmeter/internal/core/domain"
)

const (
	defaultMinPasswordLength   = 10
	defaultMaxPasswordLength   = 256
	defaultMinCharacterClasses = 3
	defaultMinZxcvbnScore      = 3
	defaultMinStrengthLevel    = domain.StrengthStrong
)

// PolicyConfig holds the thresholds enforced by PasswordPolicy.
type PolicyConfig struct {
	MinLength           int
	MaxLength           int
	MinCharacterClasses int
	MinZxcvbnScore      int
	MinLevel            domain.StrengthLevel
}

// DefaultPolicyConfig returns the built-in thresholds.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MinLength:           defaultMinPasswordLength,
		MaxLength:           defaultMaxPasswordLength,
		MinCharacterClasses: defaultMinCharacterClasses,
		MinZxcvbnScore:      defaultMinZxcvbnScore,
		MinLevel:            defaultMinStrengthLevel,
	}
}

// DefaultPasswordValidator returns the built-in validator enforcing length, character class,
// classifier level and zxcvbn strength checks.
func DefaultPasswordValidator() *PasswordValidator {
	return newPolicyValidator(DefaultPolicyConfig(), defaultClassifier, NewEstimator())
}

func newPolicyValidator(cfg PolicyConfig, classifier *Classifier, estimator *Estimator, userInputs ...string) *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(cfg.MinLength),
		MaxLengthRule(cfg.MaxLength),
		RequireCharacterClassesRule(cfg.MinCharacterClasses),
		MinStrengthLevelRule(classifier, cfg.MinLevel),
		RequirePasswordStrengthRule(estimator, cfg.MinZxcvbnScore, userInputs...),
	)
}

// PasswordPolicy validates passwords against the configured thresholds, feeding
// user attributes to zxcvbn so passwords built from them are rejected.
type PasswordPolicy struct {
	cfg        PolicyConfig
	classifier *Classifier
	estimator  *Estimator
}

// NewPasswordPolicy builds a policy from cfg. A nil classifier uses the default table.
func NewPasswordPolicy(cfg PolicyConfig, classifier *Classifier) *PasswordPolicy {
	if classifier == nil {
		classifier = defaultClassifier
	}
	if !cfg.MinLevel.Valid() {
		cfg.MinLevel = defaultMinStrengthLevel
	}
	return &PasswordPolicy{cfg: cfg, classifier: classifier, estimator: NewEstimator()}
}

// Config returns the thresholds the policy enforces.
func (p *PasswordPolicy) Config() PolicyConfig {
	if p == nil {
		return DefaultPolicyConfig()
	}
	return p.cfg
}

// Validate applies the policy and returns the first *PasswordValidationError encountered.
func (p *PasswordPolicy) Validate(password string, ctx domain.PasswordContext) error {
	if p == nil {
		return fmt.Errorf("password policy not configured")
	}

	validator := newPolicyValidator(p.cfg, p.classifier, p.estimator, UserInputs(ctx)...)
	return validator.Validate(password)
}

// UserInputs flattens the non-empty attributes of ctx.
func UserInputs(ctx domain.PasswordContext) []string {
	inputs := make([]string, 0, 3)
	if trimmed := strings.TrimSpace(ctx.Username); trimmed != "" {
		inputs = append(inputs, trimmed)
	}
	if trimmed := strings.TrimSpace(ctx.Email); trimmed != "" {
		inputs = append(inputs, trimmed)
	}
	if ctx.Phone != nil {
		if trimmed := strings.TrimSpace(*ctx.Phone); trimmed != "" {
			inputs = append(inputs, trimmed)
		}
	}
	return inputs
}
