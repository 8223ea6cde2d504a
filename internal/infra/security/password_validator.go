package security

import (
	"errors"
	"fmt"

	"github.com/arklim/passmeter/internal/core/domain"
)

// Violation codes reported by the built-in rules.
const (
	CodeMinLength        = "min_length"
	CodeMaxLength        = "max_length"
	CodeCharacterClasses = "character_classes"
	CodeSymbol           = "symbol"
	CodeStrengthLevel    = "strength_level"
	CodeWeakPassword     = "weak_password"
)

const maxZxcvbnScore = 4

// PasswordValidationError describes the rule a password failed.
type PasswordValidationError struct {
	Code    string
	Message string
}

func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func violation(code, format string, args ...any) *PasswordValidationError {
	return &PasswordValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PasswordRule checks one property of a password.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to PasswordRule.
type PasswordRuleFunc func(password string) error

func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// countRule adapts a check over character counts. Counting happens once per rule.
func countRule(check func(domain.CharacterCounts) error) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		return check(CountCharacters(password))
	})
}

// PasswordValidator runs rules in order and stops at the first violation.
type PasswordValidator struct {
	rules []PasswordRule
}

func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: append([]PasswordRule(nil), rules...)}
}

func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return errors.New("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule requires at least min characters, counted as runes.
func MinLengthRule(min int) PasswordRule {
	return countRule(func(c domain.CharacterCounts) error {
		if c.Length < min {
			return violation(CodeMinLength, "password must be at least %d characters long", min)
		}
		return nil
	})
}

// MaxLengthRule caps the password at max characters. Zero disables the cap.
func MaxLengthRule(max int) PasswordRule {
	return countRule(func(c domain.CharacterCounts) error {
		if max > 0 && c.Length > max {
			return violation(CodeMaxLength, "password must be at most %d characters long", max)
		}
		return nil
	})
}

// RequireCharacterClassesRule requires characters from at least min of the
// digit, symbol, lowercase and uppercase categories.
func RequireCharacterClassesRule(min int) PasswordRule {
	return countRule(func(c domain.CharacterCounts) error {
		if min <= 0 || characterClasses(c) >= min {
			return nil
		}
		return violation(CodeCharacterClasses, "password must include at least %d character types", min)
	})
}

// RequireSymbolRule requires at least one character from SymbolCharacters.
func RequireSymbolRule() PasswordRule {
	return countRule(func(c domain.CharacterCounts) error {
		if c.Symbols > 0 {
			return nil
		}
		return violation(CodeSymbol, "password must include at least one symbol")
	})
}

// MinStrengthLevelRule rejects passwords the classifier rates below level.
func MinStrengthLevelRule(classifier *Classifier, level domain.StrengthLevel) PasswordRule {
	if classifier == nil {
		classifier = defaultClassifier
	}
	return PasswordRuleFunc(func(password string) error {
		if level <= domain.StrengthVeryWeak || classifier.Classify(password) >= level {
			return nil
		}
		return violation(CodeStrengthLevel, "password must be rated at least %s", level)
	})
}

// RequirePasswordStrengthRule rejects passwords whose zxcvbn score is below minScore.
// userInputs are penalised as dictionary words.
func RequirePasswordStrengthRule(estimator *Estimator, minScore int, userInputs ...string) PasswordRule {
	if estimator == nil {
		estimator = NewEstimator()
	}
	minScore = min(minScore, maxZxcvbnScore)
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 || estimator.Estimate(password, userInputs).Score >= minScore {
			return nil
		}
		return violation(CodeWeakPassword, "password is too weak; choose a more complex value")
	})
}

func characterClasses(c domain.CharacterCounts) int {
	classes := 0
	for _, n := range []int{c.Digits, c.Symbols, c.Lowercase, c.Uppercase} {
		if n > 0 {
			classes++
		}
	}
	return classes
}
