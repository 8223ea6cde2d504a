package security

import "testing"

func TestEstimatorRanksPasswords(t *testing.T) {
	estimator := NewEstimator()

	weak := estimator.Estimate("password", nil)
	strong := estimator.Estimate("C0mplex!Passphrase#2025", nil)

	if weak.Score >= strong.Score {
		t.Fatalf("expected weak score %d below strong score %d", weak.Score, strong.Score)
	}
	if strong.Score < 0 || strong.Score > 4 {
		t.Fatalf("zxcvbn score out of range: %d", strong.Score)
	}
	if strong.CrackTimeDisplay == "" {
		t.Fatalf("expected crack time display")
	}
}

func TestEstimatorPenalisesUserInputs(t *testing.T) {
	estimator := NewEstimator()

	without := estimator.Estimate("jonathanmiller1987", nil)
	with := estimator.Estimate("jonathanmiller1987", []string{"jonathanmiller1987"})

	if with.Entropy >= without.Entropy {
		t.Fatalf("expected user inputs to lower entropy: %f >= %f", with.Entropy, without.Entropy)
	}
}
