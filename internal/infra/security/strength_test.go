package security

import (
	"strings"
	"sync"
	"testing"

	"github.com/arklim/passmeter/internal/core/domain"
)

func TestClassifyScenarios(t *testing.T) {
	cases := []struct {
		name     string
		password string
		total    int
		level    domain.StrengthLevel
	}{
		{name: "empty", password: "", total: 0, level: domain.StrengthVeryWeak},
		{name: "short lowercase", password: "aaaa", total: 15, level: domain.StrengthVeryWeak},
		{name: "dictionary style", password: "Password1", total: 50, level: domain.StrengthWeak},
		{name: "substituted", password: "P@ssw0rd!2023", total: 80, level: domain.StrengthVeryStrong},
		{name: "no lowercase", password: "ABC123!@#", total: 90, level: domain.StrengthSecure},
		{name: "every category maxed", password: "Ab1!Cd2@Ef3#", total: 100, level: domain.StrengthVerySecure},
		{name: "whitespace only", password: "    ", total: 5, level: domain.StrengthVeryWeak},
	}

	classifier := NewClassifier()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.Score(tc.password).Total(); got != tc.total {
				t.Fatalf("Score(%q) = %d, want %d", tc.password, got, tc.total)
			}
			if got := Classify(tc.password); got != tc.level {
				t.Fatalf("Classify(%q) = %s, want %s", tc.password, got, tc.level)
			}
		})
	}
}

func TestClassifierEvaluateBreakdown(t *testing.T) {
	counts, breakdown, level := NewClassifier().Evaluate("P@ssw0rd!2023")

	wantCounts := domain.CharacterCounts{Length: 13, Digits: 5, Symbols: 2, Lowercase: 5, Uppercase: 1}
	if counts != wantCounts {
		t.Fatalf("unexpected counts %+v", counts)
	}

	wantBreakdown := domain.ScoreBreakdown{Length: 20, Digits: 20, Symbols: 20, Lowercase: 10, Uppercase: 10}
	if breakdown != wantBreakdown {
		t.Fatalf("unexpected breakdown %+v", breakdown)
	}
	if level != domain.StrengthVeryStrong {
		t.Fatalf("expected very_strong, got %s", level)
	}
}

func TestDefaultScoringTableSteps(t *testing.T) {
	table := DefaultScoringTable()

	checks := []struct {
		name  string
		steps ScoreSteps
		want  map[int]int
	}{
		{"length", table.Length, map[int]int{0: 0, 1: 5, 4: 5, 5: 10, 8: 10, 9: 20, 64: 20}},
		{"digits", table.Digits, map[int]int{0: 0, 1: 10, 2: 15, 3: 20, 10: 20}},
		{"symbols", table.Symbols, map[int]int{0: 0, 1: 15, 2: 20, 3: 25, 7: 25}},
		{"lowercase", table.Lowercase, map[int]int{0: 0, 1: 5, 2: 7, 3: 10, 30: 10}},
		{"uppercase", table.Uppercase, map[int]int{0: 0, 1: 10, 2: 15, 3: 25, 9: 25}},
	}

	for _, c := range checks {
		for count, want := range c.want {
			if got := c.steps.Points(count); got != want {
				t.Fatalf("%s: Points(%d) = %d, want %d", c.name, count, got, want)
			}
		}
	}

	if err := table.Validate(); err != nil {
		t.Fatalf("default table should be valid: %v", err)
	}
}

func TestLevelForScoreThresholds(t *testing.T) {
	cases := map[int]domain.StrengthLevel{
		-5:  domain.StrengthVeryWeak,
		0:   domain.StrengthVeryWeak,
		49:  domain.StrengthVeryWeak,
		50:  domain.StrengthWeak,
		59:  domain.StrengthWeak,
		60:  domain.StrengthAverage,
		69:  domain.StrengthAverage,
		70:  domain.StrengthStrong,
		79:  domain.StrengthStrong,
		80:  domain.StrengthVeryStrong,
		89:  domain.StrengthVeryStrong,
		90:  domain.StrengthSecure,
		99:  domain.StrengthSecure,
		100: domain.StrengthVerySecure,
		250: domain.StrengthVerySecure,
	}
	for total, want := range cases {
		if got := LevelForScore(total); got != want {
			t.Fatalf("LevelForScore(%d) = %s, want %s", total, got, want)
		}
	}
}

func TestLevelBandsCoverEveryLevel(t *testing.T) {
	bands := LevelBands()
	if len(bands) != len(domain.AllStrengthLevels()) {
		t.Fatalf("expected %d bands, got %d", len(domain.AllStrengthLevels()), len(bands))
	}

	for i, band := range bands {
		if band.Level != domain.StrengthLevel(i) {
			t.Fatalf("band %d has level %s", i, band.Level)
		}
		if LevelForScore(band.MinScore) != band.Level {
			t.Fatalf("min score %d does not map to %s", band.MinScore, band.Level)
		}
		if band.MaxScore != nil && LevelForScore(*band.MaxScore) != band.Level {
			t.Fatalf("max score %d does not map to %s", *band.MaxScore, band.Level)
		}
		if MinScoreForLevel(band.Level) != band.MinScore {
			t.Fatalf("MinScoreForLevel(%s) = %d, want %d", band.Level, MinScoreForLevel(band.Level), band.MinScore)
		}
	}

	if bands[0].MinScore != 0 || *bands[0].MaxScore != 49 {
		t.Fatalf("unexpected very_weak band %+v", bands[0])
	}
	if bands[len(bands)-1].MaxScore != nil {
		t.Fatalf("top band must be open ended")
	}
}

func TestClassifyIsMonotonicPerCategory(t *testing.T) {
	classifier := NewClassifier()
	base := "Base"

	for _, extra := range []string{"x", "Q", "7", "#", " "} {
		prev := classifier.Score(base).Total()
		candidate := base
		for i := 0; i < 12; i++ {
			candidate += extra
			total := classifier.Score(candidate).Total()
			if total < prev {
				t.Fatalf("adding %q decreased score from %d to %d (%q)", extra, prev, total, candidate)
			}
			prev = total
		}
	}
}

func TestClassifyIsTotalAndDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"🔒🔒🔒🔒🔒🔒🔒🔒🔒🔒",
		"пароль",
		"ÄÖÜäöü",
		"١٢٣٤٥",
		strings.Repeat("a", 4096),
		"\x00\xff\xfe",
	}

	for _, in := range inputs {
		first := Classify(in)
		if !first.Valid() {
			t.Fatalf("Classify(%q) returned invalid level %d", in, first)
		}
		if second := Classify(in); second != first {
			t.Fatalf("Classify(%q) not deterministic: %s vs %s", in, first, second)
		}
	}
}

func TestClassifyConcurrentCallers(t *testing.T) {
	classifier := NewClassifier()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := classifier.Classify("Ab1!Cd2@Ef3#"); got != domain.StrengthVerySecure {
					t.Errorf("unexpected level %s", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewClassifierWithTableRejectsDescendingSteps(t *testing.T) {
	table := DefaultScoringTable()
	table.Digits = ScoreSteps{{AtLeast: 1, Points: 20}, {AtLeast: 2, Points: 10}}

	if _, err := NewClassifierWithTable(table); err == nil {
		t.Fatalf("expected error for descending points")
	}

	table = DefaultScoringTable()
	table.Length = ScoreSteps{{AtLeast: 5, Points: 5}, {AtLeast: 5, Points: 10}}
	if _, err := NewClassifierWithTable(table); err == nil {
		t.Fatalf("expected error for repeated threshold")
	}

	flat := ScoringTable{Length: ScoreSteps{{AtLeast: 1, Points: 100}}}
	classifier, err := NewClassifierWithTable(flat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := classifier.Classify("a"); got != domain.StrengthVerySecure {
		t.Fatalf("expected custom table to reach very_secure, got %s", got)
	}
}
