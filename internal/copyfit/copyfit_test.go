package copyfit

import (
	"strings"
	"testing"

	"github.com/dgallion1/designmark/internal/doctree"
)

// box50 holds two lines of 25 characters at the default typography.
var box50 = doctree.R(0, 0, 200, 45)

func TestCapacity(t *testing.T) {
	if got := Capacity(box50, DefaultConfig()); got != 50 {
		t.Errorf("Capacity = %d, want 50", got)
	}
	if got := Capacity(doctree.R(0, 0, 200, 5), DefaultConfig()); got != 25 {
		t.Errorf("short box should still hold one line, got %d", got)
	}
	if got := Capacity(doctree.Rect{}, DefaultConfig()); got != 0 {
		t.Errorf("empty box capacity = %d", got)
	}
}

func TestWordBudget(t *testing.T) {
	tests := []struct {
		name string
		box  doctree.Rect
		want int
	}{
		{"two lines", box50, 8},
		{"tiny", doctree.R(0, 0, 10, 10), 2},
		{"huge", doctree.R(0, 0, 4000, 4000), 120},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WordBudget(tc.box, Config{}); got != tc.want {
				t.Errorf("WordBudget = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFitShortTextUnchanged(t *testing.T) {
	if got := Fit("  Sign up today  ", box50, DefaultConfig()); got != "Sign up today" {
		t.Errorf("Fit = %q", got)
	}
}

func TestFitKeepsWholeSentences(t *testing.T) {
	text := "Fast setup. Works offline everywhere you go. Free forever for small teams."
	want := "Fast setup. Works offline everywhere you go."
	if got := Fit(text, box50, DefaultConfig()); got != want {
		t.Errorf("Fit = %q, want %q", got, want)
	}
}

func TestFitCutsLongSentence(t *testing.T) {
	text := strings.Repeat("lorem ", 40)
	got := Fit(text, box50, DefaultConfig())
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if len(got) > 50 {
		t.Errorf("fitted copy is %d bytes, capacity 50", len(got))
	}
	if strings.Contains(got, "lor…") {
		t.Errorf("cut inside a word: %q", got)
	}
}

func TestFitCollapsesParagraphWhitespace(t *testing.T) {
	text := "One\n  two.\n\nThree four five six seven eight nine ten eleven twelve."
	got := Fit(text, box50, DefaultConfig())
	if got != "One two." {
		t.Errorf("Fit = %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Hi there. How are you? Fine!")
	want := []string{"Hi there.", "How are you?", "Fine!"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("empty text should be zero tokens")
	}
	if got := EstimateTokens("a"); got != 1 {
		t.Errorf("single word = %d tokens, want 1", got)
	}
	if got := EstimateTokens(strings.Repeat("word ", 100)); got != 133 {
		t.Errorf("100 words = %d tokens, want 133", got)
	}
	if got := TokensForWords(8); got != 20 {
		t.Errorf("TokensForWords(8) = %d, want 20", got)
	}
}
