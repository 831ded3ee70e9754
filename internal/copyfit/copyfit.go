// Package copyfit trims generated copy so it fits the box it will fill.
package copyfit

import (
	"math"
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
)

// Config describes the typography copy is measured against.
type Config struct {
	FontSize   float64 `toml:"font_size"`   // px
	LineHeight float64 `toml:"line_height"` // multiple of FontSize
	CharWidth  float64 `toml:"char_width"`  // average glyph advance, multiple of FontSize
	MinWords   int     `toml:"min_words"`   // floor for tiny boxes
	MaxWords   int     `toml:"max_words"`   // ceiling for huge boxes
}

// DefaultConfig returns sensible defaults for body text.
func DefaultConfig() Config {
	return Config{
		FontSize:   16,
		LineHeight: 1.4,
		CharWidth:  0.5,
		MinWords:   2,
		MaxWords:   120,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.LineHeight <= 0 {
		c.LineHeight = d.LineHeight
	}
	if c.CharWidth <= 0 {
		c.CharWidth = d.CharWidth
	}
	if c.MinWords <= 0 {
		c.MinWords = d.MinWords
	}
	if c.MaxWords < c.MinWords {
		c.MaxWords = max(d.MaxWords, c.MinWords)
	}
	return c
}

// avgWordChars is the mean English word length plus its trailing space.
const avgWordChars = 6

// Capacity returns how many characters of body text box holds.
func Capacity(box doctree.Rect, cfg Config) int {
	cfg = cfg.withDefaults()
	if box.Empty() {
		return 0
	}
	lines := math.Floor(box.Height / (cfg.FontSize * cfg.LineHeight))
	perLine := math.Floor(box.Width / (cfg.FontSize * cfg.CharWidth))
	if lines < 1 {
		lines = 1
	}
	return int(lines * perLine)
}

// WordBudget returns the number of words to ask for when filling box.
func WordBudget(box doctree.Rect, cfg Config) int {
	cfg = cfg.withDefaults()
	words := Capacity(box, cfg) / avgWordChars
	return max(cfg.MinWords, min(words, cfg.MaxWords))
}

// Fit returns text trimmed to the capacity of box. Whole paragraphs and
// sentences are kept while they fit; when even the first sentence is too
// long it is cut at a word boundary and marked with an ellipsis.
func Fit(text string, box doctree.Rect, cfg Config) string {
	cfg = cfg.withDefaults()
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	limit := max(Capacity(box, cfg), cfg.MinWords*avgWordChars)
	if len(text) <= limit {
		return text
	}

	var sb strings.Builder
	for _, para := range splitByParagraphs(text) {
		for _, sent := range splitSentences(para) {
			sep := 0
			if sb.Len() > 0 {
				sep = 1
			}
			if sb.Len()+sep+len(sent) > limit {
				if sb.Len() == 0 {
					return cutWords(sent, limit)
				}
				return sb.String()
			}
			if sep > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(sent)
		}
	}
	return sb.String()
}

// cutWords keeps the leading words of s that fit in limit bytes, leaving
// room for the ellipsis. At least one word is always kept.
func cutWords(s string, limit int) string {
	words := strings.Fields(s)
	var sb strings.Builder
	for i, w := range words {
		if i > 0 && sb.Len()+1+len(w)+len("…") > limit {
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
	}
	out := strings.TrimRight(sb.String(), ",;:.!?-")
	return out + "…"
}

// splitByParagraphs splits on blank lines and collapses inner whitespace.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
