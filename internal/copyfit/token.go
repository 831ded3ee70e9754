package copyfit

import "strings"

// EstimateTokens gives a rough token count for a word budget, at about 1.33
// tokens per English word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// TokensForWords converts a word budget into a completion token ceiling,
// with headroom for punctuation and formatting the model may add.
func TokensForWords(words int) int {
	return max(16, int(float64(words)*1.33)*2)
}
