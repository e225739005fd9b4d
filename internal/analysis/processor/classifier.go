package processor

import (
	"strings"

	"brandpulse/pkg/model"
)

type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

type Classifier interface {
	Predict(text string) Label
}

// LexiconClassifier scores text by counting positive and negative words. A
// negator ("not", "never", ...) flips the polarity of the word after it.
type LexiconClassifier struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		positive: toSet(positiveWords),
		negative: toSet(negativeWords),
	}
}

func (c *LexiconClassifier) Predict(text string) Label {
	score := 0
	negate := false
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(raw, isEdgePunct)
		if word == "" {
			continue
		}
		if isNegator(word) {
			negate = true
			continue
		}

		polarity := 0
		if _, ok := c.positive[word]; ok {
			polarity = 1
		} else if _, ok := c.negative[word]; ok {
			polarity = -1
		}
		if negate {
			polarity = -polarity
			negate = false
		}
		score += polarity
	}

	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// Tally labels every text and counts the results.
func Tally(c Classifier, texts []string) model.SentimentCounts {
	var counts model.SentimentCounts
	for _, text := range texts {
		switch c.Predict(text) {
		case Positive:
			counts.Positive++
		case Negative:
			counts.Negative++
		default:
			counts.Neutral++
		}
	}
	return counts
}

func isNegator(w string) bool {
	switch w {
	case "not", "no", "never", "isn't", "wasn't", "don't", "doesn't", "didn't", "can't", "won't", "without":
		return true
	}
	return false
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
