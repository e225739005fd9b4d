package processor

import (
	"fmt"
	"testing"

	"brandpulse/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_KeywordsAndThemes(t *testing.T) {
	texts := []string{
		"the new charger from Acme Corp is expensive, but reliable",
		"we met Wile Coyote at the expo. Acme Corp announced a recall",
		"is Acme Corp too expensive?",
	}

	keywords, themes := NewFrequencyExtractor().Extract(texts)

	require.NotEmpty(t, keywords)
	assert.Equal(t, Term{Text: "Acme Corp", Count: 3}, keywords[0])
	assert.Contains(t, keywords, Term{Text: "Wile Coyote", Count: 1})

	require.NotEmpty(t, themes)
	assert.Equal(t, Term{Text: "expensive", Count: 2}, themes[0])
	assert.Contains(t, themes, Term{Text: "reliable", Count: 1})
	assert.Contains(t, themes, Term{Text: "recall", Count: 1})
}

func TestExtract_TopNAndTieOrder(t *testing.T) {
	var texts []string
	for i := 0; i < 20; i++ {
		texts = append(texts, fmt.Sprintf("about Brand%02d today", i))
	}
	texts = append(texts, "about Brand19 again")

	keywords, _ := NewFrequencyExtractor().Extract(texts)
	require.Len(t, keywords, TopN)
	assert.Equal(t, "Brand19", keywords[0].Text)
	assert.Equal(t, "Brand00", keywords[1].Text)
	assert.Equal(t, "Brand01", keywords[2].Text)
}

func TestExtract_Empty(t *testing.T) {
	keywords, themes := NewFrequencyExtractor().Extract(nil)
	assert.Empty(t, keywords)
	assert.Empty(t, themes)
}

func TestPredict(t *testing.T) {
	c := NewLexiconClassifier()

	tests := []struct {
		text string
		want Label
	}{
		{"Great product, I love it!", Positive},
		{"Terrible support and a broken app.", Negative},
		{"The company released its quarterly report.", Neutral},
		{"This is not good", Negative},
		{"Never disappointing", Positive},
		{"good but bad", Neutral},
		{"", Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Predict(tt.text))
		})
	}
}

func TestTally(t *testing.T) {
	got := Tally(NewLexiconClassifier(), []string{"great", "awful", "fine", "excellent"})
	assert.Equal(t, model.SentimentCounts{Positive: 2, Neutral: 1, Negative: 1}, got)
}
