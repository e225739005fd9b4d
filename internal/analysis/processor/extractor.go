// Package processor turns scraped text into keyword, theme and sentiment
// aggregates.
package processor

import (
	"sort"
	"strings"
	"unicode"
)

// TopN is how many keywords and themes one run keeps.
const TopN = 15

type Term struct {
	Text  string
	Count int
}

type Extractor interface {
	Extract(texts []string) (keywords, themes []Term)
}

// FrequencyExtractor treats runs of capitalized words as named keywords
// ("Elon Musk", "Model Y") and known descriptive adjectives as themes.
type FrequencyExtractor struct {
	limit      int
	adjectives map[string]struct{}
}

func NewFrequencyExtractor() *FrequencyExtractor {
	adjectives := make(map[string]struct{}, len(themeWords)+len(positiveWords)+len(negativeWords))
	for _, set := range [][]string{themeWords, positiveWords, negativeWords} {
		for _, w := range set {
			adjectives[w] = struct{}{}
		}
	}
	return &FrequencyExtractor{limit: TopN, adjectives: adjectives}
}

func (e *FrequencyExtractor) Extract(texts []string) (keywords, themes []Term) {
	kw := newCounter()
	th := newCounter()

	for _, text := range texts {
		for _, sentence := range splitSentences(text) {
			words := strings.Fields(sentence)
			var phrase []string
			flush := func() {
				if len(phrase) > 0 {
					kw.add(strings.Join(phrase, " "))
					phrase = phrase[:0]
				}
			}

			for _, raw := range words {
				word := strings.TrimFunc(raw, isEdgePunct)
				if word == "" {
					flush()
					continue
				}

				lower := strings.ToLower(word)
				if _, ok := e.adjectives[lower]; ok {
					th.add(lower)
				}

				if isProperWord(word) && !isStopword(lower) {
					phrase = append(phrase, word)
				} else {
					flush()
				}

				// A trailing comma or colon ends the phrase.
				if strings.ContainsAny(raw[len(raw)-1:], ",;:") {
					flush()
				}
			}
			flush()
		}
	}

	return kw.top(e.limit), th.top(e.limit)
}

func isProperWord(w string) bool {
	first := []rune(w)[0]
	return unicode.IsUpper(first) || (unicode.IsDigit(first) && len(w) > 1 && strings.IndexFunc(w, unicode.IsLetter) >= 0)
}

func isEdgePunct(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == '|'
	})
}

// counter keeps first-seen order so ties rank by appearance.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(s string) {
	if _, ok := c.counts[s]; !ok {
		c.order = append(c.order, s)
	}
	c.counts[s]++
}

func (c *counter) top(n int) []Term {
	terms := make([]Term, 0, len(c.order))
	for _, s := range c.order {
		terms = append(terms, Term{Text: s, Count: c.counts[s]})
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Count > terms[j].Count
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
