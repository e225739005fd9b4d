package processor

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "for": {}, "from": {}, "of": {}, "to": {}, "with": {}, "as": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "it": {}, "its": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "i": {}, "we": {}, "you": {}, "he": {}, "she": {}, "they": {}, "my": {},
	"our": {}, "your": {}, "his": {}, "her": {}, "their": {}, "what": {}, "why": {}, "how": {},
	"when": {}, "where": {}, "who": {}, "will": {}, "would": {}, "can": {}, "could": {}, "should": {},
	"has": {}, "have": {}, "had": {}, "do": {}, "does": {}, "did": {}, "not": {}, "no": {}, "new": {},
	"after": {}, "before": {}, "over": {}, "says": {}, "said": {}, "just": {}, "here": {}, "there": {},
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "awesome", "best", "better", "love", "loved", "wonderful",
	"positive", "strong", "growth", "gain", "gains", "win", "wins", "success", "successful", "innovative",
	"reliable", "happy", "impressive", "profit", "profitable", "record", "beat", "beats", "upbeat", "surge",
	"soar", "soars", "rally", "boost", "improved", "improve", "fantastic", "solid", "recommend", "favorite",
}

var negativeWords = []string{
	"bad", "poor", "terrible", "awful", "worst", "worse", "hate", "hated", "negative", "weak",
	"loss", "losses", "lose", "fail", "fails", "failure", "broken", "bug", "bugs", "recall",
	"lawsuit", "scandal", "fraud", "crash", "crashes", "outage", "drop", "drops", "plunge", "decline",
	"slump", "angry", "disappointing", "disappointed", "problem", "problems", "issue", "issues", "risk", "layoffs",
}

var themeWords = []string{
	"expensive", "cheap", "affordable", "fast", "slow", "safe", "unsafe", "new", "old", "electric",
	"autonomous", "sustainable", "green", "premium", "popular", "controversial", "global", "local", "financial", "legal",
	"technical", "digital", "public", "private", "competitive", "durable", "quality", "easy", "difficult", "secure",
}
