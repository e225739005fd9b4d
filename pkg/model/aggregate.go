package model

// SentimentCounts is the per-label tally of one daily snapshot.
type SentimentCounts struct {
	Positive int `json:"positive" bson:"positive"`
	Neutral  int `json:"neutral" bson:"neutral"`
	Negative int `json:"negative" bson:"negative"`
}

func (c SentimentCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

type SentimentSnapshot struct {
	CompanyID string `json:"company_id" bson:"company_id"`
	Date      string `json:"date" bson:"date"`

	SentimentCounts `bson:",inline"`
}

// KeywordRecord and ThemeRecord are the shapes the analysis runner writes.
// Readers do not assume them: legacy rows use other field names.
type KeywordRecord struct {
	CompanyID string `bson:"company_id"`
	Date      string `bson:"date"`
	Keyword   string `bson:"keyword"`
	Count     int    `bson:"count"`
}

type ThemeRecord struct {
	CompanyID string `bson:"company_id"`
	Date      string `bson:"date"`
	Theme     string `bson:"theme"`
	Count     int    `bson:"count"`
}

// DateLayout is the day key used by all aggregate collections.
const DateLayout = "2006-01-02"
