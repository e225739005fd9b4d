package model

// Collection names in the brand_analyzer database.
const (
	CollectionMentions        = "mentions"
	CollectionNewsMentions    = "news_mentions"
	CollectionRedditMentions  = "reddit_mentions"
	CollectionTwitterMentions = "twitter_mentions"
	CollectionCompanies       = "companies"
	CollectionCompanyProfiles = "company_profiles"
	CollectionSentiments      = "sentiments"
	CollectionKeywords        = "keywords"
	CollectionThemes          = "themes"
	CollectionAnalysisTasks   = "analysis_tasks"
)

// MentionCollections lists the consolidated collection followed by the
// per-source collections written by older pipelines.
func MentionCollections() []string {
	return []string{
		CollectionMentions,
		CollectionNewsMentions,
		CollectionRedditMentions,
		CollectionTwitterMentions,
	}
}

// DataCollections are the collections a company identifier can be derived
// from when the directory is empty.
func DataCollections() []string {
	return []string{
		CollectionSentiments,
		CollectionMentions,
		CollectionNewsMentions,
		CollectionRedditMentions,
		CollectionTwitterMentions,
		CollectionKeywords,
		CollectionThemes,
	}
}

// StatsCollections are reported by the readiness probe.
func StatsCollections() []string {
	return []string{
		CollectionCompanyProfiles,
		CollectionCompanies,
		CollectionMentions,
		CollectionSentiments,
		CollectionNewsMentions,
		CollectionRedditMentions,
		CollectionTwitterMentions,
		CollectionKeywords,
		CollectionThemes,
		CollectionAnalysisTasks,
	}
}
