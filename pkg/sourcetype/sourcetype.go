// Package sourcetype classifies mention documents by the platform they were
// scraped from.
//
// Documents written by current scrapers carry an explicit source field. Older
// documents do not, and are classified from their URL instead. URL inference
// has a positive signal for reddit and twitter only: anything else is
// reported as news. That default is a known approximation and may mislabel
// mentions from platforms that are neither. The twitter signal is a plain
// "x.com" substring, so hosts such as netflix.com or dropbox.com are also
// reported as twitter.
package sourcetype

import (
	"regexp"
	"strings"

	"brandpulse/pkg/fields"

	"go.mongodb.org/mongo-driver/bson"
)

type Category string

const (
	News    Category = "news"
	Reddit  Category = "reddit"
	Twitter Category = "twitter"
)

var aliases = map[Category][]string{
	News:    {"news", "article"},
	Reddit:  {"reddit"},
	Twitter: {"twitter", "x"},
}

// All lists the categories in endpoint order.
func All() []Category {
	return []Category{News, Reddit, Twitter}
}

func (c Category) String() string {
	return string(c)
}

// Aliases returns the lowercase source values stored for c.
func (c Category) Aliases() []string {
	a := aliases[c]
	out := make([]string, len(a))
	copy(out, a)
	return out
}

// LegacyCollection is the per-source collection older pipelines wrote to.
func (c Category) LegacyCollection() string {
	return string(c) + "_mentions"
}

// Classify returns the lowercased value of the first non-empty source field,
// or the category inferred from the document URL when none is set.
func Classify(doc bson.M) string {
	if src, ok := fields.FirstString(doc, fields.Source); ok {
		return strings.ToLower(strings.TrimSpace(src))
	}
	url, _ := doc["url"].(string)
	return string(InferFromURL(url))
}

func InferFromURL(url string) Category {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "reddit.com"):
		return Reddit
	case strings.Contains(u, "twitter.com"), strings.Contains(u, "x.com"):
		return Twitter
	default:
		return News
	}
}

// Matches reports whether doc classifies as one of the aliases of c.
func Matches(doc bson.M, c Category) bool {
	got := Classify(doc)
	for _, a := range aliases[c] {
		if got == a {
			return true
		}
	}
	return false
}

// Filter matches documents whose source fields hold one of the aliases of c,
// compared case-insensitively. Documents without a source field never match.
func Filter(c Category) bson.M {
	names := fields.Names(fields.Source)
	or := make(bson.A, 0, len(names)*len(aliases[c]))
	for _, name := range names {
		for _, a := range aliases[c] {
			or = append(or, bson.M{name: bson.M{"$regex": "^" + regexp.QuoteMeta(a) + "$", "$options": "i"}})
		}
	}
	return bson.M{"$or": or}
}
