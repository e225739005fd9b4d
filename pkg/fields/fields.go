// Package fields maps logical document attributes to the physical field names
// that carry them across the legacy and current document shapes.
package fields

import "go.mongodb.org/mongo-driver/bson"

type Attr string

const (
	Identity    Attr = "identity"
	Source      Attr = "source"
	Keyword     Attr = "keyword"
	Count       Attr = "count"
	Theme       Attr = "theme"
	DisplayName Attr = "display_name"
	Text        Attr = "text"
)

// Field names in priority order. The first present one wins.
var table = map[Attr][]string{
	Identity:    {"company_id", "company", "companyId"},
	Source:      {"source", "type", "platform", "channel", "category", "sourceType"},
	Keyword:     {"keyword", "word", "term", "key", "name"},
	Count:       {"count", "frequency", "freq", "value", "n"},
	Theme:       {"theme"},
	DisplayName: {"Name", "display_name", "name"},
	Text:        {"text", "title", "description", "content"},
}

// Names returns a copy of the physical field names for attr.
func Names(attr Attr) []string {
	names := table[attr]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// First returns the value of the first physical field of attr that is
// present in doc and not nil.
func First(doc bson.M, attr Attr) (any, bool) {
	for _, name := range table[attr] {
		if v, ok := doc[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// FirstNonEmpty is First that also skips empty strings. Zero numbers count
// as present.
func FirstNonEmpty(doc bson.M, attr Attr) (any, bool) {
	for _, name := range table[attr] {
		switch v := doc[name].(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
		}
		return doc[name], true
	}
	return nil, false
}

// FirstString is First restricted to non-empty string values. Fields holding
// other types are skipped.
func FirstString(doc bson.M, attr Attr) (string, bool) {
	for _, name := range table[attr] {
		if s, ok := doc[name].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
