// Package identity normalizes company identifiers. Legacy documents spell the
// same company in several ways ("Acme_Co", "acme co", "acme-co"), so lookups
// match against the whole family of spellings rather than a single key.
package identity

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"brandpulse/pkg/fields"

	"go.mongodb.org/mongo-driver/bson"
)

// maxRounds bounds the closure computation. The transform family reaches a
// fixed point in a handful of rounds for any realistic input.
const maxRounds = 16

var transforms = []func(string) string{
	strings.ToLower,
	func(s string) string { return strings.ReplaceAll(s, " ", "_") },
	func(s string) string { return strings.ReplaceAll(s, "_", " ") },
	func(s string) string { return strings.ReplaceAll(s, "-", "_") },
	func(s string) string { return strings.ReplaceAll(s, "_", "-") },
	func(s string) string { return strings.ReplaceAll(Title(s), " ", "_") },
	func(s string) string { return strings.ReplaceAll(Title(s), "-", "_") },
}

// Variants returns every spelling of id reachable through case folding,
// title casing and swapping between space, underscore and hyphen separators.
// The result is sorted and free of duplicates. It is closed: the variants of
// any variant are contained in the variants of id.
func Variants(id string) []string {
	seen := map[string]struct{}{id: {}}
	frontier := []string{id}

	for round := 0; round < maxRounds && len(frontier) > 0; round++ {
		var next []string
		for _, v := range frontier {
			for _, fn := range transforms {
				out := fn(v)
				// Lowercasing is applied to every derived spelling too.
				for _, candidate := range []string{out, strings.ToLower(out)} {
					if _, ok := seen[candidate]; ok {
						continue
					}
					seen[candidate] = struct{}{}
					next = append(next, candidate)
				}
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Canonical builds the stored identifier for a human supplied company name:
// "Tesla Inc" becomes "tesla_inc".
func Canonical(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// Key folds a spelling to a comparison key shared by its whole variant family.
func Key(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// DisplayName synthesizes a human readable name from an identifier:
// "acme_co" becomes "Acme Co".
func DisplayName(id string) string {
	return Title(strings.ReplaceAll(id, "_", " "))
}

// Title upper-cases the first letter of every run of letters and lower-cases
// the rest, so "acme_co" becomes "Acme_Co" and "3m corp" becomes "3M Corp".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToTitle(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// Pattern is the case-insensitive alternation used alongside the exact
// variant match. It matches the space and underscore spellings anchored and
// as substrings.
func Pattern(id string) string {
	name := regexp.QuoteMeta(strings.ReplaceAll(id, "_", " "))
	alt := regexp.QuoteMeta(strings.ReplaceAll(id, " ", "_"))
	return "^" + name + "$|^" + alt + "$|" + name + "|" + alt
}

// Filter builds the identity filter: any identity field holding one of the
// variants, or matching Pattern case-insensitively.
func Filter(id string) bson.M {
	variants := Variants(id)
	regex := bson.M{"$regex": Pattern(id), "$options": "i"}

	names := fields.Names(fields.Identity)
	or := make(bson.A, 0, 2*len(names))
	for _, name := range names {
		or = append(or, bson.M{name: bson.M{"$in": variants}})
	}
	for _, name := range names {
		or = append(or, bson.M{name: regex})
	}
	return bson.M{"$or": or}
}
