// Package storetest is an in-memory stand-in for the document store used by
// repository fakes in tests. It understands the subset of the query language
// the repositories emit: $and, $or, $in, $regex with $options, $gte, $lte and
// plain equality.
package storetest

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DB struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	failures    map[string]error
	unavailable bool
}

func NewDB() *DB {
	return &DB{
		collections: make(map[string][]bson.M),
		failures:    make(map[string]error),
	}
}

// Insert appends documents, assigning an increasing ObjectID to any document
// without one.
func (d *DB) Insert(collection string, docs ...bson.M) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, doc := range docs {
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID()
		}
		d.collections[collection] = append(d.collections[collection], doc)
	}
}

// Fail makes every operation on collection return err.
func (d *DB) Fail(collection string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[collection] = err
}

// SetUnavailable makes every operation return store.ErrUnavailable.
func (d *DB) SetUnavailable(unavailable bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unavailable = unavailable
}

func (d *DB) Available() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !d.unavailable
}

func (d *DB) check(collection string) error {
	if d.unavailable {
		return fmt.Errorf("%w: missing_uri", store.ErrUnavailable)
	}
	if err := d.failures[collection]; err != nil {
		return err
	}
	return nil
}

// Docs returns copies of every document in collection, in insertion order.
func (d *DB) Docs(collection string) []bson.M {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]bson.M, 0, len(d.collections[collection]))
	for _, doc := range d.collections[collection] {
		out = append(out, copyDoc(doc))
	}
	return out
}

// Find returns matching documents ordered by sortField (descending when desc)
// and capped at limit when limit > 0. Ties on sortField are broken by _id in
// the same direction.
func (d *DB) Find(collection string, filter bson.M, sortField string, desc bool, limit int64) ([]bson.M, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.check(collection); err != nil {
		return nil, err
	}

	var out []bson.M
	for _, doc := range d.collections[collection] {
		if Match(doc, filter) {
			out = append(out, copyDoc(doc))
		}
	}

	if sortField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][sortField], out[j][sortField])
			if c == 0 && sortField != "_id" {
				c = compare(out[i]["_id"], out[j]["_id"])
			}
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *DB) Count(collection string, filter bson.M) (int64, error) {
	docs, err := d.Find(collection, filter, "", false, 0)
	return int64(len(docs)), err
}

func (d *DB) Distinct(collection, field string) ([]any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.check(collection); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []any
	for _, doc := range d.collections[collection] {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprint(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out, nil
}

// Upsert applies $set and $setOnInsert to the first document matching
// filter, inserting one when none matches.
func (d *DB) Upsert(collection string, filter bson.M, update bson.M) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(collection); err != nil {
		return err
	}

	for _, doc := range d.collections[collection] {
		if Match(doc, filter) {
			applyOps(doc, update, false)
			return nil
		}
	}

	doc := bson.M{"_id": primitive.NewObjectID()}
	for k, v := range filter {
		if !strings.HasPrefix(k, "$") {
			doc[k] = v
		}
	}
	applyOps(doc, update, true)
	d.collections[collection] = append(d.collections[collection], doc)
	return nil
}

func applyOps(doc bson.M, update bson.M, inserted bool) {
	if set, ok := update["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inserted {
		if set, ok := update["$setOnInsert"].(bson.M); ok {
			for k, v := range set {
				doc[k] = v
			}
		}
	}
	if inc, ok := update["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := toFloat(doc[k])
			add, _ := toFloat(v)
			doc[k] = int(cur + add)
		}
	}
}

// Match reports whether doc satisfies filter.
func Match(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range asFilters(cond) {
				if !Match(doc, sub) {
					return false
				}
			}
		case "$or":
			matched := false
			for _, sub := range asFilters(cond) {
				if Match(doc, sub) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		default:
			if !matchField(doc, key, cond) {
				return false
			}
		}
	}
	return true
}

func asFilters(v any) []bson.M {
	var out []bson.M
	switch list := v.(type) {
	case bson.A:
		for _, item := range list {
			if m, ok := item.(bson.M); ok {
				out = append(out, m)
			}
		}
	case []bson.M:
		out = list
	}
	return out
}

func matchField(doc bson.M, field string, cond any) bool {
	value, present := doc[field]

	ops, isOps := cond.(bson.M)
	if !isOps {
		return present && compare(value, cond) == 0
	}

	for op, arg := range ops {
		switch op {
		case "$in":
			if !present || !inList(value, arg) {
				return false
			}
		case "$regex":
			s, ok := value.(string)
			if !ok {
				return false
			}
			pattern := arg.(string)
			if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			if !regexp.MustCompile(pattern).MatchString(s) {
				return false
			}
		case "$options":
		case "$gte":
			if !present || compare(value, arg) < 0 {
				return false
			}
		case "$lte":
			if !present || compare(value, arg) > 0 {
				return false
			}
		case "$exists":
			if want, _ := arg.(bool); want != present {
				return false
			}
		default:
			panic("storetest: unsupported operator " + op)
		}
	}
	return true
}

func inList(value any, list any) bool {
	switch l := list.(type) {
	case []string:
		for _, item := range l {
			if compare(value, item) == 0 {
				return true
			}
		}
	case bson.A:
		for _, item := range l {
			if compare(value, item) == 0 {
				return true
			}
		}
	case []any:
		for _, item := range l {
			if compare(value, item) == 0 {
				return true
			}
		}
	}
	return false
}

func compare(a, b any) int {
	if ao, ok := a.(primitive.ObjectID); ok {
		if bo, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(ao[:], bo[:])
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
