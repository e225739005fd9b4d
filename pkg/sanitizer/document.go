package sanitizer

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const InternalIDField = "_id"

// Sanitize converts a decoded store value into a transport-safe value.
func Sanitize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil
		}
		return val
	case time.Time:
		return formatTime(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return formatTime(*val)
	case primitive.DateTime:
		return formatTime(val.Time())
	case bson.M:
		return sanitizeMap(val)
	case map[string]any:
		return sanitizeMap(val)
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = Sanitize(e.Value)
		}
		return out
	case bson.A:
		return sanitizeSlice(val)
	case []any:
		return sanitizeSlice(val)
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = sanitizeMap(m)
		}
		return out
	case []bson.M:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = sanitizeMap(m)
		}
		return out
	default:
		return v
	}
}

// Document sanitizes a single top-level document. A nil document yields an
// empty map.
func Document(doc bson.M) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	return sanitizeMap(doc)
}

func Documents(docs []bson.M) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, Document(d))
	}
	return out
}

// StripInternalID removes the store primary key in place and returns doc.
func StripInternalID(doc bson.M) bson.M {
	delete(doc, InternalIDField)
	return doc
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Sanitize(v)
	}
	return out
}

func sanitizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Sanitize(v)
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
