package sanitizer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var when = time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

func TestSanitize_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{name: "nil", input: nil, want: nil},
		{name: "nan", input: math.NaN(), want: nil},
		{name: "float32 nan", input: float32(math.NaN()), want: nil},
		{name: "inf", input: math.Inf(1), want: nil},
		{name: "float", input: 1.5, want: 1.5},
		{name: "int", input: int32(7), want: int32(7)},
		{name: "string", input: "hi", want: "hi"},
		{name: "bool", input: true, want: true},
		{name: "time", input: when, want: "2024-03-05T10:30:00Z"},
		{name: "time with zone", input: when.In(time.FixedZone("X", 3600)), want: "2024-03-05T10:30:00Z"},
		{name: "datetime", input: primitive.NewDateTimeFromTime(when), want: "2024-03-05T10:30:00Z"},
		{name: "nil time pointer", input: (*time.Time)(nil), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitize_ObjectIDPassesThrough(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, id, Sanitize(id))
}

func TestSanitize_NestedRecursion(t *testing.T) {
	doc := bson.M{
		"score": math.NaN(),
		"meta": bson.M{
			"published": primitive.NewDateTimeFromTime(when),
			"tags":      bson.A{"a", math.NaN(), bson.D{{Key: "at", Value: when}}},
		},
		"list": []any{bson.M{"n": math.Inf(-1)}},
	}

	got := Sanitize(doc)
	want := map[string]any{
		"score": nil,
		"meta": map[string]any{
			"published": "2024-03-05T10:30:00Z",
			"tags":      []any{"a", nil, map[string]any{"at": "2024-03-05T10:30:00Z"}},
		},
		"list": []any{map[string]any{"n": nil}},
	}
	assert.Equal(t, want, got)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []any{
		nil,
		math.NaN(),
		when,
		"plain",
		bson.M{"a": bson.A{when, math.NaN(), bson.M{"b": primitive.NewDateTimeFromTime(when)}}},
		[]map[string]any{{"x": 1}},
		bson.D{{Key: "k", Value: []bson.M{{"t": when}}}},
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	doc := bson.M{"published": when}
	_ = Sanitize(doc)
	assert.Equal(t, when, doc["published"])
}

func TestDocuments(t *testing.T) {
	docs := []bson.M{{"a": math.NaN()}, nil}
	got := Documents(docs)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{"a": nil}, got[0])
	assert.Equal(t, map[string]any{}, got[1])

	assert.NotNil(t, Documents(nil))
}

func TestStripInternalID(t *testing.T) {
	doc := bson.M{"_id": primitive.NewObjectID(), "url": "u"}
	got := StripInternalID(doc)
	assert.Equal(t, bson.M{"url": "u"}, got)

	assert.NotPanics(t, func() { StripInternalID(nil) })
}
