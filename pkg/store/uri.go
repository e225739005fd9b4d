package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrMissingURI = errors.New("missing_uri")
	ErrInvalidURI = errors.New("invalid_uri")

	reMongoScheme = regexp.MustCompile(`^mongodb(\+srv)?://`)
	reCredentials = regexp.MustCompile(`(mongodb(\+srv)?://)[^:/@]+:[^@]+@`)
)

// CleanURI normalizes a connection string pasted into an environment file:
// surrounding whitespace and quotes are dropped, as is an accidental
// "MONGODB_URI=" prefix.
func CleanURI(raw string) (string, error) {
	uri := strings.TrimSpace(raw)
	if uri == "" {
		return "", ErrMissingURI
	}

	if len(uri) >= 2 {
		first, last := uri[0], uri[len(uri)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			uri = uri[1 : len(uri)-1]
		}
	}

	if strings.HasPrefix(strings.ToLower(uri), "mongodb_uri=") {
		uri = strings.TrimSpace(uri[len("mongodb_uri="):])
	}

	if !reMongoScheme.MatchString(uri) {
		return "", fmt.Errorf("%w: must start with mongodb:// or mongodb+srv://, got: %s", ErrInvalidURI, truncate(RedactURI(uri), 50))
	}
	return uri, nil
}

func RedactURI(uri string) string {
	return reCredentials.ReplaceAllString(uri, "${1}***:***@")
}

// IsDuplicateKeyBatch reports whether err comes from an unordered insert whose
// only failures are unique-index violations.
func IsDuplicateKeyBatch(err error) bool {
	if err == nil {
		return false
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) {
		if bulkErr.WriteConcernError != nil || len(bulkErr.WriteErrors) == 0 {
			return false
		}
		for _, we := range bulkErr.WriteErrors {
			if !isDuplicateKeyCode(we.Code) {
				return false
			}
		}
		return true
	}

	return mongo.IsDuplicateKeyError(err)
}

func isDuplicateKeyCode(code int) bool {
	return code == 11000 || code == 11001 || code == 12582
}
