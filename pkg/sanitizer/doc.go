// Package sanitizer makes stored documents and scraped text safe to hand to
// the transport layer.
//
// All functions are idempotent: applying them twice produces the same result
// as applying them once. None of them return errors or panic; values that
// cannot be represented are replaced rather than rejected.
//
// Sanitization includes:
//   - Documents: NaN and infinite floats become nil, timestamps become RFC 3339 strings,
//     BSON maps, documents and arrays are converted to plain maps and slices recursively
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Keywords: lowercase, strip punctuation at both ends
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
