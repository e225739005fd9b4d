package http

import (
	"net/http"
	"strconv"

	apperrors "brandpulse/pkg/errors"
)

// QueryInt reads an integer query parameter, clamped to [lo, hi]. A missing
// parameter yields def.
func QueryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return min(max(v, lo), hi), nil
}
