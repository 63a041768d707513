package upstream

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vestibule-io/vestibule/pkg/api"
)

// PageDefaults holds the pagination defaults an endpoint forwards when the
// caller omits limit or offset.
type PageDefaults struct {
	Limit  int
	Offset int
}

// DefaultPage is the standard pagination for list endpoints.
var DefaultPage = PageDefaults{Limit: api.DefaultLimit, Offset: api.DefaultOffset}

// NormalizeQuery prepares caller query parameters for forwarding.
//
// limit and offset are coerced to integers, falling back to the endpoint's
// defaults when missing or unparseable. Values that read as "true"/"false"
// in any casing are canonicalized. Everything else passes through unchanged.
func NormalizeQuery(q url.Values, defaults PageDefaults) url.Values {
	out := url.Values{}

	for key, values := range q {
		if key == "limit" || key == "offset" {
			continue
		}
		for _, v := range values {
			out.Add(key, coerceBool(v))
		}
	}

	out.Set("limit", strconv.Itoa(intParam(q.Get("limit"), defaults.Limit)))
	out.Set("offset", strconv.Itoa(intParam(q.Get("offset"), defaults.Offset)))

	return out
}

// PageFromQuery reads the pagination a caller asked for, applying defaults.
// Soft-fail endpoints echo these values back in their default payload.
func PageFromQuery(q url.Values, defaults PageDefaults) (limit, offset int) {
	return intParam(q.Get("limit"), defaults.Limit), intParam(q.Get("offset"), defaults.Offset)
}

// intParam parses a numeric query parameter, falling back to def for
// missing, unparseable, or negative values.
func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// coerceBool canonicalizes "true"/"false" flags; other values pass through.
func coerceBool(v string) string {
	switch strings.ToLower(v) {
	case "true":
		return "true"
	case "false":
		return "false"
	default:
		return v
	}
}
