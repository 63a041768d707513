package api

import "encoding/json"

// Default pagination applied when a list call omits limit or offset.
const (
	DefaultLimit  = 20
	DefaultOffset = 0
)

// Page is the list envelope mirrored from the backend. Items is kept raw
// because the gateway never interprets backend resource shapes.
type Page struct {
	Items  []json.RawMessage `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// EmptyPage returns the safe default payload for soft-fail list endpoints,
// echoing the pagination the caller asked for.
func EmptyPage(limit, offset int) Page {
	return Page{
		Items:  []json.RawMessage{},
		Total:  0,
		Limit:  limit,
		Offset: offset,
	}
}
