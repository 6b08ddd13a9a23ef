package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// New normalizes page and limit. Out-of-range values fall back to defaults.
// Page is capped so the offset always fits in an int.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest reads the page and limit query parameters.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return New(atoi(q.Get("page")), atoi(q.Get("limit")))
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// Meta describes one page of a listing.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is a slice of items together with its Meta.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// NewPage builds a Page, computing the page count from total. A nil slice is
// replaced with an empty one so it encodes as [].
func NewPage[T any](data []T, total int, p Params) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Page[T]{
		Data: data,
		Meta: Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: totalPages},
	}
}
