package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int for any accepted limit.
	MaxPage = math.MaxInt/MaxLimit + 1
)

var ErrInvalidParams = errors.New("invalid_pagination_parameters")

type Params struct {
	Page  int
	Limit int
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Parse normalizes raw query values. Empty values take the defaults, page is
// floored at 1 and limit is clamped to [1, MaxLimit]. Non-integer input and
// pages past MaxPage are rejected rather than guessed at.
func Parse(page, limit string) (Params, error) {
	p, err := parseInt(page, DefaultPage)
	if err != nil {
		return Params{}, ErrInvalidParams
	}
	if p > MaxPage {
		return Params{}, ErrInvalidParams
	}
	l, err := parseInt(limit, DefaultLimit)
	if err != nil {
		return Params{}, ErrInvalidParams
	}
	return Normalize(p, l), nil
}

func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewMeta(p Params, total int64) Meta {
	var pages int64
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

func parseInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
