package paging

import (
	"errors"
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

var (
	ErrInvalidPage  = errors.New("page must be a positive integer")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// Policy controls how raw query values become Params.
// MaxLimit <= 0 disables clamping. A non-strict policy passes
// non-positive values through untouched.
type Policy struct {
	MaxLimit int
	Strict   bool
}

type Params struct {
	Page  int
	Limit int
}

// Parse reads page and limit query values. Absent or non-numeric
// values fall back to the defaults.
func (p Policy) Parse(page, limit string) (Params, error) {
	params := Params{
		Page:  atoiOr(page, DefaultPage),
		Limit: atoiOr(limit, DefaultLimit),
	}
	if !p.Strict {
		return params, nil
	}
	if params.Page <= 0 {
		return Params{}, ErrInvalidPage
	}
	if params.Limit <= 0 {
		return Params{}, ErrInvalidLimit
	}
	if p.MaxLimit > 0 && params.Limit > p.MaxLimit {
		params.Limit = p.MaxLimit
	}
	// offset must fit in an int
	if params.Page-1 > math.MaxInt/params.Limit {
		return Params{}, ErrInvalidPage
	}
	return params, nil
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit), zero for a non-positive limit.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
