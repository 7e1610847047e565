package query

import (
	"fmt"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageOptions holds sanitized pagination and sorting inputs.
// Build one with ParsePageOptions; the sort field is guaranteed to be
// from the entity's allow-list and the order is always ASC or DESC.
type PageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination is the metadata block returned alongside every list
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ParsePageOptions coerces raw page/limit/sort inputs into safe values.
// Absent or non-numeric page and limit fall back to 1 and 10; values
// below 1 are raised to the defaults. A sortBy outside the allow-list
// falls back to defaultSort, and sortOrder is ASC unless the input is
// "desc" in any casing. The fallbacks are silent: out-of-vocabulary
// inputs never error.
func ParsePageOptions(page, limit, sortBy, sortOrder string, sortable []string, defaultSort string) PageOptions {
	opts := PageOptions{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    defaultSort,
		SortOrder: "ASC",
	}

	if v, ok := ParseInt(page); ok && v >= 1 {
		opts.Page = v
	}
	if v, ok := ParseInt(limit); ok && v >= 1 {
		opts.Limit = v
	}
	for _, field := range sortable {
		if sortBy == field {
			opts.SortBy = field
			break
		}
	}
	if strings.EqualFold(sortOrder, "desc") {
		opts.SortOrder = "DESC"
	}

	return opts
}

// Offset returns the row offset for the data query
func (p PageOptions) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderClause returns the ORDER BY fragment for the data query.
// SortBy and SortOrder are interpolated directly, which is safe only
// because ParsePageOptions restricts both to fixed vocabularies.
func (p PageOptions) OrderClause() string {
	return fmt.Sprintf("ORDER BY %s %s", p.SortBy, p.SortOrder)
}

// NewPagination assembles the metadata block for a list response
func NewPagination(total int, opts PageOptions) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + opts.Limit - 1) / opts.Limit
	}
	return Pagination{
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}
}
