package core

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one slice of a filtered, sorted collection plus the totals needed
// to render pagination controls.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// FilterByText keeps items where any field contains term, compared with
// Unicode case folding. An empty or whitespace-only term returns items as-is.
func FilterByText[T any](items []T, term string, fields ...func(T) string) []T {
	if strings.TrimSpace(term) == "" {
		return items
	}
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(term))

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields {
			if strings.Contains(folder.String(f(item)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// FilterByStatus keeps items whose status equals one of allowed, ignoring case.
// An empty allowed list returns items as-is.
func FilterByStatus[T any](items []T, allowed []string, status func(T) string) []T {
	if len(allowed) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		s := status(item)
		if slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, s) }) {
			out = append(out, item)
		}
	}
	return out
}

// FilterByBooleanFlag keeps items whose predicate equals *flag. A nil flag
// returns items as-is.
func FilterByBooleanFlag[T any](items []T, flag *bool, predicate func(T) bool) []T {
	if flag == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if predicate(item) == *flag {
			out = append(out, item)
		}
	}
	return out
}

// SortBy returns a stably sorted copy of items. Descending order negates cmp,
// so equal elements keep their original relative order in both directions.
func SortBy[T any](items []T, cmp func(a, b T) int, dir SortDirection) []T {
	out := slices.Clone(items)
	if dir == SortDesc {
		slices.SortStableFunc(out, func(a, b T) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// Paginate returns the 1-based page of items. Out-of-range pages come back
// empty with the totals still filled in.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	page, pageSize = normalizePage(page, pageSize)

	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	p.Items = items[start:end]
	return p
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
