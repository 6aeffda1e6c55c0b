package core

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// Query is the filter, sort and pagination configuration for one list request.
// Values are never modified in place; the With helpers return copies.
type Query struct {
	Search    string          `json:"search,omitempty"`
	Statuses  []string        `json:"statuses,omitempty"`
	Flags     map[string]bool `json:"flags,omitempty"`
	SortField string          `json:"sort_field,omitempty"`
	SortDir   SortDirection   `json:"sort_dir,omitempty"`
	Page      int             `json:"page,omitempty"`
	PageSize  int             `json:"page_size,omitempty"`
}

func (q Query) WithSearch(term string) Query {
	q.Search = term
	q.Page = 1
	return q
}

func (q Query) WithStatuses(statuses ...string) Query {
	q.Statuses = slices.Clone(statuses)
	q.Page = 1
	return q
}

// WithFlag sets a flag filter on a copy of q.
func (q Query) WithFlag(name string, value bool) Query {
	flags := maps.Clone(q.Flags)
	if flags == nil {
		flags = make(map[string]bool, 1)
	}
	flags[name] = value
	q.Flags = flags
	q.Page = 1
	return q
}

// WithoutFlag clears a flag filter, returning it to unfiltered.
func (q Query) WithoutFlag(name string) Query {
	if _, ok := q.Flags[name]; !ok {
		return q
	}
	flags := maps.Clone(q.Flags)
	delete(flags, name)
	q.Flags = flags
	q.Page = 1
	return q
}

func (q Query) WithSort(field string, dir SortDirection) Query {
	q.SortField = field
	q.SortDir = dir
	return q
}

func (q Query) WithPage(page, pageSize int) Query {
	q.Page = page
	q.PageSize = pageSize
	return q
}

// Flag returns the flag filter for name, or nil when it is unfiltered.
func (q Query) Flag(name string) *bool {
	v, ok := q.Flags[name]
	if !ok {
		return nil
	}
	return &v
}

// Schema names the fields of T that a Query can refer to.
type Schema[T any] struct {
	Entity string
	Text   map[string]func(T) string
	Status func(T) string
	Flags  map[string]func(T) bool
	Sort   map[string]func(a, b T) int
}

// Validate reports sort fields, flags or sort directions the schema does not
// know. Errors wrap ErrUnknownField.
func (s Schema[T]) Validate(q Query) error {
	if q.SortField != "" {
		if _, ok := s.Sort[q.SortField]; !ok {
			return fmt.Errorf("%s: sort field %q (known: %s): %w",
				s.Entity, q.SortField, strings.Join(sortedKeys(s.Sort), ", "), ErrUnknownField)
		}
	}
	if q.SortDir != "" && q.SortDir != SortAsc && q.SortDir != SortDesc {
		return fmt.Errorf("%s: sort direction %q: %w", s.Entity, q.SortDir, ErrUnknownField)
	}
	for _, name := range sortedKeys(q.Flags) {
		if _, ok := s.Flags[name]; !ok {
			return fmt.Errorf("%s: flag %q (known: %s): %w",
				s.Entity, name, strings.Join(sortedKeys(s.Flags), ", "), ErrUnknownField)
		}
	}
	if len(q.Statuses) > 0 && s.Status == nil {
		return fmt.Errorf("%s: status filter: %w", s.Entity, ErrUnknownField)
	}
	return nil
}

// FieldNames lists the text, sort and flag names of the schema, sorted.
func (s Schema[T]) FieldNames() (text, sortable, flags []string) {
	return sortedKeys(s.Text), sortedKeys(s.Sort), sortedKeys(s.Flags)
}

// ApplyQuery filters, sorts and paginates items. Names the schema does not
// know are ignored; call Validate first to reject them.
func ApplyQuery[T any](items []T, q Query, s Schema[T]) Page[T] {
	if len(s.Text) > 0 {
		fields := make([]func(T) string, 0, len(s.Text))
		for _, name := range sortedKeys(s.Text) {
			fields = append(fields, s.Text[name])
		}
		items = FilterByText(items, q.Search, fields...)
	}

	if s.Status != nil {
		items = FilterByStatus(items, q.Statuses, s.Status)
	}

	for _, name := range sortedKeys(q.Flags) {
		pred, ok := s.Flags[name]
		if !ok {
			continue
		}
		items = FilterByBooleanFlag(items, q.Flag(name), pred)
	}

	if cmp, ok := s.Sort[q.SortField]; ok {
		items = SortBy(items, cmp, q.SortDir)
	}

	return Paginate(items, q.Page, q.PageSize)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
