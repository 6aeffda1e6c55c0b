package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"logistics-dashboard/internal/core"
)

const flagPrefix = "flag."

// parseListQuery reads the list query parameters:
// q, status (repeatable or comma separated), flag.<name>=true|false,
// sort, dir=asc|desc, page and page_size. Malformed values wrap
// core.ErrUnknownField so they map to BAD_QUERY.
func parseListQuery(values url.Values) (core.Query, error) {
	q := core.Query{Page: 1}.WithSearch(values.Get("q"))

	var statuses []string
	for _, raw := range values["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}
	if len(statuses) > 0 {
		q = q.WithStatuses(statuses...)
	}

	for key, vals := range values {
		name, ok := strings.CutPrefix(key, flagPrefix)
		if !ok || len(vals) == 0 {
			continue
		}
		v, err := strconv.ParseBool(vals[0])
		if err != nil {
			return core.Query{}, fmt.Errorf("flag %q: value %q is not a boolean: %w", name, vals[0], core.ErrUnknownField)
		}
		q = q.WithFlag(name, v)
	}

	if sort := values.Get("sort"); sort != "" {
		q = q.WithSort(sort, core.SortDirection(strings.ToLower(values.Get("dir"))))
	} else if dir := values.Get("dir"); dir != "" {
		q = q.WithSort("", core.SortDirection(strings.ToLower(dir)))
	}

	page, err := intParam(values, "page", 1)
	if err != nil {
		return core.Query{}, err
	}
	size, err := intParam(values, "page_size", core.DefaultPageSize)
	if err != nil {
		return core.Query{}, err
	}
	return q.WithPage(page, size), nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer: %w", name, raw, core.ErrUnknownField)
	}
	return n, nil
}

// parseWeekdays reads a comma-separated list of day names. Empty means all days.
func parseWeekdays(raw string) ([]time.Weekday, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		d, ok := core.ParseWeekday(part)
		if !ok {
			return nil, fmt.Errorf("days: unknown weekday %q: %w", strings.TrimSpace(part), core.ErrUnknownField)
		}
		days = append(days, d)
	}
	return days, nil
}
