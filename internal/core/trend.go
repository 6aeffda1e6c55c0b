package core

import (
	"strings"
	"time"
)

// AllWeekdays lists the seven day buckets in display order, Sunday first.
var AllWeekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

// DayVolume is the number of shipments created on one weekday.
type DayVolume struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ComputeVolumeTrend buckets shipments by the weekday of CreatedAt, evaluated
// in the location the timestamp carries. Every requested bucket is present in
// the result, ordered Sunday to Saturday, even when its count is zero. Nil or
// empty buckets means all seven days. Shipments without a creation time are
// skipped.
func ComputeVolumeTrend(shipments []Shipment, buckets []time.Weekday) []DayVolume {
	var wanted [7]bool
	if len(buckets) == 0 {
		for i := range wanted {
			wanted[i] = true
		}
	}
	for _, d := range buckets {
		if d >= time.Sunday && d <= time.Saturday {
			wanted[d] = true
		}
	}

	var counts [7]int
	for _, s := range shipments {
		if s.CreatedAt.IsZero() {
			continue
		}
		counts[s.CreatedAt.Weekday()]++
	}

	out := make([]DayVolume, 0, 7)
	for _, d := range AllWeekdays {
		if !wanted[d] {
			continue
		}
		out = append(out, DayVolume{Day: d.String()[:3], Count: counts[d]})
	}
	return out
}

// ParseWeekday accepts a full or three-letter English day name, any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	for _, d := range AllWeekdays {
		name := d.String()
		if strings.EqualFold(name, s) || strings.EqualFold(name[:3], s) {
			return d, true
		}
	}
	return 0, false
}
