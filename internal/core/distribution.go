package core

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ComputeStatusDistribution counts items per status value. Keys keep the order
// in which each status was first seen so chart legends stay stable between
// renders. Items with an empty status are not counted.
func ComputeStatusDistribution[T any](items []T, status func(T) string) *orderedmap.OrderedMap[string, int] {
	counts := orderedmap.New[string, int]()
	for _, item := range items {
		s := status(item)
		if s == "" {
			continue
		}
		n, _ := counts.Get(s)
		counts.Set(s, n+1)
	}
	return counts
}

// DistributionEntry is one bucket of a status histogram, for callers that
// need a plain slice.
type DistributionEntry struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DistributionEntries flattens a histogram into a slice, keeping key order.
func DistributionEntries(counts *orderedmap.OrderedMap[string, int]) []DistributionEntry {
	out := make([]DistributionEntry, 0, counts.Len())
	for pair := counts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, DistributionEntry{Status: pair.Key, Count: pair.Value})
	}
	return out
}
