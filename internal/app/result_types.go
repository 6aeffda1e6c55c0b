package app

import (
	"time"

	"logistics-dashboard/internal/core"

	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OverviewResult is returned by Overview.
type OverviewResult struct {
	Kpis    core.KpiSet      `json:"kpis"`
	Fleet   core.FleetHealth `json:"fleet"`
	Source  string           `json:"source"`
	TakenAt time.Time        `json:"taken_at"`
}

// LowStockResult is returned by LowStock.
type LowStockResult struct {
	Threshold int                 `json:"threshold"`
	Items     []core.LowStockItem `json:"items"`
}

// InventoryValueResult is returned by InventoryValue.
type InventoryValueResult struct {
	Total decimal.Decimal `json:"total"`
	Skus  int             `json:"skus"`
}

// DistributionResult is returned by Distribution. Counts marshals as a JSON
// object whose keys keep first-seen order.
type DistributionResult struct {
	Entity string                              `json:"entity"`
	Counts *orderedmap.OrderedMap[string, int] `json:"counts"`
}

// InterpretResult is returned by InterpretQuery.
type InterpretResult struct {
	Entity          string     `json:"entity"`
	Query           core.Query `json:"query"`
	IsClarification bool       `json:"is_clarification"`
	Clarification   string     `json:"clarification,omitempty"`
	Reasoning       string     `json:"reasoning,omitempty"`
}
