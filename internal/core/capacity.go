package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CapacityUtilization is the percentage of pallet and volume capacity in use.
type CapacityUtilization struct {
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
	PalletPct   int    `json:"pallet_pct"`
	VolumePct   int    `json:"volume_pct"`
}

// ComputeWarehouseCapacity returns used/max as a whole percentage, rounded half
// away from zero. A zero or negative max yields 0.
func ComputeWarehouseCapacity(w Warehouse) CapacityUtilization {
	c := w.Capacity
	return CapacityUtilization{
		WarehouseID: w.ID,
		Code:        w.Code,
		PalletPct:   percent(decimal.NewFromInt(int64(c.UsedPallets)), decimal.NewFromInt(int64(c.MaxPallets))),
		VolumePct:   percent(c.UsedVolumeM3, c.MaxVolumeM3),
	}
}

// ComputeWarehouseCapacities applies ComputeWarehouseCapacity to every warehouse.
func ComputeWarehouseCapacities(warehouses []Warehouse) []CapacityUtilization {
	out := make([]CapacityUtilization, 0, len(warehouses))
	for _, w := range warehouses {
		out = append(out, ComputeWarehouseCapacity(w))
	}
	return out
}

func percent(used, max decimal.Decimal) int {
	if !max.IsPositive() {
		return 0
	}
	return int(used.Mul(hundred).Div(max).Round(0).IntPart())
}
