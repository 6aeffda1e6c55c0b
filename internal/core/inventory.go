package core

import (
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is the quantity under which a stock line is listed
// as low stock when the caller does not configure one.
const DefaultLowStockThreshold = 50

type StockStatus string

const (
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockLow        StockStatus = "LOW_STOCK"
	StockIn         StockStatus = "IN_STOCK"
)

// InventoryStatus is the per-SKU rollup shown in the inventory table.
type InventoryStatus struct {
	SKUID          string          `json:"sku_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	OnHand         int             `json:"on_hand"`
	Status         StockStatus     `json:"status"`
	WarehouseCodes []string        `json:"warehouse_codes"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// LowStockItem is a stock line whose on-hand quantity is under the threshold.
type LowStockItem struct {
	SKUID       string `json:"sku_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
}

// DerivePseudoPrice returns a stable mock price for a SKU that has no catalog
// price: the sum of its UTF-16 code units modulo 400, plus 20.
func DerivePseudoPrice(sku string) decimal.Decimal {
	sum := 0
	for _, u := range utf16.Encode([]rune(sku)) {
		sum += int(u)
	}
	return decimal.NewFromInt(int64(sum%400 + 20))
}

// ClassifyStock maps an on-hand quantity to a status. The LOW_STOCK boundary
// is inclusive of the reorder point.
func ClassifyStock(onHand, reorderPoint int) StockStatus {
	switch {
	case onHand == 0:
		return StockOutOfStock
	case onHand > 0 && onHand <= reorderPoint:
		return StockLow
	default:
		return StockIn
	}
}

// ComputeInventoryStatus rolls up every stock line of item across warehouses.
// Negative sums are reported as-is. A line whose warehouse is missing from
// warehouses still counts toward OnHand but adds no warehouse code.
func ComputeInventoryStatus(item CatalogItem, lines []StockLine, warehouses []Warehouse) InventoryStatus {
	codesByID := warehouseCodes(warehouses)

	status := InventoryStatus{
		SKUID:          item.ID,
		Code:           item.Code,
		Name:           item.Name,
		Category:       item.Category,
		WarehouseCodes: []string{},
		UnitPrice:      resolveUnitPrice(item),
	}

	seen := make(map[string]bool)
	for _, l := range lines {
		if l.SKUID != item.ID {
			continue
		}
		status.OnHand += l.Available()

		code, ok := codesByID[l.WarehouseID]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		status.WarehouseCodes = append(status.WarehouseCodes, code)
	}

	status.Status = ClassifyStock(status.OnHand, item.ReorderPoint)
	return status
}

// ComputeInventoryStatuses runs ComputeInventoryStatus over the whole catalog,
// in catalog order.
func ComputeInventoryStatuses(catalog []CatalogItem, lines []StockLine, warehouses []Warehouse) []InventoryStatus {
	out := make([]InventoryStatus, 0, len(catalog))
	for _, item := range catalog {
		out = append(out, ComputeInventoryStatus(item, lines, warehouses))
	}
	return out
}

// ComputeLowStock returns the lines whose on-hand quantity is strictly below
// threshold, in input order.
func ComputeLowStock(lines []StockLine, threshold int) []LowStockItem {
	out := []LowStockItem{}
	for _, l := range lines {
		if l.QuantityOnHand >= threshold {
			continue
		}
		out = append(out, LowStockItem{
			SKUID:       l.SKUID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.QuantityOnHand,
			Threshold:   threshold,
		})
	}
	return out
}

// ComputeInventoryValue sums on-hand × unit price. Negative on-hand counts as zero
// so an upstream inconsistency cannot reduce the value of other SKUs.
func ComputeInventoryValue(statuses []InventoryStatus) decimal.Decimal {
	total := decimal.Zero
	for _, s := range statuses {
		if s.OnHand <= 0 {
			continue
		}
		total = total.Add(s.UnitPrice.Mul(decimal.NewFromInt(int64(s.OnHand))))
	}
	return total
}

func resolveUnitPrice(item CatalogItem) decimal.Decimal {
	if item.UnitPrice != nil {
		return *item.UnitPrice
	}
	return DerivePseudoPrice(item.ID)
}

func warehouseCodes(warehouses []Warehouse) map[string]string {
	m := make(map[string]string, len(warehouses))
	for _, w := range warehouses {
		m[w.ID] = w.Code
	}
	return m
}
