package app

import (
	"time"

	"logistics-dashboard/internal/core"
)

// CreateShipmentRequest is the input for creating a new shipment.
type CreateShipmentRequest struct {
	ID          string              `json:"id,omitempty"`
	Reference   string              `json:"reference"`
	CustomerID  string              `json:"customer_id"`
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Status      core.ShipmentStatus `json:"status,omitempty"`
	ETA         *time.Time          `json:"eta,omitempty"`
}

func (r CreateShipmentRequest) toShipment() core.Shipment {
	return core.Shipment{
		ID:          r.ID,
		Reference:   r.Reference,
		CustomerID:  r.CustomerID,
		Origin:      r.Origin,
		Destination: r.Destination,
		Status:      r.Status,
		ETA:         r.ETA,
	}
}

// AdjustStockRequest adds signed deltas to one stock line.
type AdjustStockRequest struct {
	SKUID         string `json:"sku_id"`
	WarehouseID   string `json:"warehouse_id"`
	DeltaOnHand   int    `json:"delta_on_hand"`
	DeltaReserved int    `json:"delta_reserved"`
	Reason        string `json:"reason,omitempty"`
}
