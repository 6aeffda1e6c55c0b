package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"logistics-dashboard/internal/core"

	"github.com/google/uuid"
)

// ErrNotFound is returned by mutations that name a row that does not exist.
var ErrNotFound = errors.New("not found")

// Store is the entity source and mutation layer behind the dashboard.
// Snapshot returns a read of every collection; callers must not modify it.
type Store interface {
	Name() string
	Snapshot(ctx context.Context) (core.Snapshot, error)

	CreateShipment(ctx context.Context, s core.Shipment) (core.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id string, status core.ShipmentStatus) (core.Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
	SetVehicleStatus(ctx context.Context, id string, status core.VehicleStatus) (core.Vehicle, error)
	// AssignDriverVehicle sets or, with a nil vehicleID, clears the driver's vehicle.
	AssignDriverVehicle(ctx context.Context, driverID string, vehicleID *string) (core.Driver, error)
	// AdjustStock adds the deltas to a stock line, creating it when missing.
	// The resulting quantities may be negative.
	AdjustStock(ctx context.Context, adj StockAdjustment) (core.StockLine, error)
	ResolveAlert(ctx context.Context, id string) (core.Alert, error)

	Close() error
}

// Importer replaces the contents of a store with a snapshot. Used for seeding.
type Importer interface {
	Import(ctx context.Context, s core.Snapshot) error
}

type StockAdjustment struct {
	SKUID         string `json:"sku_id"`
	WarehouseID   string `json:"warehouse_id"`
	DeltaOnHand   int    `json:"delta_on_hand"`
	DeltaReserved int    `json:"delta_reserved"`
	Reason        string `json:"reason,omitempty"`
}

// ── Input validation shared by every store ───────────────────────────────────

func validateNewShipment(s core.Shipment) error {
	if strings.TrimSpace(s.Reference) == "" {
		return core.NewValidationError("reference", "is required")
	}
	if strings.TrimSpace(s.CustomerID) == "" {
		return core.NewValidationError("customer_id", "is required")
	}
	if strings.TrimSpace(s.Origin) == "" || strings.TrimSpace(s.Destination) == "" {
		return core.NewValidationError("route", "origin and destination are required")
	}
	if s.Status != "" && !s.Status.IsValid() {
		return core.NewValidationError("status", "unknown shipment status %q", s.Status)
	}
	if s.ETA != nil && !s.CreatedAt.IsZero() && s.ETA.Before(s.CreatedAt) {
		return core.NewValidationError("eta", "must not be before created_at")
	}
	return nil
}

// prepareShipment fills the id, status and creation time of a new shipment.
func prepareShipment(s core.Shipment, now time.Time) core.Shipment {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = core.ShipmentPending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now.UTC()
	}
	s.Reference = strings.TrimSpace(s.Reference)
	return s
}

func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.NewValidationError(field, "is required")
	}
	return nil
}

func validateShipmentStatus(id string, status core.ShipmentStatus) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	if !status.IsValid() {
		return core.NewValidationError("status", "unknown shipment status %q", status)
	}
	return nil
}

func validateVehicleStatus(id string, status core.VehicleStatus) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	if !status.IsValid() {
		return core.NewValidationError("status", "unknown vehicle status %q", status)
	}
	return nil
}

func validateAdjustment(adj StockAdjustment) error {
	if err := validateID("sku_id", adj.SKUID); err != nil {
		return err
	}
	if err := validateID("warehouse_id", adj.WarehouseID); err != nil {
		return err
	}
	if adj.DeltaOnHand == 0 && adj.DeltaReserved == 0 {
		return core.NewValidationError("delta", "at least one of delta_on_hand or delta_reserved must be non-zero")
	}
	return nil
}

// normalizeVehicleID treats an empty string the same as no vehicle.
func normalizeVehicleID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}
