package app

import (
	"context"
	"errors"
	"time"

	"logistics-dashboard/internal/core"
	"logistics-dashboard/internal/store"
)

// ErrNotFound is returned by mutations that name a missing entity.
var ErrNotFound = store.ErrNotFound

// ErrInterpreterUnavailable is returned by InterpretQuery when no AI key is configured.
var ErrInterpreterUnavailable = errors.New("query interpreter not configured")

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from the dashboard aggregation layer. Implementations
// must contain no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Every read loads a fresh snapshot from the store, so a mutation is visible to
// the next read. List methods validate the query against the entity schema and
// return an error wrapping core.ErrUnknownField for names the schema lacks.
type ApplicationService interface {
	// Source names the configured entity source: postgres, sqlite or fixtures.
	Source() string

	// Overview returns the KPI cards and fleet health counters.
	Overview(ctx context.Context) (*OverviewResult, error)

	ListInventory(ctx context.Context, q core.Query) (*core.Page[core.InventoryStatus], error)

	// LowStock lists stock lines under threshold. A nil threshold uses the configured default.
	LowStock(ctx context.Context, threshold *int) (*LowStockResult, error)

	// InventoryValue returns the total value of stock on hand.
	InventoryValue(ctx context.Context) (*InventoryValueResult, error)

	ListWarehouses(ctx context.Context, q core.Query) (*core.Page[core.Warehouse], error)

	// WarehouseCapacity returns pallet and volume utilization per warehouse.
	WarehouseCapacity(ctx context.Context) ([]core.CapacityUtilization, error)

	ListShipments(ctx context.Context, q core.Query) (*core.Page[core.Shipment], error)

	// VolumeTrend counts shipments per creation weekday in the dashboard time zone.
	// Empty days means all seven.
	VolumeTrend(ctx context.Context, days []time.Weekday) ([]core.DayVolume, error)

	ListVehicles(ctx context.Context, q core.Query) (*core.Page[core.Vehicle], error)
	ListDrivers(ctx context.Context, q core.Query) (*core.Page[core.Driver], error)
	ListCustomers(ctx context.Context, q core.Query) (*core.Page[core.Customer], error)

	// RouteLoad returns shipment counts per route.
	RouteLoad(ctx context.Context) ([]core.RouteLoad, error)

	// Distribution returns the status histogram of one entity list, in first-seen order.
	Distribution(ctx context.Context, entity string) (*DistributionResult, error)

	// InterpretQuery asks the AI interpreter to turn free text into a list query
	// for entity. The returned query always validates against the entity schema.
	InterpretQuery(ctx context.Context, entity, text string) (*InterpretResult, error)

	// CreateShipment stores a new shipment. Missing id, status and creation time are filled in.
	CreateShipment(ctx context.Context, req CreateShipmentRequest) (*core.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id string, status core.ShipmentStatus) (*core.Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
	SetVehicleStatus(ctx context.Context, id string, status core.VehicleStatus) (*core.Vehicle, error)

	// AssignDriverVehicle assigns a vehicle to a driver; an empty vehicleID unassigns.
	AssignDriverVehicle(ctx context.Context, driverID, vehicleID string) (*core.Driver, error)
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*core.StockLine, error)
	ResolveAlert(ctx context.Context, id string) (*core.Alert, error)
}
