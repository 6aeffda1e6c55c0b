package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"logistics-dashboard/internal/ai"
	"logistics-dashboard/internal/core"
	"logistics-dashboard/internal/events"
	"logistics-dashboard/internal/store"

	"golang.org/x/sync/singleflight"
)

// Settings carries the defaults the service applies on behalf of adapters.
type Settings struct {
	LowStockThreshold int // zero means core.DefaultLowStockThreshold
	Location          *time.Location
}

type appService struct {
	store     store.Store
	publisher events.Publisher
	agent     ai.QueryInterpreter
	settings  Settings
	loads     singleflight.Group
}

// NewAppService constructs an appService that satisfies ApplicationService.
// publisher and agent may be nil: events are then dropped and InterpretQuery
// returns ErrInterpreterUnavailable.
func NewAppService(
	st store.Store,
	publisher events.Publisher,
	agent ai.QueryInterpreter,
	settings Settings,
) ApplicationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.LowStockThreshold <= 0 {
		settings.LowStockThreshold = core.DefaultLowStockThreshold
	}
	return &appService{
		store:     st,
		publisher: publisher,
		agent:     agent,
		settings:  settings,
	}
}

func (s *appService) Source() string { return s.store.Name() }

// snapshotTimeout bounds a shared snapshot load once it is detached from
// the caller that started it.
const snapshotTimeout = 30 * time.Second

// snapshot loads the current entity snapshot. Concurrent callers share one
// load; a caller that gives up returns its own ctx error and leaves the load
// running for the others.
func (s *appService) snapshot(ctx context.Context) (core.Snapshot, error) {
	ch := s.loads.DoChan("snapshot", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
		defer cancel()
		return s.store.Snapshot(loadCtx)
	})

	select {
	case <-ctx.Done():
		return core.Snapshot{}, fmt.Errorf("failed to load %s snapshot: %w", s.store.Name(), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return core.Snapshot{}, fmt.Errorf("failed to load %s snapshot: %w", s.store.Name(), res.Err)
		}
		return res.Val.(core.Snapshot), nil
	}
}

// ── Dashboard reads ──────────────────────────────────────────────────────────

func (s *appService) Overview(ctx context.Context) (*OverviewResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &OverviewResult{
		Kpis:    core.ComputeOverviewKpis(snap),
		Fleet:   core.ComputeFleetHealth(snap.Vehicles),
		Source:  s.store.Name(),
		TakenAt: snap.TakenAt,
	}, nil
}

func (s *appService) ListInventory(ctx context.Context, q core.Query) (*core.Page[core.InventoryStatus], error) {
	if err := core.InventorySchema.Validate(q); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	statuses := core.ComputeInventoryStatuses(snap.Catalog, snap.Stock, snap.Warehouses)
	page := core.ApplyQuery(statuses, q, core.InventorySchema)
	return &page, nil
}

func (s *appService) LowStock(ctx context.Context, threshold *int) (*LowStockResult, error) {
	t := s.settings.LowStockThreshold
	if threshold != nil {
		if *threshold < 0 {
			return nil, core.NewValidationError("threshold", "must not be negative")
		}
		t = *threshold
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &LowStockResult{Threshold: t, Items: core.ComputeLowStock(snap.Stock, t)}, nil
}

func (s *appService) InventoryValue(ctx context.Context) (*InventoryValueResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	statuses := core.ComputeInventoryStatuses(snap.Catalog, snap.Stock, snap.Warehouses)
	return &InventoryValueResult{
		Total: core.ComputeInventoryValue(statuses),
		Skus:  len(statuses),
	}, nil
}

func (s *appService) ListWarehouses(ctx context.Context, q core.Query) (*core.Page[core.Warehouse], error) {
	return listEntity(ctx, s, q, core.WarehouseSchema, func(snap core.Snapshot) []core.Warehouse { return snap.Warehouses })
}

func (s *appService) WarehouseCapacity(ctx context.Context) ([]core.CapacityUtilization, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.ComputeWarehouseCapacities(snap.Warehouses), nil
}

func (s *appService) ListShipments(ctx context.Context, q core.Query) (*core.Page[core.Shipment], error) {
	return listEntity(ctx, s, q, core.ShipmentSchema, func(snap core.Snapshot) []core.Shipment { return snap.Shipments })
}

func (s *appService) VolumeTrend(ctx context.Context, days []time.Weekday) ([]core.DayVolume, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	local := make([]core.Shipment, len(snap.Shipments))
	for i, sh := range snap.Shipments {
		if !sh.CreatedAt.IsZero() {
			sh.CreatedAt = sh.CreatedAt.In(s.settings.Location)
		}
		local[i] = sh
	}
	return core.ComputeVolumeTrend(local, days), nil
}

func (s *appService) ListVehicles(ctx context.Context, q core.Query) (*core.Page[core.Vehicle], error) {
	return listEntity(ctx, s, q, core.VehicleSchema, func(snap core.Snapshot) []core.Vehicle { return snap.Vehicles })
}

func (s *appService) ListDrivers(ctx context.Context, q core.Query) (*core.Page[core.Driver], error) {
	return listEntity(ctx, s, q, core.DriverSchema, func(snap core.Snapshot) []core.Driver { return snap.Drivers })
}

func (s *appService) ListCustomers(ctx context.Context, q core.Query) (*core.Page[core.Customer], error) {
	return listEntity(ctx, s, q, core.CustomerSchema, func(snap core.Snapshot) []core.Customer { return snap.Customers })
}

func (s *appService) RouteLoad(ctx context.Context) ([]core.RouteLoad, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.ComputeRouteLoad(snap.Routes, snap.Shipments), nil
}

func (s *appService) Distribution(ctx context.Context, entity string) (*DistributionResult, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	if _, ok := entityRegistry[entity]; !ok {
		return nil, unknownEntity(entity)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	res := &DistributionResult{Entity: entity}
	switch entity {
	case "shipments":
		res.Counts = core.ComputeStatusDistribution(snap.Shipments, core.ShipmentSchema.Status)
	case "vehicles":
		res.Counts = core.ComputeStatusDistribution(snap.Vehicles, core.VehicleSchema.Status)
	case "drivers":
		res.Counts = core.ComputeStatusDistribution(snap.Drivers, core.DriverSchema.Status)
	case "inventory":
		statuses := core.ComputeInventoryStatuses(snap.Catalog, snap.Stock, snap.Warehouses)
		res.Counts = core.ComputeStatusDistribution(statuses, core.InventorySchema.Status)
	case "alerts":
		res.Counts = core.ComputeStatusDistribution(snap.Alerts, func(a core.Alert) string {
			if a.Resolved {
				return ""
			}
			return string(a.Kind)
		})
	default:
		return nil, unknownEntity(entity)
	}
	return res, nil
}

// listEntity validates q, loads the snapshot and applies q to one collection.
func listEntity[T any](ctx context.Context, s *appService, q core.Query, schema core.Schema[T], pick func(core.Snapshot) []T) (*core.Page[T], error) {
	if err := schema.Validate(q); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	page := core.ApplyQuery(pick(snap), q, schema)
	return &page, nil
}

// ── Query interpretation ─────────────────────────────────────────────────────

// entityRegistry lists the entities a query or histogram may target, with the
// status values the AI interpreter may choose from.
var entityRegistry = map[string]ai.EntityFields{
	"shipments": fieldsOf(core.ShipmentSchema,
		core.ShipmentPending, core.ShipmentProcessing, core.ShipmentInTransit,
		core.ShipmentDelivered, core.ShipmentDelayed, core.ShipmentCancelled),
	"vehicles": fieldsOf(core.VehicleSchema,
		core.VehicleAvailable, core.VehicleOnTrip, core.VehicleInMaintenance,
		core.VehicleIdle, core.VehicleInService),
	"drivers": fieldsOf(core.DriverSchema,
		core.DriverActive, core.DriverOffDuty, core.DriverOnLeave),
	"inventory": fieldsOf(core.InventorySchema,
		core.StockOutOfStock, core.StockLow, core.StockIn),
	"warehouses": fieldsOf[core.Warehouse, string](core.WarehouseSchema),
	"customers":  fieldsOf[core.Customer, string](core.CustomerSchema),
	"alerts": {
		Entity:   "alerts",
		Statuses: []string{string(core.AlertDelay), string(core.AlertMaintenance), string(core.AlertStock)},
	},
}

func fieldsOf[T any, S ~string](schema core.Schema[T], statuses ...S) ai.EntityFields {
	text, sortable, flags := schema.FieldNames()
	f := ai.EntityFields{Entity: schema.Entity, Text: text, Flags: flags, Sort: sortable}
	for _, st := range statuses {
		f.Statuses = append(f.Statuses, string(st))
	}
	return f
}

func unknownEntity(entity string) error {
	return fmt.Errorf("entity %q: %w", entity, core.ErrUnknownField)
}

func (s *appService) InterpretQuery(ctx context.Context, entity, text string) (*InterpretResult, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	fields, ok := entityRegistry[entity]
	if !ok || entity == "alerts" {
		return nil, unknownEntity(entity)
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.NewValidationError("text", "is required")
	}
	if s.agent == nil {
		return nil, ErrInterpreterUnavailable
	}

	in, err := s.agent.InterpretQuery(ctx, text, fields)
	if err != nil {
		return nil, err
	}
	if in.Clarification != "" {
		return &InterpretResult{
			Entity:          entity,
			IsClarification: true,
			Clarification:   in.Clarification,
			Reasoning:       in.Reasoning,
		}, nil
	}
	return &InterpretResult{Entity: entity, Query: in.Query, Reasoning: in.Reasoning}, nil
}

// ── Mutations ────────────────────────────────────────────────────────────────

func (s *appService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*core.Shipment, error) {
	sh, err := s.store.CreateShipment(ctx, req.toShipment())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewChange("shipment", sh.ID, events.ActionCreated, sh))
	return &sh, nil
}

func (s *appService) UpdateShipmentStatus(ctx context.Context, id string, status core.ShipmentStatus) (*core.Shipment, error) {
	sh, err := s.store.UpdateShipmentStatus(ctx, id, core.ShipmentStatus(strings.ToUpper(string(status))))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewChange("shipment", sh.ID, events.ActionUpdated, sh))
	return &sh, nil
}

func (s *appService) DeleteShipment(ctx context.Context, id string) error {
	if err := s.store.DeleteShipment(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewChange("shipment", id, events.ActionDeleted, nil))
	return nil
}

func (s *appService) SetVehicleStatus(ctx context.Context, id string, status core.VehicleStatus) (*core.Vehicle, error) {
	v, err := s.store.SetVehicleStatus(ctx, id, core.VehicleStatus(strings.ToUpper(string(status))))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewChange("vehicle", v.ID, events.ActionUpdated, v))
	return &v, nil
}

func (s *appService) AssignDriverVehicle(ctx context.Context, driverID, vehicleID string) (*core.Driver, error) {
	var vid *string
	if v := strings.TrimSpace(vehicleID); v != "" {
		vid = &v
	}
	d, err := s.store.AssignDriverVehicle(ctx, driverID, vid)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewChange("driver", d.ID, events.ActionUpdated, d))
	return &d, nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*core.StockLine, error) {
	line, err := s.store.AdjustStock(ctx, store.StockAdjustment{
		SKUID:         req.SKUID,
		WarehouseID:   req.WarehouseID,
		DeltaOnHand:   req.DeltaOnHand,
		DeltaReserved: req.DeltaReserved,
		Reason:        req.Reason,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewChange("stock_line", line.SKUID+"@"+line.WarehouseID, events.ActionUpdated, map[string]any{
		"line":   line,
		"reason": req.Reason,
	}))
	return &line, nil
}

func (s *appService) ResolveAlert(ctx context.Context, id string) (*core.Alert, error) {
	a, err := s.store.ResolveAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewChange("alert", a.ID, events.ActionUpdated, a))
	return &a, nil
}

// publish sends a change event. Failures are logged; the write has already happened.
func (s *appService) publish(ctx context.Context, c events.Change) {
	if err := s.publisher.Publish(ctx, c); err != nil {
		log.Printf("[EVENTS] failed to publish %s %s %s: %v", c.Entity, c.Action, c.EntityID, err)
	}
}
