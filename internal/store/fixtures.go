package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"logistics-dashboard/internal/core"
)

//go:embed fixtures/dashboard.json
var fixtureJSON []byte

// LoadFixtures decodes the embedded demo dataset.
func LoadFixtures() (core.Snapshot, error) {
	var s core.Snapshot
	if err := json.Unmarshal(fixtureJSON, &s); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return s, nil
}

// MemoryStore keeps a snapshot in memory. Mutations apply to the in-memory
// copy only and are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data core.Snapshot
	now  func() time.Time
}

// NewFixtureStore returns a MemoryStore loaded with the embedded demo dataset.
func NewFixtureStore() (*MemoryStore, error) {
	s, err := LoadFixtures()
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(s), nil
}

// NewMemoryStore returns a MemoryStore holding a private copy of s.
func NewMemoryStore(s core.Snapshot) *MemoryStore {
	return &MemoryStore{data: cloneSnapshot(s), now: time.Now}
}

func (m *MemoryStore) Name() string { return "fixtures" }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Snapshot(ctx context.Context) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := cloneSnapshot(m.data)
	s.TakenAt = m.now().UTC()
	return s, nil
}

func (m *MemoryStore) Import(ctx context.Context, s core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = cloneSnapshot(s)
	return nil
}

func (m *MemoryStore) CreateShipment(ctx context.Context, s core.Shipment) (core.Shipment, error) {
	s = prepareShipment(s, m.now())
	if err := validateNewShipment(s); err != nil {
		return core.Shipment{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.data.Shipments, func(x core.Shipment) bool { return x.ID == s.ID }) {
		return core.Shipment{}, core.NewValidationError("id", "shipment %s already exists", s.ID)
	}
	m.data.Shipments = append(m.data.Shipments, s)
	return s, nil
}

func (m *MemoryStore) UpdateShipmentStatus(ctx context.Context, id string, status core.ShipmentStatus) (core.Shipment, error) {
	if err := validateShipmentStatus(id, status); err != nil {
		return core.Shipment{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.data.Shipments, func(x core.Shipment) bool { return x.ID == id })
	if i < 0 {
		return core.Shipment{}, fmt.Errorf("shipment %s: %w", id, ErrNotFound)
	}
	m.data.Shipments[i].Status = status
	return m.data.Shipments[i], nil
}

// DeleteShipment removes the shipment and drops its id from every route.
func (m *MemoryStore) DeleteShipment(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.data.Shipments, func(x core.Shipment) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("shipment %s: %w", id, ErrNotFound)
	}
	m.data.Shipments = slices.Delete(m.data.Shipments, i, i+1)
	for r := range m.data.Routes {
		m.data.Routes[r].ShipmentIDs = slices.DeleteFunc(m.data.Routes[r].ShipmentIDs, func(s string) bool { return s == id })
	}
	return nil
}

func (m *MemoryStore) SetVehicleStatus(ctx context.Context, id string, status core.VehicleStatus) (core.Vehicle, error) {
	if err := validateVehicleStatus(id, status); err != nil {
		return core.Vehicle{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.data.Vehicles, func(v core.Vehicle) bool { return v.ID == id })
	if i < 0 {
		return core.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	m.data.Vehicles[i].Status = status
	return cloneVehicle(m.data.Vehicles[i]), nil
}

func (m *MemoryStore) AssignDriverVehicle(ctx context.Context, driverID string, vehicleID *string) (core.Driver, error) {
	if err := validateID("driver_id", driverID); err != nil {
		return core.Driver{}, err
	}
	vehicleID = normalizeVehicleID(vehicleID)

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.data.Drivers, func(d core.Driver) bool { return d.ID == driverID })
	if i < 0 {
		return core.Driver{}, fmt.Errorf("driver %s: %w", driverID, ErrNotFound)
	}
	if vehicleID != nil && !slices.ContainsFunc(m.data.Vehicles, func(v core.Vehicle) bool { return v.ID == *vehicleID }) {
		return core.Driver{}, fmt.Errorf("vehicle %s: %w", *vehicleID, ErrNotFound)
	}
	m.data.Drivers[i].AssignedVehicleID = vehicleID
	return m.data.Drivers[i], nil
}

func (m *MemoryStore) AdjustStock(ctx context.Context, adj StockAdjustment) (core.StockLine, error) {
	if err := validateAdjustment(adj); err != nil {
		return core.StockLine{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.ContainsFunc(m.data.Catalog, func(c core.CatalogItem) bool { return c.ID == adj.SKUID }) {
		return core.StockLine{}, fmt.Errorf("sku %s: %w", adj.SKUID, ErrNotFound)
	}

	i := slices.IndexFunc(m.data.Stock, func(l core.StockLine) bool {
		return l.SKUID == adj.SKUID && l.WarehouseID == adj.WarehouseID
	})
	if i < 0 {
		if !slices.ContainsFunc(m.data.Warehouses, func(w core.Warehouse) bool { return w.ID == adj.WarehouseID }) {
			return core.StockLine{}, fmt.Errorf("warehouse %s: %w", adj.WarehouseID, ErrNotFound)
		}
		m.data.Stock = append(m.data.Stock, core.StockLine{SKUID: adj.SKUID, WarehouseID: adj.WarehouseID})
		i = len(m.data.Stock) - 1
	}
	m.data.Stock[i].QuantityOnHand += adj.DeltaOnHand
	m.data.Stock[i].QuantityReserved += adj.DeltaReserved
	return m.data.Stock[i], nil
}

func (m *MemoryStore) ResolveAlert(ctx context.Context, id string) (core.Alert, error) {
	if err := validateID("id", id); err != nil {
		return core.Alert{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.data.Alerts, func(a core.Alert) bool { return a.ID == id })
	if i < 0 {
		return core.Alert{}, fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	m.data.Alerts[i].Resolved = true
	return m.data.Alerts[i], nil
}

// cloneSnapshot copies every slice so that callers cannot alias store state.
// Scalar pointer fields are shared; they are never written through.
func cloneSnapshot(s core.Snapshot) core.Snapshot {
	out := core.Snapshot{
		Warehouses: slices.Clone(s.Warehouses),
		Drivers:    slices.Clone(s.Drivers),
		Shipments:  slices.Clone(s.Shipments),
		Stock:      slices.Clone(s.Stock),
		Catalog:    slices.Clone(s.Catalog),
		Customers:  slices.Clone(s.Customers),
		Alerts:     slices.Clone(s.Alerts),
		TakenAt:    s.TakenAt,
	}
	out.Vehicles = make([]core.Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		out.Vehicles[i] = cloneVehicle(v)
	}
	out.Routes = make([]core.Route, len(s.Routes))
	for i, r := range s.Routes {
		r.ShipmentIDs = slices.Clone(r.ShipmentIDs)
		out.Routes[i] = r
	}
	return out
}

func cloneVehicle(v core.Vehicle) core.Vehicle {
	v.Maintenance.OpenIssues = slices.Clone(v.Maintenance.OpenIssues)
	v.Maintenance.Documents = slices.Clone(v.Maintenance.Documents)
	return v
}
