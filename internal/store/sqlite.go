package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"logistics-dashboard/internal/core"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteStore keeps the dashboard data in a single SQLite file.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open error: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Close() error { return s.db.Close() }

// ── Row types ────────────────────────────────────────────────────────────────

type sqliteWarehouse struct {
	ID           string          `db:"id"`
	Code         string          `db:"code"`
	Name         string          `db:"name"`
	City         string          `db:"city"`
	UsedPallets  int             `db:"used_pallets"`
	MaxPallets   int             `db:"max_pallets"`
	UsedVolumeM3 decimal.Decimal `db:"used_volume_m3"`
	MaxVolumeM3  decimal.Decimal `db:"max_volume_m3"`
}

type sqliteVehicle struct {
	ID          string `db:"id"`
	Plate       string `db:"plate"`
	Model       string `db:"model"`
	Status      string `db:"status"`
	Maintenance string `db:"maintenance"`
}

type sqliteCatalogItem struct {
	ID           string              `db:"id"`
	Code         string              `db:"code"`
	Name         string              `db:"name"`
	Category     string              `db:"category"`
	ReorderPoint int                 `db:"reorder_point"`
	UnitPrice    decimal.NullDecimal `db:"unit_price"`
}

type sqliteRoute struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	VehicleID *string `db:"vehicle_id"`
	DriverID  *string `db:"driver_id"`
}

type sqliteRouteShipment struct {
	RouteID    string `db:"route_id"`
	ShipmentID string `db:"shipment_id"`
}

func (w sqliteWarehouse) toCore() core.Warehouse {
	return core.Warehouse{
		ID: w.ID, Code: w.Code, Name: w.Name, City: w.City,
		Capacity: core.WarehouseCapacity{
			UsedPallets: w.UsedPallets, MaxPallets: w.MaxPallets,
			UsedVolumeM3: w.UsedVolumeM3, MaxVolumeM3: w.MaxVolumeM3,
		},
	}
}

func (v sqliteVehicle) toCore() (core.Vehicle, error) {
	out := core.Vehicle{ID: v.ID, Plate: v.Plate, Model: v.Model, Status: core.VehicleStatus(v.Status)}
	if v.Maintenance != "" {
		if err := json.Unmarshal([]byte(v.Maintenance), &out.Maintenance); err != nil {
			return core.Vehicle{}, fmt.Errorf("vehicle %s maintenance: %w", v.ID, err)
		}
	}
	return out, nil
}

func (c sqliteCatalogItem) toCore() core.CatalogItem {
	item := core.CatalogItem{ID: c.ID, Code: c.Code, Name: c.Name, Category: c.Category, ReorderPoint: c.ReorderPoint}
	if c.UnitPrice.Valid {
		price := c.UnitPrice.Decimal
		item.UnitPrice = &price
	}
	return item
}

// ── Snapshot ─────────────────────────────────────────────────────────────────

const (
	sqliteDriverCols   = `id, name, phone, license_number AS licensenumber, status, assigned_vehicle_id AS assignedvehicleid`
	sqliteShipmentCols = `id, reference, customer_id AS customerid, origin, destination, status, created_at AS createdat, eta`
	sqliteStockCols    = `sku_id AS skuid, warehouse_id AS warehouseid, quantity_on_hand AS quantityonhand, quantity_reserved AS quantityreserved`
	sqliteAlertCols    = `id, kind, shipment_id AS shipmentid, message, resolved, created_at AS createdat`
	sqliteCustomerCols = `id, name, email, phone, city, active`
)

func (s *SQLiteStore) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	var warehouses []sqliteWarehouse
	if err := s.db.SelectContext(ctx, &warehouses, `SELECT * FROM warehouses ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query warehouses: %w", err)
	}
	snap.Warehouses = make([]core.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		snap.Warehouses = append(snap.Warehouses, w.toCore())
	}

	var vehicles []sqliteVehicle
	if err := s.db.SelectContext(ctx, &vehicles, `SELECT * FROM vehicles ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query vehicles: %w", err)
	}
	snap.Vehicles = make([]core.Vehicle, 0, len(vehicles))
	for _, row := range vehicles {
		v, err := row.toCore()
		if err != nil {
			return core.Snapshot{}, err
		}
		snap.Vehicles = append(snap.Vehicles, v)
	}

	if err := s.db.SelectContext(ctx, &snap.Drivers, `SELECT `+sqliteDriverCols+` FROM drivers ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query drivers: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snap.Shipments, `SELECT `+sqliteShipmentCols+` FROM shipments ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query shipments: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snap.Stock, `SELECT `+sqliteStockCols+` FROM stock_lines ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query stock lines: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snap.Customers, `SELECT `+sqliteCustomerCols+` FROM customers ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query customers: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snap.Alerts, `SELECT `+sqliteAlertCols+` FROM alerts ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query alerts: %w", err)
	}

	var catalog []sqliteCatalogItem
	if err := s.db.SelectContext(ctx, &catalog, `SELECT * FROM catalog_items ORDER BY rowid`); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query catalog: %w", err)
	}
	snap.Catalog = make([]core.CatalogItem, 0, len(catalog))
	for _, c := range catalog {
		snap.Catalog = append(snap.Catalog, c.toCore())
	}

	routes, err := s.routes(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap.Routes = routes

	snap.TakenAt = s.now().UTC()
	return snap, nil
}

func (s *SQLiteStore) routes(ctx context.Context) ([]core.Route, error) {
	var rows []sqliteRoute
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM routes ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	var links []sqliteRouteShipment
	if err := s.db.SelectContext(ctx, &links,
		`SELECT route_id, shipment_id FROM route_shipments ORDER BY route_id, position`); err != nil {
		return nil, fmt.Errorf("failed to query route shipments: %w", err)
	}

	byRoute := make(map[string][]string)
	for _, l := range links {
		byRoute[l.RouteID] = append(byRoute[l.RouteID], l.ShipmentID)
	}

	routes := make([]core.Route, 0, len(rows))
	for _, r := range rows {
		ids := byRoute[r.ID]
		if ids == nil {
			ids = []string{}
		}
		routes = append(routes, core.Route{ID: r.ID, Name: r.Name, VehicleID: r.VehicleID, DriverID: r.DriverID, ShipmentIDs: ids})
	}
	return routes, nil
}

// ── Import ───────────────────────────────────────────────────────────────────

// Import replaces every table with the contents of snap in one transaction.
func (s *SQLiteStore) Import(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"route_shipments", "routes", "alerts", "stock_lines", "catalog_items",
		"shipments", "customers", "drivers", "vehicles", "warehouses",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, w := range snap.Warehouses {
		c := w.Capacity
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO warehouses (id, code, name, city, used_pallets, max_pallets, used_volume_m3, max_volume_m3)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, w.Code, w.Name, w.City, c.UsedPallets, c.MaxPallets, c.UsedVolumeM3, c.MaxVolumeM3); err != nil {
			return fmt.Errorf("failed to insert warehouse %s: %w", w.ID, err)
		}
	}
	for _, v := range snap.Vehicles {
		maintenance, err := json.Marshal(v.Maintenance)
		if err != nil {
			return fmt.Errorf("failed to encode vehicle %s maintenance: %w", v.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO vehicles (id, plate, model, status, maintenance) VALUES (?, ?, ?, ?, ?)`,
			v.ID, v.Plate, v.Model, v.Status, string(maintenance)); err != nil {
			return fmt.Errorf("failed to insert vehicle %s: %w", v.ID, err)
		}
	}
	for _, d := range snap.Drivers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO drivers (id, name, phone, license_number, status, assigned_vehicle_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.Name, d.Phone, d.LicenseNumber, d.Status, d.AssignedVehicleID); err != nil {
			return fmt.Errorf("failed to insert driver %s: %w", d.ID, err)
		}
	}
	for _, c := range snap.Customers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO customers (id, name, email, phone, city, active) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Email, c.Phone, c.City, c.Active); err != nil {
			return fmt.Errorf("failed to insert customer %s: %w", c.ID, err)
		}
	}
	for _, sh := range snap.Shipments {
		if err := insertSQLiteShipment(ctx, tx, sh); err != nil {
			return err
		}
	}
	for _, c := range snap.Catalog {
		var price any
		if c.UnitPrice != nil {
			price = c.UnitPrice.String()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_items (id, code, name, category, reorder_point, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Code, c.Name, c.Category, c.ReorderPoint, price); err != nil {
			return fmt.Errorf("failed to insert catalog item %s: %w", c.ID, err)
		}
	}
	for _, l := range snap.Stock {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_lines (sku_id, warehouse_id, quantity_on_hand, quantity_reserved)
			VALUES (?, ?, ?, ?)`,
			l.SKUID, l.WarehouseID, l.QuantityOnHand, l.QuantityReserved); err != nil {
			return fmt.Errorf("failed to insert stock line %s/%s: %w", l.SKUID, l.WarehouseID, err)
		}
	}
	for _, a := range snap.Alerts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO alerts (id, kind, shipment_id, message, resolved, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Kind, a.ShipmentID, a.Message, a.Resolved, a.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert alert %s: %w", a.ID, err)
		}
	}
	for _, r := range snap.Routes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO routes (id, name, vehicle_id, driver_id) VALUES (?, ?, ?, ?)`,
			r.ID, r.Name, r.VehicleID, r.DriverID); err != nil {
			return fmt.Errorf("failed to insert route %s: %w", r.ID, err)
		}
		for pos, shipmentID := range r.ShipmentIDs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO route_shipments (route_id, shipment_id, position) VALUES (?, ?, ?)`,
				r.ID, shipmentID, pos); err != nil {
				return fmt.Errorf("failed to link shipment %s to route %s: %w", shipmentID, r.ID, err)
			}
		}
	}

	return tx.Commit()
}

func insertSQLiteShipment(ctx context.Context, tx *sqlx.Tx, sh core.Shipment) error {
	var eta any
	if sh.ETA != nil {
		eta = sh.ETA.UTC()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shipments (id, reference, customer_id, origin, destination, status, created_at, eta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.Reference, sh.CustomerID, sh.Origin, sh.Destination, sh.Status, sh.CreatedAt.UTC(), eta)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return core.NewValidationError("id", "shipment %s already exists", sh.ID)
		}
		return fmt.Errorf("failed to insert shipment %s: %w", sh.ID, err)
	}
	return nil
}

// ── Mutations ────────────────────────────────────────────────────────────────

func (s *SQLiteStore) CreateShipment(ctx context.Context, sh core.Shipment) (core.Shipment, error) {
	sh = prepareShipment(sh, s.now())
	if err := validateNewShipment(sh); err != nil {
		return core.Shipment{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Shipment{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSQLiteShipment(ctx, tx, sh); err != nil {
		return core.Shipment{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Shipment{}, fmt.Errorf("failed to commit shipment: %w", err)
	}
	return s.shipment(ctx, sh.ID)
}

func (s *SQLiteStore) UpdateShipmentStatus(ctx context.Context, id string, status core.ShipmentStatus) (core.Shipment, error) {
	if err := validateShipmentStatus(id, status); err != nil {
		return core.Shipment{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE shipments SET status = ? WHERE id = ?`, status, id)
	if err := affectedOne(res, err, "shipment", id); err != nil {
		return core.Shipment{}, err
	}
	return s.shipment(ctx, id)
}

func (s *SQLiteStore) DeleteShipment(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM shipments WHERE id = ?`, id)
	if err := affectedOne(res, err, "shipment", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM route_shipments WHERE shipment_id = ?`, id); err != nil {
		return fmt.Errorf("failed to unlink shipment %s from routes: %w", id, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SetVehicleStatus(ctx context.Context, id string, status core.VehicleStatus) (core.Vehicle, error) {
	if err := validateVehicleStatus(id, status); err != nil {
		return core.Vehicle{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE vehicles SET status = ? WHERE id = ?`, status, id)
	if err := affectedOne(res, err, "vehicle", id); err != nil {
		return core.Vehicle{}, err
	}

	var row sqliteVehicle
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM vehicles WHERE id = ?`, id); err != nil {
		return core.Vehicle{}, fmt.Errorf("failed to reload vehicle %s: %w", id, err)
	}
	return row.toCore()
}

func (s *SQLiteStore) AssignDriverVehicle(ctx context.Context, driverID string, vehicleID *string) (core.Driver, error) {
	if err := validateID("driver_id", driverID); err != nil {
		return core.Driver{}, err
	}
	vehicleID = normalizeVehicleID(vehicleID)

	if vehicleID != nil {
		var n int
		if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM vehicles WHERE id = ?`, *vehicleID); err != nil {
			return core.Driver{}, fmt.Errorf("failed to look up vehicle: %w", err)
		}
		if n == 0 {
			return core.Driver{}, fmt.Errorf("vehicle %s: %w", *vehicleID, ErrNotFound)
		}
	}

	res, err := s.db.ExecContext(ctx, `UPDATE drivers SET assigned_vehicle_id = ? WHERE id = ?`, vehicleID, driverID)
	if err := affectedOne(res, err, "driver", driverID); err != nil {
		return core.Driver{}, err
	}

	var d core.Driver
	if err := s.db.GetContext(ctx, &d, `SELECT `+sqliteDriverCols+` FROM drivers WHERE id = ?`, driverID); err != nil {
		return core.Driver{}, fmt.Errorf("failed to reload driver %s: %w", driverID, err)
	}
	return d, nil
}

func (s *SQLiteStore) AdjustStock(ctx context.Context, adj StockAdjustment) (core.StockLine, error) {
	if err := validateAdjustment(adj); err != nil {
		return core.StockLine{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.StockLine{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM catalog_items WHERE id = ?`, adj.SKUID); err != nil {
		return core.StockLine{}, fmt.Errorf("failed to look up sku: %w", err)
	}
	if n == 0 {
		return core.StockLine{}, fmt.Errorf("sku %s: %w", adj.SKUID, ErrNotFound)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE stock_lines
		SET quantity_on_hand = quantity_on_hand + ?, quantity_reserved = quantity_reserved + ?
		WHERE sku_id = ? AND warehouse_id = ?`,
		adj.DeltaOnHand, adj.DeltaReserved, adj.SKUID, adj.WarehouseID)
	if err != nil {
		return core.StockLine{}, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM warehouses WHERE id = ?`, adj.WarehouseID); err != nil {
			return core.StockLine{}, fmt.Errorf("failed to look up warehouse: %w", err)
		}
		if n == 0 {
			return core.StockLine{}, fmt.Errorf("warehouse %s: %w", adj.WarehouseID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_lines (sku_id, warehouse_id, quantity_on_hand, quantity_reserved)
			VALUES (?, ?, ?, ?)`,
			adj.SKUID, adj.WarehouseID, adj.DeltaOnHand, adj.DeltaReserved); err != nil {
			return core.StockLine{}, fmt.Errorf("failed to create stock line: %w", err)
		}
	}

	var line core.StockLine
	if err := tx.GetContext(ctx, &line, `SELECT `+sqliteStockCols+` FROM stock_lines WHERE sku_id = ? AND warehouse_id = ?`,
		adj.SKUID, adj.WarehouseID); err != nil {
		return core.StockLine{}, fmt.Errorf("failed to reload stock line: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.StockLine{}, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return line, nil
}

func (s *SQLiteStore) ResolveAlert(ctx context.Context, id string) (core.Alert, error) {
	if err := validateID("id", id); err != nil {
		return core.Alert{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET resolved = 1 WHERE id = ?`, id)
	if err := affectedOne(res, err, "alert", id); err != nil {
		return core.Alert{}, err
	}
	var a core.Alert
	if err := s.db.GetContext(ctx, &a, `SELECT `+sqliteAlertCols+` FROM alerts WHERE id = ?`, id); err != nil {
		return core.Alert{}, fmt.Errorf("failed to reload alert %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLiteStore) shipment(ctx context.Context, id string) (core.Shipment, error) {
	var sh core.Shipment
	err := s.db.GetContext(ctx, &sh, `SELECT `+sqliteShipmentCols+` FROM shipments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Shipment{}, fmt.Errorf("shipment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Shipment{}, fmt.Errorf("failed to load shipment %s: %w", id, err)
	}
	return sh, nil
}

func affectedOne(res sql.Result, err error, entity, id string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
