package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logistics-dashboard/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PostgresStore reads and writes the dashboard tables created by migrations/.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) Name() string { return "postgres" }

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresStore) Close() error { return nil }

// ── Snapshot ─────────────────────────────────────────────────────────────────

// Snapshot loads every collection concurrently. The first failing query
// cancels the rest.
func (s *PostgresStore) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { snap.Warehouses, err = s.warehouses(ctx); return })
	g.Go(func() (err error) { snap.Vehicles, err = s.vehicles(ctx); return })
	g.Go(func() (err error) { snap.Drivers, err = s.drivers(ctx); return })
	g.Go(func() (err error) { snap.Routes, err = s.routes(ctx); return })
	g.Go(func() (err error) { snap.Shipments, err = s.shipments(ctx); return })
	g.Go(func() (err error) { snap.Stock, err = s.stock(ctx); return })
	g.Go(func() (err error) { snap.Catalog, err = s.catalog(ctx); return })
	g.Go(func() (err error) { snap.Customers, err = s.customers(ctx); return })
	g.Go(func() (err error) { snap.Alerts, err = s.alerts(ctx); return })

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	snap.TakenAt = s.now().UTC()
	return snap, nil
}

func (s *PostgresStore) warehouses(ctx context.Context) ([]core.Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, city, used_pallets, max_pallets, used_volume_m3, max_volume_m3
		FROM warehouses
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	warehouses := []core.Warehouse{}
	for rows.Next() {
		var w core.Warehouse
		c := &w.Capacity
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.City,
			&c.UsedPallets, &c.MaxPallets, &c.UsedVolumeM3, &c.MaxVolumeM3); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (s *PostgresStore) vehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, plate, model, status, open_issues
		FROM vehicles
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []core.Vehicle{}
	index := make(map[string]int)
	for rows.Next() {
		var v core.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.Model, &v.Status, &v.Maintenance.OpenIssues); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		v.Maintenance.Documents = []core.VehicleDocument{}
		index[v.ID] = len(vehicles)
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vehicles: %w", err)
	}

	docRows, err := s.pool.Query(ctx, `
		SELECT vehicle_id, name, status, expires_at
		FROM vehicle_documents
		ORDER BY vehicle_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle documents: %w", err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var vehicleID string
		var d core.VehicleDocument
		if err := docRows.Scan(&vehicleID, &d.Name, &d.Status, &d.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle document: %w", err)
		}
		if i, ok := index[vehicleID]; ok {
			vehicles[i].Maintenance.Documents = append(vehicles[i].Maintenance.Documents, d)
		}
	}
	return vehicles, docRows.Err()
}

func (s *PostgresStore) drivers(ctx context.Context) ([]core.Driver, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, phone, license_number, status, assigned_vehicle_id
		FROM drivers
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	drivers := []core.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func scanDriver(row pgx.Row) (core.Driver, error) {
	var d core.Driver
	if err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNumber, &d.Status, &d.AssignedVehicleID); err != nil {
		return core.Driver{}, fmt.Errorf("failed to scan driver: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) routes(ctx context.Context) ([]core.Route, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, r.vehicle_id, r.driver_id,
		       COALESCE(array_agg(rs.shipment_id ORDER BY rs.position) FILTER (WHERE rs.shipment_id IS NOT NULL), '{}')
		FROM routes r
		LEFT JOIN route_shipments rs ON rs.route_id = r.id
		GROUP BY r.id
		ORDER BY r.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes := []core.Route{}
	for rows.Next() {
		var r core.Route
		if err := rows.Scan(&r.ID, &r.Name, &r.VehicleID, &r.DriverID, &r.ShipmentIDs); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

const shipmentCols = `id, reference, customer_id, origin, destination, status, created_at, eta`

func scanShipment(row pgx.Row) (core.Shipment, error) {
	var sh core.Shipment
	if err := row.Scan(&sh.ID, &sh.Reference, &sh.CustomerID, &sh.Origin, &sh.Destination,
		&sh.Status, &sh.CreatedAt, &sh.ETA); err != nil {
		return core.Shipment{}, err
	}
	return sh, nil
}

func (s *PostgresStore) shipments(ctx context.Context) ([]core.Shipment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+shipmentCols+` FROM shipments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer rows.Close()

	shipments := []core.Shipment{}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipment: %w", err)
		}
		shipments = append(shipments, sh)
	}
	return shipments, rows.Err()
}

func (s *PostgresStore) stock(ctx context.Context) ([]core.StockLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sku_id, warehouse_id, quantity_on_hand, quantity_reserved
		FROM stock_lines
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock lines: %w", err)
	}
	defer rows.Close()

	lines := []core.StockLine{}
	for rows.Next() {
		var l core.StockLine
		if err := rows.Scan(&l.SKUID, &l.WarehouseID, &l.QuantityOnHand, &l.QuantityReserved); err != nil {
			return nil, fmt.Errorf("failed to scan stock line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *PostgresStore) catalog(ctx context.Context) ([]core.CatalogItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, category, reorder_point, unit_price
		FROM catalog_items
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	items := []core.CatalogItem{}
	for rows.Next() {
		var c core.CatalogItem
		var price decimal.NullDecimal
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Category, &c.ReorderPoint, &price); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		if price.Valid {
			c.UnitPrice = &price.Decimal
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (s *PostgresStore) customers(ctx context.Context) ([]core.Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, phone, city, active
		FROM customers
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []core.Customer{}
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.City, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

const alertCols = `id, kind, shipment_id, message, resolved, created_at`

func scanAlert(row pgx.Row) (core.Alert, error) {
	var a core.Alert
	if err := row.Scan(&a.ID, &a.Kind, &a.ShipmentID, &a.Message, &a.Resolved, &a.CreatedAt); err != nil {
		return core.Alert{}, err
	}
	return a, nil
}

func (s *PostgresStore) alerts(ctx context.Context) ([]core.Alert, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+alertCols+` FROM alerts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []core.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ── Mutations ────────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateShipment(ctx context.Context, sh core.Shipment) (core.Shipment, error) {
	sh = prepareShipment(sh, s.now())
	if err := validateNewShipment(sh); err != nil {
		return core.Shipment{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO shipments (id, reference, customer_id, origin, destination, status, created_at, eta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+shipmentCols,
		sh.ID, sh.Reference, sh.CustomerID, sh.Origin, sh.Destination, sh.Status, sh.CreatedAt, sh.ETA)
	created, err := scanShipment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Shipment{}, core.NewValidationError("id", "shipment %s already exists", sh.ID)
		}
		return core.Shipment{}, fmt.Errorf("failed to insert shipment: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateShipmentStatus(ctx context.Context, id string, status core.ShipmentStatus) (core.Shipment, error) {
	if err := validateShipmentStatus(id, status); err != nil {
		return core.Shipment{}, err
	}
	row := s.pool.QueryRow(ctx, `UPDATE shipments SET status = $1 WHERE id = $2 RETURNING `+shipmentCols, status, id)
	sh, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Shipment{}, fmt.Errorf("shipment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Shipment{}, fmt.Errorf("failed to update shipment status: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) DeleteShipment(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shipment %s: %w", id, ErrNotFound)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM route_shipments WHERE shipment_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink shipment from routes: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) SetVehicleStatus(ctx context.Context, id string, status core.VehicleStatus) (core.Vehicle, error) {
	if err := validateVehicleStatus(id, status); err != nil {
		return core.Vehicle{}, err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE vehicles SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}

	vehicles, err := s.vehicles(ctx)
	if err != nil {
		return core.Vehicle{}, err
	}
	for _, v := range vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return core.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
}

func (s *PostgresStore) AssignDriverVehicle(ctx context.Context, driverID string, vehicleID *string) (core.Driver, error) {
	if err := validateID("driver_id", driverID); err != nil {
		return core.Driver{}, err
	}
	vehicleID = normalizeVehicleID(vehicleID)

	row := s.pool.QueryRow(ctx, `
		UPDATE drivers SET assigned_vehicle_id = $1 WHERE id = $2
		RETURNING id, name, phone, license_number, status, assigned_vehicle_id
	`, vehicleID, driverID)
	d, err := scanDriver(row)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return core.Driver{}, fmt.Errorf("driver %s: %w", driverID, ErrNotFound)
		case errors.As(err, &pgErr) && pgErr.Code == "23503":
			return core.Driver{}, fmt.Errorf("vehicle %s: %w", *vehicleID, ErrNotFound)
		}
		return core.Driver{}, err
	}
	return d, nil
}

func (s *PostgresStore) AdjustStock(ctx context.Context, adj StockAdjustment) (core.StockLine, error) {
	if err := validateAdjustment(adj); err != nil {
		return core.StockLine{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.StockLine{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM catalog_items WHERE id = $1)`, adj.SKUID).Scan(&exists); err != nil {
		return core.StockLine{}, fmt.Errorf("failed to look up sku: %w", err)
	}
	if !exists {
		return core.StockLine{}, fmt.Errorf("sku %s: %w", adj.SKUID, ErrNotFound)
	}

	var line core.StockLine
	err = tx.QueryRow(ctx, `
		UPDATE stock_lines
		SET quantity_on_hand = quantity_on_hand + $1, quantity_reserved = quantity_reserved + $2
		WHERE sku_id = $3 AND warehouse_id = $4
		RETURNING sku_id, warehouse_id, quantity_on_hand, quantity_reserved
	`, adj.DeltaOnHand, adj.DeltaReserved, adj.SKUID, adj.WarehouseID).
		Scan(&line.SKUID, &line.WarehouseID, &line.QuantityOnHand, &line.QuantityReserved)

	if errors.Is(err, pgx.ErrNoRows) {
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM warehouses WHERE id = $1)`, adj.WarehouseID).Scan(&exists); err != nil {
			return core.StockLine{}, fmt.Errorf("failed to look up warehouse: %w", err)
		}
		if !exists {
			return core.StockLine{}, fmt.Errorf("warehouse %s: %w", adj.WarehouseID, ErrNotFound)
		}
		line = core.StockLine{
			SKUID: adj.SKUID, WarehouseID: adj.WarehouseID,
			QuantityOnHand: adj.DeltaOnHand, QuantityReserved: adj.DeltaReserved,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO stock_lines (sku_id, warehouse_id, quantity_on_hand, quantity_reserved)
			VALUES ($1, $2, $3, $4)
		`, line.SKUID, line.WarehouseID, line.QuantityOnHand, line.QuantityReserved)
	}
	if err != nil {
		return core.StockLine{}, fmt.Errorf("failed to adjust stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.StockLine{}, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return line, nil
}

func (s *PostgresStore) ResolveAlert(ctx context.Context, id string) (core.Alert, error) {
	if err := validateID("id", id); err != nil {
		return core.Alert{}, err
	}
	row := s.pool.QueryRow(ctx, `UPDATE alerts SET resolved = true WHERE id = $1 RETURNING `+alertCols, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Alert{}, fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Alert{}, fmt.Errorf("failed to resolve alert: %w", err)
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
