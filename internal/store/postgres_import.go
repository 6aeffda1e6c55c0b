package store

import (
	"context"
	"fmt"

	"logistics-dashboard/internal/core"

	"github.com/jackc/pgx/v5"
)

// Import upserts every row of snap in one transaction. Rows not present in
// snap are left alone, so running it twice is safe. Vehicle documents and
// route memberships are replaced for the vehicles and routes in snap.
func (s *PostgresStore) Import(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}

	for _, w := range snap.Warehouses {
		c := w.Capacity
		batch.Queue(`
			INSERT INTO warehouses (id, code, name, city, used_pallets, max_pallets, used_volume_m3, max_volume_m3)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
			    code = EXCLUDED.code, name = EXCLUDED.name, city = EXCLUDED.city,
			    used_pallets = EXCLUDED.used_pallets, max_pallets = EXCLUDED.max_pallets,
			    used_volume_m3 = EXCLUDED.used_volume_m3, max_volume_m3 = EXCLUDED.max_volume_m3`,
			w.ID, w.Code, w.Name, w.City, c.UsedPallets, c.MaxPallets, c.UsedVolumeM3, c.MaxVolumeM3)
	}

	for _, v := range snap.Vehicles {
		issues := v.Maintenance.OpenIssues
		if issues == nil {
			issues = []string{}
		}
		batch.Queue(`
			INSERT INTO vehicles (id, plate, model, status, open_issues)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
			    plate = EXCLUDED.plate, model = EXCLUDED.model,
			    status = EXCLUDED.status, open_issues = EXCLUDED.open_issues`,
			v.ID, v.Plate, v.Model, v.Status, issues)
		batch.Queue(`DELETE FROM vehicle_documents WHERE vehicle_id = $1`, v.ID)
		for pos, d := range v.Maintenance.Documents {
			batch.Queue(`
				INSERT INTO vehicle_documents (vehicle_id, position, name, status, expires_at)
				VALUES ($1, $2, $3, $4, $5)`,
				v.ID, pos, d.Name, d.Status, d.ExpiresAt)
		}
	}

	for _, d := range snap.Drivers {
		batch.Queue(`
			INSERT INTO drivers (id, name, phone, license_number, status, assigned_vehicle_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
			    name = EXCLUDED.name, phone = EXCLUDED.phone, license_number = EXCLUDED.license_number,
			    status = EXCLUDED.status, assigned_vehicle_id = EXCLUDED.assigned_vehicle_id`,
			d.ID, d.Name, d.Phone, d.LicenseNumber, d.Status, d.AssignedVehicleID)
	}

	for _, c := range snap.Customers {
		batch.Queue(`
			INSERT INTO customers (id, name, email, phone, city, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
			    name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
			    city = EXCLUDED.city, active = EXCLUDED.active`,
			c.ID, c.Name, c.Email, c.Phone, c.City, c.Active)
	}

	for _, sh := range snap.Shipments {
		batch.Queue(`
			INSERT INTO shipments (id, reference, customer_id, origin, destination, status, created_at, eta)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
			    reference = EXCLUDED.reference, customer_id = EXCLUDED.customer_id,
			    origin = EXCLUDED.origin, destination = EXCLUDED.destination,
			    status = EXCLUDED.status, created_at = EXCLUDED.created_at, eta = EXCLUDED.eta`,
			sh.ID, sh.Reference, sh.CustomerID, sh.Origin, sh.Destination, sh.Status, sh.CreatedAt, sh.ETA)
	}

	for _, c := range snap.Catalog {
		batch.Queue(`
			INSERT INTO catalog_items (id, code, name, category, reorder_point, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
			    code = EXCLUDED.code, name = EXCLUDED.name, category = EXCLUDED.category,
			    reorder_point = EXCLUDED.reorder_point, unit_price = EXCLUDED.unit_price`,
			c.ID, c.Code, c.Name, c.Category, c.ReorderPoint, c.UnitPrice)
	}

	for _, l := range snap.Stock {
		batch.Queue(`
			INSERT INTO stock_lines (sku_id, warehouse_id, quantity_on_hand, quantity_reserved)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (sku_id, warehouse_id) DO UPDATE SET
			    quantity_on_hand = EXCLUDED.quantity_on_hand,
			    quantity_reserved = EXCLUDED.quantity_reserved`,
			l.SKUID, l.WarehouseID, l.QuantityOnHand, l.QuantityReserved)
	}

	for _, a := range snap.Alerts {
		batch.Queue(`
			INSERT INTO alerts (id, kind, shipment_id, message, resolved, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
			    kind = EXCLUDED.kind, shipment_id = EXCLUDED.shipment_id,
			    message = EXCLUDED.message, resolved = EXCLUDED.resolved`,
			a.ID, a.Kind, a.ShipmentID, a.Message, a.Resolved, a.CreatedAt)
	}

	for _, r := range snap.Routes {
		batch.Queue(`
			INSERT INTO routes (id, name, vehicle_id, driver_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
			    name = EXCLUDED.name, vehicle_id = EXCLUDED.vehicle_id, driver_id = EXCLUDED.driver_id`,
			r.ID, r.Name, r.VehicleID, r.DriverID)
		batch.Queue(`DELETE FROM route_shipments WHERE route_id = $1`, r.ID)
		for pos, shipmentID := range r.ShipmentIDs {
			batch.Queue(`INSERT INTO route_shipments (route_id, shipment_id, position) VALUES ($1, $2, $3)`,
				r.ID, shipmentID, pos)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}
	return tx.Commit(ctx)
}
