package core

import (
	"cmp"
	"strings"
	"time"
)

var ShipmentSchema = Schema[Shipment]{
	Entity: "shipments",
	Text: map[string]func(Shipment) string{
		"reference":   func(s Shipment) string { return s.Reference },
		"origin":      func(s Shipment) string { return s.Origin },
		"destination": func(s Shipment) string { return s.Destination },
		"customer_id": func(s Shipment) string { return s.CustomerID },
	},
	Status: func(s Shipment) string { return string(s.Status) },
	Flags: map[string]func(Shipment) bool{
		"has_eta": func(s Shipment) bool { return s.ETA != nil },
	},
	Sort: map[string]func(a, b Shipment) int{
		"reference":  func(a, b Shipment) int { return strings.Compare(a.Reference, b.Reference) },
		"status":     func(a, b Shipment) int { return strings.Compare(string(a.Status), string(b.Status)) },
		"created_at": func(a, b Shipment) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"eta":        func(a, b Shipment) int { return compareTimePtr(a.ETA, b.ETA) },
	},
}

var VehicleSchema = Schema[Vehicle]{
	Entity: "vehicles",
	Text: map[string]func(Vehicle) string{
		"plate": func(v Vehicle) string { return v.Plate },
		"model": func(v Vehicle) string { return v.Model },
	},
	Status: func(v Vehicle) string { return string(v.Status) },
	Flags: map[string]func(Vehicle) bool{
		"has_open_issues": func(v Vehicle) bool { return len(v.Maintenance.OpenIssues) > 0 },
		"documents_due_soon": func(v Vehicle) bool {
			for _, d := range v.Maintenance.Documents {
				if d.Status == DocumentDueSoon {
					return true
				}
			}
			return false
		},
	},
	Sort: map[string]func(a, b Vehicle) int{
		"plate":  func(a, b Vehicle) int { return strings.Compare(a.Plate, b.Plate) },
		"model":  func(a, b Vehicle) int { return strings.Compare(a.Model, b.Model) },
		"status": func(a, b Vehicle) int { return strings.Compare(string(a.Status), string(b.Status)) },
	},
}

var DriverSchema = Schema[Driver]{
	Entity: "drivers",
	Text: map[string]func(Driver) string{
		"name":           func(d Driver) string { return d.Name },
		"phone":          func(d Driver) string { return d.Phone },
		"license_number": func(d Driver) string { return d.LicenseNumber },
	},
	Status: func(d Driver) string { return string(d.Status) },
	Flags: map[string]func(Driver) bool{
		"has_vehicle": func(d Driver) bool { return d.AssignedVehicleID != nil && *d.AssignedVehicleID != "" },
	},
	Sort: map[string]func(a, b Driver) int{
		"name":   func(a, b Driver) int { return strings.Compare(a.Name, b.Name) },
		"status": func(a, b Driver) int { return strings.Compare(string(a.Status), string(b.Status)) },
	},
}

var WarehouseSchema = Schema[Warehouse]{
	Entity: "warehouses",
	Text: map[string]func(Warehouse) string{
		"code": func(w Warehouse) string { return w.Code },
		"name": func(w Warehouse) string { return w.Name },
		"city": func(w Warehouse) string { return w.City },
	},
	Flags: map[string]func(Warehouse) bool{
		"full": func(w Warehouse) bool { return ComputeWarehouseCapacity(w).PalletPct >= 100 },
	},
	Sort: map[string]func(a, b Warehouse) int{
		"code": func(a, b Warehouse) int { return strings.Compare(a.Code, b.Code) },
		"name": func(a, b Warehouse) int { return strings.Compare(a.Name, b.Name) },
		"city": func(a, b Warehouse) int { return strings.Compare(a.City, b.City) },
		"pallet_pct": func(a, b Warehouse) int {
			return cmp.Compare(ComputeWarehouseCapacity(a).PalletPct, ComputeWarehouseCapacity(b).PalletPct)
		},
		"volume_pct": func(a, b Warehouse) int {
			return cmp.Compare(ComputeWarehouseCapacity(a).VolumePct, ComputeWarehouseCapacity(b).VolumePct)
		},
	},
}

var CustomerSchema = Schema[Customer]{
	Entity: "customers",
	Text: map[string]func(Customer) string{
		"name":  func(c Customer) string { return c.Name },
		"email": func(c Customer) string { return c.Email },
		"phone": func(c Customer) string { return c.Phone },
		"city":  func(c Customer) string { return c.City },
	},
	Flags: map[string]func(Customer) bool{
		"active": func(c Customer) bool { return c.Active },
	},
	Sort: map[string]func(a, b Customer) int{
		"name": func(a, b Customer) int { return strings.Compare(a.Name, b.Name) },
		"city": func(a, b Customer) int { return strings.Compare(a.City, b.City) },
	},
}

var InventorySchema = Schema[InventoryStatus]{
	Entity: "inventory",
	Text: map[string]func(InventoryStatus) string{
		"code":     func(i InventoryStatus) string { return i.Code },
		"name":     func(i InventoryStatus) string { return i.Name },
		"category": func(i InventoryStatus) string { return i.Category },
	},
	Status: func(i InventoryStatus) string { return string(i.Status) },
	Flags: map[string]func(InventoryStatus) bool{
		"negative": func(i InventoryStatus) bool { return i.OnHand < 0 },
	},
	Sort: map[string]func(a, b InventoryStatus) int{
		"code":       func(a, b InventoryStatus) int { return strings.Compare(a.Code, b.Code) },
		"name":       func(a, b InventoryStatus) int { return strings.Compare(a.Name, b.Name) },
		"on_hand":    func(a, b InventoryStatus) int { return cmp.Compare(a.OnHand, b.OnHand) },
		"unit_price": func(a, b InventoryStatus) int { return a.UnitPrice.Cmp(b.UnitPrice) },
	},
}

// compareTimePtr orders nil after every set time.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
