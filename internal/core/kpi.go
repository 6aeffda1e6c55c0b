package core

// KpiSet holds the counters shown on the overview cards.
type KpiSet struct {
	ActiveShipments   int `json:"active_shipments"`
	DelayedShipments  int `json:"delayed_shipments"`
	VehiclesOnTrip    int `json:"vehicles_on_trip"`
	VehiclesInService int `json:"vehicles_in_service"`
	VehiclesAvailable int `json:"vehicles_available"`
	ActiveDrivers     int `json:"active_drivers"`
	Warehouses        int `json:"warehouses"`
	InventorySkus     int `json:"inventory_skus"`
}

// FleetHealth summarises the maintenance state of the fleet.
type FleetHealth struct {
	OpenIssues               int `json:"open_issues"`
	DocumentsDueSoon         int `json:"documents_due_soon"`
	VehiclesNeedingAttention int `json:"vehicles_needing_attention"`
}

// ComputeOverviewKpis counts the overview metrics in a single pass per collection.
// Delayed shipments are counted from unresolved DELAY alerts, not from shipment status.
func ComputeOverviewKpis(s Snapshot) KpiSet {
	var k KpiSet

	for _, sh := range s.Shipments {
		if sh.Status == ShipmentInTransit || sh.Status == ShipmentProcessing {
			k.ActiveShipments++
		}
	}
	for _, a := range s.Alerts {
		if a.Kind == AlertDelay && !a.Resolved {
			k.DelayedShipments++
		}
	}
	for _, v := range s.Vehicles {
		switch v.Status {
		case VehicleOnTrip:
			k.VehiclesOnTrip++
		case VehicleInService:
			k.VehiclesInService++
		case VehicleAvailable:
			k.VehiclesAvailable++
		}
	}
	for _, d := range s.Drivers {
		if d.Status == DriverActive {
			k.ActiveDrivers++
		}
	}

	k.Warehouses = len(s.Warehouses)
	k.InventorySkus = len(s.Catalog)
	return k
}

// ComputeFleetHealth counts open maintenance issues and documents due soon.
// A vehicle needs attention when it has at least one of either.
func ComputeFleetHealth(vehicles []Vehicle) FleetHealth {
	var h FleetHealth
	for _, v := range vehicles {
		issues := len(v.Maintenance.OpenIssues)
		due := 0
		for _, d := range v.Maintenance.Documents {
			if d.Status == DocumentDueSoon {
				due++
			}
		}
		h.OpenIssues += issues
		h.DocumentsDueSoon += due
		if issues > 0 || due > 0 {
			h.VehiclesNeedingAttention++
		}
	}
	return h
}
