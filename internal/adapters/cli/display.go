package cli

import (
	"fmt"
	"io"
	"strings"

	"logistics-dashboard/internal/app"
	"logistics-dashboard/internal/core"
)

const width = 72

func rule(w io.Writer, ch string) {
	fmt.Fprintln(w, strings.Repeat(ch, width))
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w)
	rule(w, "=")
	fmt.Fprintf(w, "  %s\n", s)
	rule(w, "=")
}

func printOverview(w io.Writer, r *app.OverviewResult) {
	title(w, "OVERVIEW — source "+r.Source)
	k := r.Kpis
	rows := []struct {
		label string
		value int
	}{
		{"Active shipments", k.ActiveShipments},
		{"Delayed shipments", k.DelayedShipments},
		{"Vehicles on trip", k.VehiclesOnTrip},
		{"Vehicles in service", k.VehiclesInService},
		{"Vehicles available", k.VehiclesAvailable},
		{"Active drivers", k.ActiveDrivers},
		{"Warehouses", k.Warehouses},
		{"Inventory SKUs", k.InventorySkus},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-28s %8d\n", row.label, row.value)
	}
	rule(w, "-")
	fmt.Fprintf(w, "  %-28s %8d\n", "Open maintenance issues", r.Fleet.OpenIssues)
	fmt.Fprintf(w, "  %-28s %8d\n", "Documents due soon", r.Fleet.DocumentsDueSoon)
	fmt.Fprintf(w, "  %-28s %8d\n", "Vehicles needing attention", r.Fleet.VehiclesNeedingAttention)
	rule(w, "=")
}

func printInventory(w io.Writer, page *core.Page[core.InventoryStatus]) {
	title(w, "INVENTORY")
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "  No SKUs found.")
		rule(w, "=")
		return
	}
	fmt.Fprintf(w, "  %-8s %-28s %8s  %-12s %s\n", "CODE", "NAME", "ON HAND", "STATUS", "WAREHOUSES")
	rule(w, "-")
	for _, s := range page.Items {
		fmt.Fprintf(w, "  %-8s %-28s %8d  %-12s %s\n",
			s.Code, truncate(s.Name, 28), s.OnHand, s.Status, strings.Join(s.WarehouseCodes, ","))
	}
	rule(w, "=")
}

func printLowStock(w io.Writer, r *app.LowStockResult) {
	title(w, fmt.Sprintf("LOW STOCK — under %d", r.Threshold))
	if len(r.Items) == 0 {
		fmt.Fprintln(w, "  Nothing under the threshold.")
		rule(w, "=")
		return
	}
	fmt.Fprintf(w, "  %-20s %-16s %10s\n", "SKU", "WAREHOUSE", "ON HAND")
	rule(w, "-")
	for _, i := range r.Items {
		fmt.Fprintf(w, "  %-20s %-16s %10d\n", i.SKUID, i.WarehouseID, i.Quantity)
	}
	rule(w, "=")
}

func printCapacity(w io.Writer, caps []core.CapacityUtilization) {
	title(w, "WAREHOUSE CAPACITY")
	fmt.Fprintf(w, "  %-8s %10s %10s\n", "CODE", "PALLETS", "VOLUME")
	rule(w, "-")
	for _, c := range caps {
		fmt.Fprintf(w, "  %-8s %9d%% %9d%%\n", c.Code, c.PalletPct, c.VolumePct)
	}
	rule(w, "=")
}

func printTrend(w io.Writer, trend []core.DayVolume) {
	title(w, "SHIPMENT VOLUME BY WEEKDAY")
	for _, d := range trend {
		fmt.Fprintf(w, "  %-4s %4d  %s\n", d.Day, d.Count, strings.Repeat("#", d.Count))
	}
	rule(w, "=")
}

// PrintShipments renders a page of shipments. Exported for the REPL.
func PrintShipments(w io.Writer, page *core.Page[core.Shipment]) {
	title(w, fmt.Sprintf("SHIPMENTS — %d total", page.Total))
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "  No shipments found.")
		rule(w, "=")
		return
	}
	fmt.Fprintf(w, "  %-12s %-11s %-14s %-14s %s\n", "REFERENCE", "STATUS", "ORIGIN", "DESTINATION", "CREATED")
	rule(w, "-")
	for _, s := range page.Items {
		fmt.Fprintf(w, "  %-12s %-11s %-14s %-14s %s\n",
			s.Reference, s.Status, truncate(s.Origin, 14), truncate(s.Destination, 14), s.CreatedAt.Format("2006-01-02 15:04"))
	}
	if page.TotalPages > 1 {
		fmt.Fprintf(w, "  page %d of %d\n", page.Page, page.TotalPages)
	}
	rule(w, "=")
}

func printVehicles(w io.Writer, page *core.Page[core.Vehicle]) {
	title(w, "VEHICLES")
	fmt.Fprintf(w, "  %-10s %-24s %-12s %s\n", "PLATE", "MODEL", "STATUS", "OPEN ISSUES")
	rule(w, "-")
	for _, v := range page.Items {
		fmt.Fprintf(w, "  %-10s %-24s %-12s %d\n", v.Plate, truncate(v.Model, 24), v.Status, len(v.Maintenance.OpenIssues))
	}
	rule(w, "=")
}

func printDrivers(w io.Writer, page *core.Page[core.Driver]) {
	title(w, "DRIVERS")
	fmt.Fprintf(w, "  %-8s %-22s %-10s %s\n", "ID", "NAME", "STATUS", "VEHICLE")
	rule(w, "-")
	for _, d := range page.Items {
		vehicle := "-"
		if d.AssignedVehicleID != nil && *d.AssignedVehicleID != "" {
			vehicle = *d.AssignedVehicleID
		}
		fmt.Fprintf(w, "  %-8s %-22s %-10s %s\n", d.ID, truncate(d.Name, 22), d.Status, vehicle)
	}
	rule(w, "=")
}

func printCustomers(w io.Writer, page *core.Page[core.Customer]) {
	title(w, "CUSTOMERS")
	fmt.Fprintf(w, "  %-8s %-26s %-14s %s\n", "ID", "NAME", "CITY", "ACTIVE")
	rule(w, "-")
	for _, c := range page.Items {
		active := "no"
		if c.Active {
			active = "yes"
		}
		fmt.Fprintf(w, "  %-8s %-26s %-14s %s\n", c.ID, truncate(c.Name, 26), c.City, active)
	}
	rule(w, "=")
}

func printRouteLoad(w io.Writer, loads []core.RouteLoad) {
	title(w, "ROUTE LOAD")
	fmt.Fprintf(w, "  %-8s %-24s %6s %9s %7s\n", "ROUTE", "NAME", "TOTAL", "DELIVERED", "PENDING")
	rule(w, "-")
	for _, l := range loads {
		fmt.Fprintf(w, "  %-8s %-24s %6d %9d %7d\n", l.RouteID, truncate(l.Name, 24), l.Shipments, l.Delivered, l.Pending)
	}
	rule(w, "=")
}

func printDistribution(w io.Writer, r *app.DistributionResult) {
	title(w, "STATUS DISTRIBUTION — "+r.Entity)
	for _, e := range core.DistributionEntries(r.Counts) {
		fmt.Fprintf(w, "  %-14s %5d\n", e.Status, e.Count)
	}
	rule(w, "=")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
