package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"logistics-dashboard/internal/app"
	"logistics-dashboard/internal/core"
)

// ErrUnknownCommand is returned by Execute for names no command answers to.
var ErrUnknownCommand = errors.New("unknown command")

// Usage lists the commands with their aliases.
const Usage = `Commands:
  kpis | overview                 KPI cards and fleet health
  inventory | inv [search]        inventory status per SKU
  lowstock | low [threshold]      stock lines under the threshold
  value                           total stock value
  capacity | cap                  warehouse utilization
  trend [Mon Tue ...]             shipments per weekday
  shipments | ship [status ...]   shipment list, optionally by status
  vehicles [status ...]           vehicle list
  drivers [status ...]            driver list
  customers [search]              customer list
  routes                          shipment load per route
  dist <entity>                   status histogram (shipments, vehicles, drivers, inventory, alerts)
  set-status <shipment> <status>  update a shipment status
  resolve <alert>                 resolve an alert`

// Run executes a one-shot CLI command and exits on failure.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if err := Execute(ctx, svc, os.Stdout, args); err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			log.Fatalf("%v\n%s", err, Usage)
		}
		log.Fatalf("Error: %v", err)
	}
}

// Execute runs one command and writes its output to w. The REPL dispatches
// its slash commands through here as well.
func Execute(ctx context.Context, svc app.ApplicationService, w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: (none)", ErrUnknownCommand)
	}
	cmd := strings.ToLower(args[0])
	rest := args[1:]

	switch cmd {
	case "kpis", "overview":
		result, err := svc.Overview(ctx)
		if err != nil {
			return err
		}
		printOverview(w, result)

	case "inventory", "inv":
		page, err := svc.ListInventory(ctx, allRows(core.Query{}.WithSearch(strings.Join(rest, " "))))
		if err != nil {
			return err
		}
		printInventory(w, page)

	case "lowstock", "low":
		var threshold *int
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return core.NewValidationError("threshold", "%q is not a number", rest[0])
			}
			threshold = &n
		}
		result, err := svc.LowStock(ctx, threshold)
		if err != nil {
			return err
		}
		printLowStock(w, result)

	case "value":
		result, err := svc.InventoryValue(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Stock value: %s across %d SKUs\n", result.Total.StringFixed(2), result.Skus)

	case "capacity", "cap":
		caps, err := svc.WarehouseCapacity(ctx)
		if err != nil {
			return err
		}
		printCapacity(w, caps)

	case "trend":
		var days []time.Weekday
		for _, a := range rest {
			for _, part := range strings.Split(a, ",") {
				d, ok := core.ParseWeekday(part)
				if !ok {
					return core.NewValidationError("days", "unknown weekday %q", part)
				}
				days = append(days, d)
			}
		}
		trend, err := svc.VolumeTrend(ctx, days)
		if err != nil {
			return err
		}
		printTrend(w, trend)

	case "shipments", "ship":
		page, err := svc.ListShipments(ctx, allRows(core.Query{}.WithStatuses(upper(rest)...)))
		if err != nil {
			return err
		}
		PrintShipments(w, page)

	case "vehicles":
		page, err := svc.ListVehicles(ctx, allRows(core.Query{}.WithStatuses(upper(rest)...)))
		if err != nil {
			return err
		}
		printVehicles(w, page)

	case "drivers":
		page, err := svc.ListDrivers(ctx, allRows(core.Query{}.WithStatuses(upper(rest)...)))
		if err != nil {
			return err
		}
		printDrivers(w, page)

	case "customers":
		page, err := svc.ListCustomers(ctx, allRows(core.Query{}.WithSearch(strings.Join(rest, " "))))
		if err != nil {
			return err
		}
		printCustomers(w, page)

	case "routes":
		loads, err := svc.RouteLoad(ctx)
		if err != nil {
			return err
		}
		printRouteLoad(w, loads)

	case "dist", "distribution":
		if len(rest) < 1 {
			return core.NewValidationError("entity", "usage: dist <entity>")
		}
		result, err := svc.Distribution(ctx, rest[0])
		if err != nil {
			return err
		}
		printDistribution(w, result)

	case "set-status":
		if len(rest) < 2 {
			return core.NewValidationError("status", "usage: set-status <shipment-id> <status>")
		}
		s, err := svc.UpdateShipmentStatus(ctx, rest[0], core.ShipmentStatus(rest[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Shipment %s is now %s.\n", s.Reference, s.Status)

	case "resolve":
		if len(rest) < 1 {
			return core.NewValidationError("alert", "usage: resolve <alert-id>")
		}
		a, err := svc.ResolveAlert(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Alert %s resolved: %s\n", a.ID, a.Message)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}

// allRows asks for the largest page so one-shot listings are not cut at ten rows.
func allRows(q core.Query) core.Query {
	return q.WithPage(1, core.MaxPageSize)
}

func upper(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, strings.ToUpper(s))
	}
	return out
}
