package app_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"logistics-dashboard/internal/ai"
	"logistics-dashboard/internal/app"
	"logistics-dashboard/internal/core"
	"logistics-dashboard/internal/events"
	"logistics-dashboard/internal/store"

	"github.com/shopspring/decimal"
)

// recordingPublisher captures published changes and can be told to fail.
type recordingPublisher struct {
	changes []events.Change
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, c events.Change) error {
	if p.err != nil {
		return p.err
	}
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// stubInterpreter returns a fixed interpretation and records what it was asked.
type stubInterpreter struct {
	result *ai.Interpretation
	fields ai.EntityFields
	text   string
}

func (s *stubInterpreter) InterpretQuery(ctx context.Context, text string, fields ai.EntityFields) (*ai.Interpretation, error) {
	s.text = text
	s.fields = fields
	return s.result, nil
}

func newService(t *testing.T, pub events.Publisher, agent ai.QueryInterpreter, settings app.Settings) app.ApplicationService {
	t.Helper()
	st, err := store.NewFixtureStore()
	if err != nil {
		t.Fatalf("NewFixtureStore failed: %v", err)
	}
	return app.NewAppService(st, pub, agent, settings)
}

// blockingStore holds Snapshot until release is closed and fails if the
// context it was given has been cancelled by then.
type blockingStore struct {
	store.Store
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Snapshot(ctx context.Context) (core.Snapshot, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}
	return b.Store.Snapshot(ctx)
}

func TestSnapshot_CancelledCallerDoesNotFailOthers(t *testing.T) {
	st, err := store.NewFixtureStore()
	if err != nil {
		t.Fatalf("NewFixtureStore failed: %v", err)
	}
	slow := &blockingStore{Store: st, started: make(chan struct{}), release: make(chan struct{})}
	svc := app.NewAppService(slow, nil, nil, app.Settings{})

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Overview(ctxA)
		errA <- err
	}()
	<-slow.started

	errB := make(chan error, 1)
	go func() {
		_, err := svc.Overview(context.Background())
		errB <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the cancelled caller to get context.Canceled, got %v", err)
	}

	close(slow.release)
	select {
	case err := <-errB:
		if err != nil {
			t.Errorf("expected the other caller to succeed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not return")
	}
}

func TestOverview(t *testing.T) {
	svc := newService(t, nil, nil, app.Settings{})
	got, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	want := core.KpiSet{
		ActiveShipments:   4,
		DelayedShipments:  1,
		VehiclesOnTrip:    2,
		VehiclesInService: 1,
		VehiclesAvailable: 1,
		ActiveDrivers:     4,
		Warehouses:        4,
		InventorySkus:     8,
	}
	if got.Kpis != want {
		t.Errorf("kpis: expected %+v, got %+v", want, got.Kpis)
	}
	if got.Fleet != (core.FleetHealth{OpenIssues: 3, DocumentsDueSoon: 2, VehiclesNeedingAttention: 3}) {
		t.Errorf("unexpected fleet health %+v", got.Fleet)
	}
	if got.Source != "fixtures" || got.TakenAt.IsZero() {
		t.Errorf("expected fixtures source with a timestamp, got %q %v", got.Source, got.TakenAt)
	}
}

func TestLists(t *testing.T) {
	svc := newService(t, nil, nil, app.Settings{})
	ctx := context.Background()

	t.Run("shipments filtered by text and status", func(t *testing.T) {
		q := core.Query{}.WithSearch("leeds").WithStatuses("pending", "in_transit").WithSort("created_at", core.SortDesc)
		page, err := svc.ListShipments(ctx, q)
		if err != nil {
			t.Fatalf("ListShipments failed: %v", err)
		}
		var ids []string
		for _, s := range page.Items {
			ids = append(ids, s.ID)
		}
		if got := strings.Join(ids, ","); got != "shp-010,shp-009,shp-005" {
			t.Errorf("expected shp-010,shp-009,shp-005, got %s", got)
		}
		if page.Total != 3 || page.TotalPages != 1 {
			t.Errorf("unexpected totals %d/%d", page.Total, page.TotalPages)
		}
	})

	t.Run("drivers without a vehicle", func(t *testing.T) {
		page, err := svc.ListDrivers(ctx, core.Query{}.WithFlag("has_vehicle", false))
		if err != nil {
			t.Fatalf("ListDrivers failed: %v", err)
		}
		if page.Total != 3 {
			t.Errorf("expected 3 unassigned drivers, got %d", page.Total)
		}
	})

	t.Run("inventory paginated", func(t *testing.T) {
		page, err := svc.ListInventory(ctx, core.Query{}.WithPage(2, 3))
		if err != nil {
			t.Fatalf("ListInventory failed: %v", err)
		}
		if len(page.Items) != 3 || page.Total != 8 || page.TotalPages != 3 {
			t.Errorf("unexpected page %d items, total %d, pages %d", len(page.Items), page.Total, page.TotalPages)
		}
		if page.Items[0].SKUID != "sku-strap" || page.Items[0].Status != core.StockOutOfStock {
			t.Errorf("expected sku-strap OUT_OF_STOCK first on page 2, got %+v", page.Items[0])
		}
	})

	t.Run("warehouses by pallet utilization", func(t *testing.T) {
		page, err := svc.ListWarehouses(ctx, core.Query{}.WithSort("pallet_pct", core.SortDesc))
		if err != nil {
			t.Fatalf("ListWarehouses failed: %v", err)
		}
		if page.Items[0].ID != "wh-east" || page.Items[3].ID != "wh-west" {
			t.Errorf("expected wh-east first and wh-west last, got %s..%s", page.Items[0].ID, page.Items[3].ID)
		}
	})

	t.Run("inactive customers", func(t *testing.T) {
		page, err := svc.ListCustomers(ctx, core.Query{}.WithFlag("active", false))
		if err != nil {
			t.Fatalf("ListCustomers failed: %v", err)
		}
		if page.Total != 1 || page.Items[0].ID != "cus-03" {
			t.Errorf("expected only cus-03, got %+v", page.Items)
		}
	})

	t.Run("unknown names are rejected", func(t *testing.T) {
		_, err := svc.ListVehicles(ctx, core.Query{}.WithSort("weight", core.SortAsc))
		if !errors.Is(err, core.ErrUnknownField) {
			t.Errorf("expected ErrUnknownField, got %v", err)
		}
		_, err = svc.ListWarehouses(ctx, core.Query{}.WithStatuses("OPEN"))
		if !errors.Is(err, core.ErrUnknownField) {
			t.Errorf("expected ErrUnknownField for warehouse status filter, got %v", err)
		}
	})
}

func TestStockRollups(t *testing.T) {
	svc := newService(t, nil, nil, app.Settings{})
	ctx := context.Background()

	low, err := svc.LowStock(ctx, nil)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if low.Threshold != core.DefaultLowStockThreshold || len(low.Items) != 7 {
		t.Errorf("expected 7 lines under 50, got %d under %d", len(low.Items), low.Threshold)
	}

	ten := 10
	low, err = svc.LowStock(ctx, &ten)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low.Items) != 2 {
		t.Errorf("expected strap and hi-vis@wh-closed under 10, got %+v", low.Items)
	}

	neg := -1
	if _, err := svc.LowStock(ctx, &neg); !core.IsValidation(err) {
		t.Errorf("expected validation error for negative threshold, got %v", err)
	}

	value, err := svc.InventoryValue(ctx)
	if err != nil {
		t.Fatalf("InventoryValue failed: %v", err)
	}
	if !value.Total.Equal(decimal.NewFromInt(328030)) || value.Skus != 8 {
		t.Errorf("expected 328030 over 8 SKUs, got %s over %d", value.Total, value.Skus)
	}

	caps, err := svc.WarehouseCapacity(ctx)
	if err != nil {
		t.Fatalf("WarehouseCapacity failed: %v", err)
	}
	if caps[0].PalletPct != 75 || caps[0].VolumePct != 78 || caps[3].PalletPct != 0 {
		t.Errorf("unexpected capacity %+v", caps)
	}
}

func TestVolumeTrend(t *testing.T) {
	tests := []struct {
		name string
		loc  *time.Location
		days []time.Weekday
		want string
	}{
		{"UTC all days", nil, nil, "Sun=1 Mon=2 Tue=1 Wed=2 Thu=2 Fri=1 Sat=1"},
		{"Tokyo moves a late Wednesday shipment to Thursday", time.FixedZone("JST", 9*3600), nil, "Sun=1 Mon=2 Tue=1 Wed=1 Thu=3 Fri=1 Sat=1"},
		{"selected days", nil, []time.Weekday{time.Friday, time.Monday}, "Mon=2 Fri=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, nil, nil, app.Settings{Location: tt.loc})
			got, err := svc.VolumeTrend(context.Background(), tt.days)
			if err != nil {
				t.Fatalf("VolumeTrend failed: %v", err)
			}
			parts := make([]string, len(got))
			for i, d := range got {
				parts[i] = d.Day + "=" + strconv.Itoa(d.Count)
			}
			if s := strings.Join(parts, " "); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
		})
	}
}

func TestRouteLoadAndDistribution(t *testing.T) {
	svc := newService(t, nil, nil, app.Settings{})
	ctx := context.Background()

	loads, err := svc.RouteLoad(ctx)
	if err != nil {
		t.Fatalf("RouteLoad failed: %v", err)
	}
	if loads[0] != (core.RouteLoad{RouteID: "rte-01", Name: "Yorkshire loop", Shipments: 4, Delivered: 1, Pending: 3}) {
		t.Errorf("unexpected rte-01 load %+v", loads[0])
	}
	if loads[2].Shipments != 2 {
		t.Errorf("expected dangling shipment skipped on rte-03, got %d", loads[2].Shipments)
	}

	dist, err := svc.Distribution(ctx, "Shipments")
	if err != nil {
		t.Fatalf("Distribution failed: %v", err)
	}
	var order []string
	for _, e := range core.DistributionEntries(dist.Counts) {
		order = append(order, e.Status+"="+strconv.Itoa(e.Count))
	}
	want := "DELIVERED=2 IN_TRANSIT=3 PROCESSING=1 DELAYED=1 PENDING=2 CANCELLED=1"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	alerts, err := svc.Distribution(ctx, "alerts")
	if err != nil {
		t.Fatalf("Distribution(alerts) failed: %v", err)
	}
	if n, _ := alerts.Counts.Get("DELAY"); n != 1 {
		t.Errorf("expected one unresolved delay alert, got %d", n)
	}

	for _, entity := range []string{"warehouses", "planets"} {
		if _, err := svc.Distribution(ctx, entity); !errors.Is(err, core.ErrUnknownField) {
			t.Errorf("%s: expected ErrUnknownField, got %v", entity, err)
		}
	}
}

func TestInterpretQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("no interpreter configured", func(t *testing.T) {
		svc := newService(t, nil, nil, app.Settings{})
		_, err := svc.InterpretQuery(ctx, "shipments", "late ones")
		if !errors.Is(err, app.ErrInterpreterUnavailable) {
			t.Errorf("expected ErrInterpreterUnavailable, got %v", err)
		}
	})

	t.Run("passes entity fields and returns the query", func(t *testing.T) {
		stub := &stubInterpreter{result: &ai.Interpretation{Query: core.Query{}.WithStatuses("DELAYED")}}
		svc := newService(t, nil, stub, app.Settings{})
		res, err := svc.InterpretQuery(ctx, "Shipments", "late ones")
		if err != nil {
			t.Fatalf("InterpretQuery failed: %v", err)
		}
		if res.Entity != "shipments" || res.IsClarification || res.Query.Statuses[0] != "DELAYED" {
			t.Errorf("unexpected result %+v", res)
		}
		if stub.fields.Entity != "shipments" || len(stub.fields.Statuses) != 6 || stub.fields.Flags[0] != "has_eta" {
			t.Errorf("unexpected fields %+v", stub.fields)
		}
	})

	t.Run("clarification", func(t *testing.T) {
		stub := &stubInterpreter{result: &ai.Interpretation{Clarification: "Which depot?"}}
		svc := newService(t, nil, stub, app.Settings{})
		res, err := svc.InterpretQuery(ctx, "vehicles", "the broken ones near the depot")
		if err != nil {
			t.Fatalf("InterpretQuery failed: %v", err)
		}
		if !res.IsClarification || res.Clarification != "Which depot?" {
			t.Errorf("expected clarification, got %+v", res)
		}
	})

	t.Run("bad input", func(t *testing.T) {
		svc := newService(t, nil, &stubInterpreter{}, app.Settings{})
		if _, err := svc.InterpretQuery(ctx, "alerts", "open"); !errors.Is(err, core.ErrUnknownField) {
			t.Errorf("expected ErrUnknownField for alerts, got %v", err)
		}
		if _, err := svc.InterpretQuery(ctx, "drivers", "  "); !core.IsValidation(err) {
			t.Errorf("expected validation error for empty text, got %v", err)
		}
	})
}

func TestMutations(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(t, pub, nil, app.Settings{})

	created, err := svc.CreateShipment(ctx, app.CreateShipmentRequest{
		Reference: "SHP-24-011", CustomerID: "cus-01", Origin: "Leeds", Destination: "Wakefield",
	})
	if err != nil {
		t.Fatalf("CreateShipment failed: %v", err)
	}
	if created.ID == "" || created.Status != core.ShipmentPending {
		t.Errorf("expected generated id and PENDING, got %+v", created)
	}

	updated, err := svc.UpdateShipmentStatus(ctx, "shp-005", "in_transit")
	if err != nil {
		t.Fatalf("UpdateShipmentStatus failed: %v", err)
	}
	if updated.Status != core.ShipmentInTransit {
		t.Errorf("expected IN_TRANSIT, got %s", updated.Status)
	}

	overview, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if overview.Kpis.ActiveShipments != 5 {
		t.Errorf("expected the status change to show in the next read, got %d active", overview.Kpis.ActiveShipments)
	}

	if err := svc.DeleteShipment(ctx, created.ID); err != nil {
		t.Fatalf("DeleteShipment failed: %v", err)
	}
	if _, err := svc.SetVehicleStatus(ctx, "veh-03", "available"); err != nil {
		t.Fatalf("SetVehicleStatus failed: %v", err)
	}
	d, err := svc.AssignDriverVehicle(ctx, "drv-06", "veh-02")
	if err != nil {
		t.Fatalf("AssignDriverVehicle failed: %v", err)
	}
	if d.AssignedVehicleID == nil || *d.AssignedVehicleID != "veh-02" {
		t.Errorf("expected veh-02 assigned, got %v", d.AssignedVehicleID)
	}
	d, err = svc.AssignDriverVehicle(ctx, "drv-06", "")
	if err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if d.AssignedVehicleID != nil {
		t.Errorf("expected vehicle cleared, got %v", *d.AssignedVehicleID)
	}
	line, err := svc.AdjustStock(ctx, app.AdjustStockRequest{SKUID: "sku-strap", WarehouseID: "wh-south", DeltaOnHand: 40, Reason: "delivery"})
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if line.QuantityOnHand != 40 {
		t.Errorf("expected 40 on hand, got %d", line.QuantityOnHand)
	}
	if _, err := svc.ResolveAlert(ctx, "alt-01"); err != nil {
		t.Fatalf("ResolveAlert failed: %v", err)
	}

	var kinds []string
	for _, c := range pub.changes {
		kinds = append(kinds, c.Entity+":"+string(c.Action))
	}
	want := "shipment:created shipment:updated shipment:deleted vehicle:updated driver:updated driver:updated stock_line:updated alert:updated"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("expected events %s, got %s", want, got)
	}

	t.Run("missing rows", func(t *testing.T) {
		if _, err := svc.ResolveAlert(ctx, "alt-404"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := svc.DeleteShipment(ctx, "shp-404"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := svc.UpdateShipmentStatus(ctx, "shp-001", "LOST"); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		if _, err := svc.CreateShipment(ctx, app.CreateShipmentRequest{Reference: "x"}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestMutations_PublishFailureDoesNotFailWrite(t *testing.T) {
	svc := newService(t, &recordingPublisher{err: errors.New("broker down")}, nil, app.Settings{})
	a, err := svc.ResolveAlert(context.Background(), "alt-03")
	if err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}
	if !a.Resolved {
		t.Error("expected alert resolved")
	}
}
