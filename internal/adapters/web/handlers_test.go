package web_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"logistics-dashboard/internal/adapters/web"
	"logistics-dashboard/internal/app"
	"logistics-dashboard/internal/store"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewFixtureStore()
	if err != nil {
		t.Fatalf("NewFixtureStore failed: %v", err)
	}
	svc := app.NewAppService(st, nil, nil, app.Settings{})
	srv := httptest.NewServer(web.NewHandler(svc, "http://dashboard.example"))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("invalid JSON %s: %v", b, err)
	}
	return v
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

func TestHealthAndPage(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	h := decode[map[string]string](t, body)
	if h["status"] != "ok" || h["source"] != "fixtures" {
		t.Errorf("unexpected health %v", h)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	resp, body = do(t, srv, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Logistics Operations") {
		t.Errorf("expected dashboard page, got %d", resp.StatusCode)
	}
}

func TestAggregateEndpoints(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{"overview", "/api/overview", `"active_shipments":4`},
		{"low stock threshold", "/api/inventory/low-stock?threshold=10", `"threshold":10`},
		{"inventory value", "/api/inventory/value", `"total":"328030"`},
		{"capacity", "/api/warehouses/capacity", `{"warehouse_id":"wh-west","code":"WST","pallet_pct":0,"volume_pct":0}`},
		{"trend", "/api/shipments/trend?days=mon,Friday", `[{"day":"Mon","count":2},{"day":"Fri","count":1}]`},
		{"route load", "/api/routes/load", `"route_id":"rte-03","name":"Severn crossing","shipments":2`},
		{"distribution keeps first-seen order", "/api/distribution/shipments",
			`"counts":{"DELIVERED":2,"IN_TRANSIT":3,"PROCESSING":1,"DELAYED":1,"PENDING":2,"CANCELLED":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodGet, tt.path, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("expected body to contain %s, got %s", tt.contains, body)
			}
		})
	}
}

func TestListEndpoints(t *testing.T) {
	srv := newServer(t)

	t.Run("shipments with status list and sort", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodGet, "/api/shipments?status=pending,in_transit&status=DELAYED&sort=created_at&dir=desc&page_size=2", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		page := decode[struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		}](t, body)
		if page.Total != 6 || page.TotalPages != 3 || page.Items[0].ID != "shp-010" {
			t.Errorf("unexpected page %+v", page)
		}
	})

	t.Run("drivers flag", func(t *testing.T) {
		_, body := do(t, srv, http.MethodGet, "/api/drivers?flag.has_vehicle=true", "")
		if !strings.Contains(string(body), `"total":3`) {
			t.Errorf("expected 3 assigned drivers, got %s", body)
		}
	})

	t.Run("out of range page", func(t *testing.T) {
		_, body := do(t, srv, http.MethodGet, "/api/customers?page=9", "")
		if !strings.Contains(string(body), `"items":[]`) || !strings.Contains(string(body), `"total":5`) {
			t.Errorf("expected empty items with totals, got %s", body)
		}
	})

	bad := []struct {
		name string
		path string
	}{
		{"unknown sort", "/api/vehicles?sort=weight"},
		{"unknown flag", "/api/inventory?flag.fragile=true"},
		{"bad flag value", "/api/drivers?flag.has_vehicle=maybe"},
		{"bad direction", "/api/shipments?sort=eta&dir=sideways"},
		{"bad page", "/api/warehouses?page=two"},
		{"status on warehouses", "/api/warehouses?status=OPEN"},
		{"bad weekday", "/api/shipments/trend?days=Funday"},
		{"bad threshold", "/api/inventory/low-stock?threshold=lots"},
		{"unknown entity", "/api/distribution/planets"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodGet, tt.path, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			e := decode[errorBody](t, body)
			if e.Code != "BAD_QUERY" || e.RequestID == "" {
				t.Errorf("expected BAD_QUERY with request id, got %+v", e)
			}
		})
	}
}

func TestMutationEndpoints(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/shipments",
		`{"reference":"SHP-24-011","customer_id":"cus-02","origin":"Southampton","destination":"Winchester"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	created := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, body)
	if created.ID == "" || created.Status != "PENDING" {
		t.Errorf("unexpected created shipment %+v", created)
	}

	resp, body = do(t, srv, http.MethodPatch, "/api/shipments/"+created.ID+"/status", `{"status":"IN_TRANSIT"}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"IN_TRANSIT"`) {
		t.Errorf("expected status update, got %d: %s", resp.StatusCode, body)
	}

	_, body = do(t, srv, http.MethodGet, "/api/overview", "")
	if !strings.Contains(string(body), `"active_shipments":5`) {
		t.Errorf("expected the new shipment counted as active, got %s", body)
	}

	resp, _ = do(t, srv, http.MethodDelete, "/api/shipments/"+created.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	resp, body = do(t, srv, http.MethodPatch, "/api/vehicles/veh-03/status", `{"status":"AVAILABLE"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPut, "/api/drivers/drv-06/vehicle", `{"vehicle_id":"veh-02"}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"assigned_vehicle_id":"veh-02"`) {
		t.Errorf("expected assignment, got %d: %s", resp.StatusCode, body)
	}
	resp, body = do(t, srv, http.MethodPut, "/api/drivers/drv-06/vehicle", `{"vehicle_id":null}`)
	if resp.StatusCode != http.StatusOK || strings.Contains(string(body), "veh-02") {
		t.Errorf("expected unassignment, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/stock/adjust",
		`{"sku_id":"sku-hi-vis","warehouse_id":"wh-north","delta_on_hand":-3,"delta_reserved":2}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"quantity_on_hand":15`) {
		t.Errorf("expected adjusted line, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/alerts/alt-01/resolve", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"resolved":true`) {
		t.Errorf("expected resolved alert, got %d: %s", resp.StatusCode, body)
	}

	errs := []struct {
		name, method, path, body string
		status                   int
		code                     string
	}{
		{"missing shipment", http.MethodDelete, "/api/shipments/shp-404", "", http.StatusNotFound, "NOT_FOUND"},
		{"missing alert", http.MethodPost, "/api/alerts/alt-404/resolve", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown status", http.MethodPatch, "/api/shipments/shp-001/status", `{"status":"LOST"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing fields", http.MethodPost, "/api/shipments", `{"reference":"x"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero adjustment", http.MethodPost, "/api/stock/adjust", `{"sku_id":"sku-strap","warehouse_id":"wh-south"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown JSON field", http.MethodPost, "/api/shipments", `{"weight":3}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"malformed JSON", http.MethodPatch, "/api/vehicles/veh-01/status", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"interpreter not configured", http.MethodPost, "/api/query/interpret", `{"entity":"shipments","text":"late"}`, http.StatusServiceUnavailable, "AI_UNAVAILABLE"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.StatusCode, body)
			}
			if e := decode[errorBody](t, body); e.Code != tt.code {
				t.Errorf("expected %s, got %+v", tt.code, e)
			}
		})
	}
}

func TestRequestBodyLimit(t *testing.T) {
	st, err := store.NewFixtureStore()
	if err != nil {
		t.Fatalf("NewFixtureStore failed: %v", err)
	}
	h := web.NewHandler(app.NewAppService(st, nil, nil, app.Settings{}), "")

	big := `{"reference":"` + strings.Repeat("x", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/shipments", strings.NewReader(big))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if e := decode[errorBody](t, rec.Body.Bytes()); e.Code != "REQUEST_TOO_LARGE" {
		t.Errorf("expected REQUEST_TOO_LARGE, got %+v", e)
	}
}

func TestCORS(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/overview", nil)
	req.Header.Set("Origin", "http://dashboard.example")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "http://dashboard.example" {
		t.Errorf("expected allowed preflight, got %d %q", resp.StatusCode, resp.Header.Get("Access-Control-Allow-Origin"))
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS header for unknown origin")
	}
}
