package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"logistics-dashboard/internal/app"
	webui "logistics-dashboard/web"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	fileServer http.Handler
	index      []byte
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}
	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		panic("web/static/index.html missing: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		fileServer: http.FileServer(http.FS(staticFS)),
		index:      index,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Static dashboard page ────────────────────────────────────────────────
	r.Get("/", h.dashboardPage)
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Aggregates ────────────────────────────────────────────────────────
		r.Get("/api/overview", h.apiOverview)
		r.Get("/api/inventory/low-stock", h.apiLowStock)
		r.Get("/api/inventory/value", h.apiInventoryValue)
		r.Get("/api/warehouses/capacity", h.apiWarehouseCapacity)
		r.Get("/api/shipments/trend", h.apiVolumeTrend)
		r.Get("/api/routes/load", h.apiRouteLoad)
		r.Get("/api/distribution/{entity}", h.apiDistribution)

		// ── Lists ─────────────────────────────────────────────────────────────
		r.Get("/api/inventory", h.apiListInventory)
		r.Get("/api/warehouses", h.apiListWarehouses)
		r.Get("/api/shipments", h.apiListShipments)
		r.Get("/api/vehicles", h.apiListVehicles)
		r.Get("/api/drivers", h.apiListDrivers)
		r.Get("/api/customers", h.apiListCustomers)

		// ── AI ────────────────────────────────────────────────────────────────
		r.Post("/api/query/interpret", h.apiInterpretQuery)

		// ── Mutations ─────────────────────────────────────────────────────────
		r.Post("/api/shipments", h.apiCreateShipment)
		r.Patch("/api/shipments/{id}/status", h.apiUpdateShipmentStatus)
		r.Delete("/api/shipments/{id}", h.apiDeleteShipment)
		r.Patch("/api/vehicles/{id}/status", h.apiSetVehicleStatus)
		r.Put("/api/drivers/{id}/vehicle", h.apiAssignDriverVehicle)
		r.Post("/api/stock/adjust", h.apiAdjustStock)
		r.Post("/api/alerts/{id}/resolve", h.apiResolveAlert)
	})

	h.router = r
	return r
}

// health returns service status and the configured entity source.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Source string `json:"source"`
	}
	writeJSON(w, response{Status: "ok", Source: h.svc.Source()})
}

// dashboardPage serves GET /, the embedded single-page dashboard.
func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.index)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
