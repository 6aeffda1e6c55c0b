package web

import (
	"context"
	"net/http"
	"strconv"

	"logistics-dashboard/internal/core"

	"github.com/go-chi/chi/v5"
)

// ── Aggregates ────────────────────────────────────────────────────────────────

// apiOverview handles GET /api/overview.
func (h *Handler) apiOverview(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Overview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiLowStock handles GET /api/inventory/low-stock?threshold=N.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	var threshold *int
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "threshold must be an integer", "BAD_QUERY", http.StatusBadRequest)
			return
		}
		threshold = &n
	}
	result, err := h.svc.LowStock(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiInventoryValue handles GET /api/inventory/value.
func (h *Handler) apiInventoryValue(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.InventoryValue(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiWarehouseCapacity handles GET /api/warehouses/capacity.
func (h *Handler) apiWarehouseCapacity(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.WarehouseCapacity(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiVolumeTrend handles GET /api/shipments/trend?days=Mon,Tue.
func (h *Handler) apiVolumeTrend(w http.ResponseWriter, r *http.Request) {
	days, err := parseWeekdays(r.URL.Query().Get("days"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	result, err := h.svc.VolumeTrend(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiRouteLoad handles GET /api/routes/load.
func (h *Handler) apiRouteLoad(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RouteLoad(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDistribution handles GET /api/distribution/{entity}.
func (h *Handler) apiDistribution(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Distribution(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Lists ─────────────────────────────────────────────────────────────────────

// serveList parses the list query, calls list and writes the page.
func serveList[T any](w http.ResponseWriter, r *http.Request, list func(context.Context, core.Query) (*core.Page[T], error)) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := list(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// apiListInventory handles GET /api/inventory.
func (h *Handler) apiListInventory(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ListInventory)
}

// apiListWarehouses handles GET /api/warehouses.
func (h *Handler) apiListWarehouses(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ListWarehouses)
}

// apiListShipments handles GET /api/shipments.
func (h *Handler) apiListShipments(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ListShipments)
}

func (h *Handler) apiListVehicles(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ListVehicles)
}

func (h *Handler) apiListDrivers(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ListDrivers)
}

func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ListCustomers)
}

// ── AI ────────────────────────────────────────────────────────────────────────

// apiInterpretQuery handles POST /api/query/interpret.
// Body: { entity, text }
func (h *Handler) apiInterpretQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Entity string `json:"entity"`
		Text   string `json:"text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.InterpretQuery(r.Context(), body.Entity, body.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
