package web

import (
	"net/http"

	"logistics-dashboard/internal/app"
	"logistics-dashboard/internal/core"

	"github.com/go-chi/chi/v5"
)

// apiCreateShipment handles POST /api/shipments.
// Body: { id?, reference, customer_id, origin, destination, status?, eta? }
func (h *Handler) apiCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req app.CreateShipmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	shipment, err := h.svc.CreateShipment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/shipments/"+shipment.ID)
	writeJSONStatus(w, http.StatusCreated, shipment)
}

// apiUpdateShipmentStatus handles PATCH /api/shipments/{id}/status.
// Body: { status }
func (h *Handler) apiUpdateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status core.ShipmentStatus `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	shipment, err := h.svc.UpdateShipmentStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, shipment)
}

// apiDeleteShipment handles DELETE /api/shipments/{id}.
func (h *Handler) apiDeleteShipment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteShipment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiSetVehicleStatus handles PATCH /api/vehicles/{id}/status.
// Body: { status }
func (h *Handler) apiSetVehicleStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status core.VehicleStatus `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	vehicle, err := h.svc.SetVehicleStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, vehicle)
}

// apiAssignDriverVehicle handles PUT /api/drivers/{id}/vehicle.
// Body: { vehicle_id } where null or "" unassigns.
func (h *Handler) apiAssignDriverVehicle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VehicleID *string `json:"vehicle_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	vehicleID := ""
	if body.VehicleID != nil {
		vehicleID = *body.VehicleID
	}
	driver, err := h.svc.AssignDriverVehicle(r.Context(), chi.URLParam(r, "id"), vehicleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, driver)
}

// apiAdjustStock handles POST /api/stock/adjust.
// Body: { sku_id, warehouse_id, delta_on_hand, delta_reserved, reason? }
func (h *Handler) apiAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req app.AdjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	line, err := h.svc.AdjustStock(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, line)
}

// apiResolveAlert handles POST /api/alerts/{id}/resolve.
func (h *Handler) apiResolveAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.svc.ResolveAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, alert)
}
