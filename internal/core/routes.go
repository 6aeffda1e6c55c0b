package core

// RouteLoad is the shipment count of a route broken down by progress.
type RouteLoad struct {
	RouteID   string `json:"route_id"`
	Name      string `json:"name"`
	Shipments int    `json:"shipments"`
	Delivered int    `json:"delivered"`
	Pending   int    `json:"pending"`
}

// ComputeRouteLoad resolves each route's shipment ids against shipments.
// Ids with no matching shipment are skipped for that route. Pending counts
// every resolved shipment that is neither delivered nor cancelled.
func ComputeRouteLoad(routes []Route, shipments []Shipment) []RouteLoad {
	byID := make(map[string]Shipment, len(shipments))
	for _, s := range shipments {
		byID[s.ID] = s
	}

	out := make([]RouteLoad, 0, len(routes))
	for _, r := range routes {
		load := RouteLoad{RouteID: r.ID, Name: r.Name}
		for _, id := range r.ShipmentIDs {
			s, ok := byID[id]
			if !ok {
				continue
			}
			load.Shipments++
			switch s.Status {
			case ShipmentDelivered:
				load.Delivered++
			case ShipmentCancelled:
			default:
				load.Pending++
			}
		}
		out = append(out, load)
	}
	return out
}
