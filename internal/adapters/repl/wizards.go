package repl

import (
	"fmt"
	"strings"
	"time"

	"logistics-dashboard/internal/app"
)

// newShipmentWizard runs an interactive shipment creation session.
func (r *session) newShipmentWizard() error {
	fmt.Fprintln(r.out, "Creating a shipment. Type 'cancel' at any prompt to abort.")

	var req app.CreateShipmentRequest
	fields := []struct {
		label    string
		target   *string
		required bool
	}{
		{"Reference", &req.Reference, true},
		{"Customer ID", &req.CustomerID, true},
		{"Origin", &req.Origin, true},
		{"Destination", &req.Destination, true},
	}
	for _, f := range fields {
		for {
			v, ok := r.prompt(fmt.Sprintf("  %s: ", f.label))
			if !ok || strings.EqualFold(v, "cancel") {
				fmt.Fprintln(r.out, "Shipment creation cancelled.")
				return nil
			}
			if v == "" && f.required {
				fmt.Fprintf(r.out, "  %s is required.\n", f.label)
				continue
			}
			*f.target = v
			break
		}
	}

	for {
		v, ok := r.prompt("  ETA (YYYY-MM-DD HH:MM, UTC, blank for none): ")
		if !ok || strings.EqualFold(v, "cancel") {
			fmt.Fprintln(r.out, "Shipment creation cancelled.")
			return nil
		}
		if v == "" {
			break
		}
		eta, err := time.Parse("2006-01-02 15:04", v)
		if err != nil {
			fmt.Fprintf(r.out, "  Invalid ETA: %s\n", v)
			continue
		}
		req.ETA = &eta
		break
	}

	fmt.Fprintf(r.out, "\n%s: %s → %s for %s\n", req.Reference, req.Origin, req.Destination, req.CustomerID)
	choice, _ := r.prompt("Create this shipment? (y/n): ")
	choice = strings.ToLower(choice)
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(r.out, "Shipment creation cancelled.")
		return nil
	}

	s, err := r.svc.CreateShipment(r.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Shipment %s created with id %s, status %s.\n", s.Reference, s.ID, s.Status)
	return nil
}
