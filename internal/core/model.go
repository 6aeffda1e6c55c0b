package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleAvailable     VehicleStatus = "AVAILABLE"
	VehicleOnTrip        VehicleStatus = "ON_TRIP"
	VehicleInMaintenance VehicleStatus = "MAINTENANCE"
	VehicleIdle          VehicleStatus = "IDLE"
	VehicleInService     VehicleStatus = "IN_SERVICE"
)

type DocumentStatus string

const (
	DocumentValid   DocumentStatus = "VALID"
	DocumentDueSoon DocumentStatus = "DUE_SOON"
)

type ShipmentStatus string

const (
	ShipmentPending    ShipmentStatus = "PENDING"
	ShipmentProcessing ShipmentStatus = "PROCESSING"
	ShipmentInTransit  ShipmentStatus = "IN_TRANSIT"
	ShipmentDelivered  ShipmentStatus = "DELIVERED"
	ShipmentDelayed    ShipmentStatus = "DELAYED"
	ShipmentCancelled  ShipmentStatus = "CANCELLED"
)

type DriverStatus string

const (
	DriverActive  DriverStatus = "ACTIVE"
	DriverOffDuty DriverStatus = "OFF_DUTY"
	DriverOnLeave DriverStatus = "ON_LEAVE"
)

type AlertKind string

const (
	AlertDelay       AlertKind = "DELAY"
	AlertMaintenance AlertKind = "MAINTENANCE"
	AlertStock       AlertKind = "STOCK"
)

// StockLine is the quantity of one SKU held in one warehouse.
type StockLine struct {
	SKUID            string `json:"sku_id"`
	WarehouseID      string `json:"warehouse_id"`
	QuantityOnHand   int    `json:"quantity_on_hand"`
	QuantityReserved int    `json:"quantity_reserved"`
}

// Available returns on-hand minus reserved. It is negative when reservations
// exceed physical stock upstream.
func (l StockLine) Available() int {
	return l.QuantityOnHand - l.QuantityReserved
}

// CatalogItem is a SKU in the product catalog.
// A nil UnitPrice means the price is derived with DerivePseudoPrice.
type CatalogItem struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	ReorderPoint int              `json:"reorder_point"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

type VehicleDocument struct {
	Name      string         `json:"name"`
	Status    DocumentStatus `json:"status"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

type VehicleMaintenance struct {
	OpenIssues []string          `json:"open_issues"`
	Documents  []VehicleDocument `json:"documents"`
}

type Vehicle struct {
	ID          string             `json:"id"`
	Plate       string             `json:"plate"`
	Model       string             `json:"model"`
	Status      VehicleStatus      `json:"status"`
	Maintenance VehicleMaintenance `json:"maintenance"`
}

type Driver struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Phone             string       `json:"phone"`
	LicenseNumber     string       `json:"license_number"`
	Status            DriverStatus `json:"status"`
	AssignedVehicleID *string      `json:"assigned_vehicle_id,omitempty"`
}

type Shipment struct {
	ID          string         `json:"id"`
	Reference   string         `json:"reference"`
	CustomerID  string         `json:"customer_id"`
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Status      ShipmentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ETA         *time.Time     `json:"eta,omitempty"`
}

// Route groups shipments assigned to one vehicle/driver run.
type Route struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	VehicleID   *string  `json:"vehicle_id,omitempty"`
	DriverID    *string  `json:"driver_id,omitempty"`
	ShipmentIDs []string `json:"shipment_ids"`
}

// WarehouseCapacity carries pallet and volume usage. Volumes are cubic metres.
type WarehouseCapacity struct {
	UsedPallets  int             `json:"used_pallets"`
	MaxPallets   int             `json:"max_pallets"`
	UsedVolumeM3 decimal.Decimal `json:"used_volume_m3"`
	MaxVolumeM3  decimal.Decimal `json:"max_volume_m3"`
}

type Warehouse struct {
	ID       string            `json:"id"`
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	City     string            `json:"city"`
	Capacity WarehouseCapacity `json:"capacity"`
}

type Customer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	City   string `json:"city"`
	Active bool   `json:"active"`
}

// Alert is an operational notice shown on the dashboard. Open delay alerts
// drive the delayed-shipments KPI.
type Alert struct {
	ID         string    `json:"id"`
	Kind       AlertKind `json:"kind"`
	ShipmentID *string   `json:"shipment_id,omitempty"`
	Message    string    `json:"message"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot is an immutable read of every entity collection at one point in time.
// Aggregation and filter functions only ever read from it.
type Snapshot struct {
	Warehouses []Warehouse   `json:"warehouses"`
	Vehicles   []Vehicle     `json:"vehicles"`
	Drivers    []Driver      `json:"drivers"`
	Routes     []Route       `json:"routes"`
	Shipments  []Shipment    `json:"shipments"`
	Stock      []StockLine   `json:"stock"`
	Catalog    []CatalogItem `json:"catalog"`
	Customers  []Customer    `json:"customers"`
	Alerts     []Alert       `json:"alerts"`
	TakenAt    time.Time     `json:"taken_at"`
}

var validVehicleStatuses = map[VehicleStatus]bool{
	VehicleAvailable: true, VehicleOnTrip: true, VehicleInMaintenance: true,
	VehicleIdle: true, VehicleInService: true,
}

var validShipmentStatuses = map[ShipmentStatus]bool{
	ShipmentPending: true, ShipmentProcessing: true, ShipmentInTransit: true,
	ShipmentDelivered: true, ShipmentDelayed: true, ShipmentCancelled: true,
}

// IsValid reports whether s is a known vehicle status.
func (s VehicleStatus) IsValid() bool { return validVehicleStatuses[s] }

// IsValid reports whether s is a known shipment status.
func (s ShipmentStatus) IsValid() bool { return validShipmentStatuses[s] }
