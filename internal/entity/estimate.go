package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
)

// MaterialLine is one priced material on an estimate.
type MaterialLine struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Cost      float64 `json:"cost"`
	// Gallons is set for painted lines and sealer so crews can load the truck.
	Gallons *float64 `json:"gallons,omitempty"`
}

type LaborCost struct {
	Hours float64 `json:"hours"`
	Rate  float64 `json:"rate"`
	Cost  float64 `json:"cost"`
}

type EquipmentCost struct {
	EquipmentCost float64 `json:"equipment_cost"`
	FuelCost      float64 `json:"fuel_cost"`
}

type TravelCost struct {
	Distance float64 `json:"distance"`
	Cost     float64 `json:"cost"`
}

// EstimateBreakdown is the priced composition of an estimate. It is computed once
// and stored as a snapshot on the estimate.
type EstimateBreakdown struct {
	Materials     []MaterialLine `json:"materials"`
	MaterialsCost float64        `json:"materials_cost"`
	Labor         LaborCost      `json:"labor"`
	Equipment     EquipmentCost  `json:"equipment"`
	Travel        TravelCost     `json:"travel"`
	Subtotal      float64        `json:"subtotal"`
	Overhead      float64        `json:"overhead"`
	Profit        float64        `json:"profit"`
	Total         float64        `json:"total"`
}

// Estimate represents a numbered estimate for data transfer between layers.
type Estimate struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	Sequence   int64             `json:"sequence"`
	JobID      *string           `json:"job_id,omitempty"`
	JobType    constants.JobType `json:"job_type"`
	Address    string            `json:"address"`
	Breakdown  EstimateBreakdown `json:"breakdown"`
	Currency   string            `json:"currency"`
	CreatedBy  *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	ValidUntil time.Time         `json:"valid_until"`
}
