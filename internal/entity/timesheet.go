package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/internal/geo"
)

// Timesheet represents a single clock-in/clock-out entry for data transfer between layers.
// ClockOut is nil while the entry is open; pay fields are zero until then.
type Timesheet struct {
	ID               uuid.UUID  `json:"id"`
	EmployeeID       uuid.UUID  `json:"employee_id"`
	JobID            *string    `json:"job_id,omitempty"`
	ClockIn          time.Time  `json:"clock_in"`
	ClockOut         *time.Time `json:"clock_out,omitempty"`
	HourlyRate       float64    `json:"hourly_rate"`
	ClockInLocation  geo.Point  `json:"clock_in_location"`
	ClockOutLocation *geo.Point `json:"clock_out_location,omitempty"`
	LocationValid    bool       `json:"location_valid"`
	// ClockOutLocationValid is nil until the entry is closed.
	ClockOutLocationValid *bool   `json:"clock_out_location_valid,omitempty"`
	TotalHours            float64 `json:"total_hours"`
	RegularHours          float64 `json:"regular_hours"`
	OvertimeHours         float64 `json:"overtime_hours"`
	RegularPay            float64 `json:"regular_pay"`
	OvertimePay           float64 `json:"overtime_pay"`
	TotalPay              float64 `json:"total_pay"`
	Notes                 *string `json:"notes,omitempty"`
}

// Open reports whether the entry still awaits a clock-out.
func (t *Timesheet) Open() bool {
	return t.ClockOut == nil
}
