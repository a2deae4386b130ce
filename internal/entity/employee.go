package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
)

// Employee represents a crew member for data transfer between layers.
type Employee struct {
	ID         uuid.UUID              `json:"id"`
	Name       string                 `json:"name"`
	HourlyRate float64                `json:"hourly_rate"`
	Role       constants.EmployeeRole `json:"role"`
	CreatedAt  time.Time              `json:"created_at"`
}
