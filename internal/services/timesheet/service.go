package timesheet

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/payroll"
	"github.com/joseph-ayodele/fieldops/internal/repository"
	"github.com/joseph-ayodele/fieldops/internal/utils"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Service handles clock-in/clock-out and timesheet queries.
type Service struct {
	employees    repository.EmployeeRepository
	timesheets   repository.TimesheetRepository
	business     geo.Point
	radiusMeters float64
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates a new timesheet service.
func NewService(employees repository.EmployeeRepository, timesheets repository.TimesheetRepository, business common.BusinessConfig, logger *slog.Logger) *Service {
	return &Service{
		employees:    employees,
		timesheets:   timesheets,
		business:     geo.Point{Latitude: business.Latitude, Longitude: business.Longitude},
		radiusMeters: business.GeofenceRadiusMeters,
		logger:       logger,
		now:          time.Now,
	}
}

// ClockRequest is a clock_in or clock_out action at a location.
type ClockRequest struct {
	EmployeeID uuid.UUID
	Action     constants.ClockAction
	Latitude   float64
	Longitude  float64
	JobID      string
	Notes      string
}

// ClockResult reports the entry after the action and where it happened.
// DistanceFromBusiness is in miles, rounded to cents precision.
type ClockResult struct {
	Timesheet            *entity.Timesheet `json:"timesheet"`
	LocationValid        bool              `json:"locationValid"`
	DistanceFromBusiness float64           `json:"distanceFromBusiness"`
}

// Clock dispatches on req.Action.
func (s *Service) Clock(ctx context.Context, req ClockRequest) (*ClockResult, error) {
	validator := common.NewValidator()
	validator.Field("employeeId", req.EmployeeID, common.Required)
	validator.Field("latitude", req.Latitude, common.Latitude)
	validator.Field("longitude", req.Longitude, common.Longitude)
	if req.Action != constants.ClockIn && req.Action != constants.ClockOut {
		validator.Add("action", "must be clock_in or clock_out")
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	if req.Action == constants.ClockIn {
		return s.clockIn(ctx, req)
	}
	return s.clockOut(ctx, req)
}

func (s *Service) clockIn(ctx context.Context, req ClockRequest) (*ClockResult, error) {
	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	loc := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	meters := geo.Distance(loc, s.business)
	valid := meters <= s.radiusMeters

	ts := &entity.Timesheet{
		ID:              uuid.New(),
		EmployeeID:      emp.ID,
		JobID:           utils.NilIfBlank(req.JobID),
		ClockIn:         s.now().UTC().Truncate(time.Millisecond),
		HourlyRate:      emp.HourlyRate,
		ClockInLocation: loc,
		LocationValid:   valid,
		Notes:           utils.NilIfBlank(req.Notes),
	}
	if err := s.timesheets.Open(ctx, ts); err != nil {
		return nil, err
	}

	s.logger.Info("employee clocked in", "employee_id", emp.ID, "timesheet_id", ts.ID, "location_valid", valid)
	if !valid {
		s.logger.Warn("clock-in outside geofence", "employee_id", emp.ID, "distance_m", meters)
	}
	return &ClockResult{
		Timesheet:            ts,
		LocationValid:        valid,
		DistanceFromBusiness: utils.Round2(geo.MetersToMiles(meters)),
	}, nil
}

func (s *Service) clockOut(ctx context.Context, req ClockRequest) (*ClockResult, error) {
	loc := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	meters := geo.Distance(loc, s.business)
	valid := meters <= s.radiusMeters

	ts, err := s.timesheets.CloseOpen(ctx, req.EmployeeID, func(ts *entity.Timesheet) error {
		out := s.now().UTC().Truncate(time.Millisecond)
		if out.Before(ts.ClockIn) {
			out = ts.ClockIn
		}
		pay := payroll.Compute(ts.ClockIn, out, ts.HourlyRate)

		ts.ClockOut = &out
		ts.ClockOutLocation = &loc
		ts.ClockOutLocationValid = &valid
		ts.TotalHours = utils.Round2(pay.TotalHours)
		ts.RegularHours = utils.Round2(pay.RegularHours)
		ts.OvertimeHours = utils.Round2(pay.OvertimeHours)
		ts.RegularPay = utils.Round2(pay.RegularPay)
		ts.OvertimePay = utils.Round2(pay.OvertimePay)
		ts.TotalPay = utils.Round2(pay.RegularPay + pay.OvertimePay)
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			joined := notes
			if ts.Notes != nil {
				joined = *ts.Notes + "\n" + notes
			}
			ts.Notes = &joined
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee clocked out",
		"employee_id", ts.EmployeeID,
		"timesheet_id", ts.ID,
		"total_hours", ts.TotalHours,
		"overtime_hours", ts.OvertimeHours,
		"location_valid", valid,
	)
	return &ClockResult{
		Timesheet:            ts,
		LocationValid:        valid,
		DistanceFromBusiness: utils.Round2(geo.MetersToMiles(meters)),
	}, nil
}

// StatusResult is the employee's current position in the clock cycle.
type StatusResult struct {
	State     payroll.State     `json:"state"`
	ClockedIn bool              `json:"clockedIn"`
	Timesheet *entity.Timesheet `json:"timesheet,omitempty"`
}

func (s *Service) Status(ctx context.Context, employeeID uuid.UUID) (*StatusResult, error) {
	if employeeID == uuid.Nil {
		return nil, common.ValidationErrors{{Field: "employeeId", Message: "is required"}}
	}
	open, err := s.timesheets.GetOpen(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	state := payroll.StateOf(open != nil)
	return &StatusResult{State: state, ClockedIn: state == payroll.ClockedIn, Timesheet: open}, nil
}

// List returns entries newest first, optionally for one employee. A
// non-positive limit means DefaultListLimit.
func (s *Service) List(ctx context.Context, employeeID *uuid.UUID, limit int) ([]*entity.Timesheet, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	list, err := s.timesheets.List(ctx, employeeID, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Timesheet{}
	}
	return list, nil
}

// CreateEmployeeRequest represents employee creation parameters.
type CreateEmployeeRequest struct {
	Name       string                 `json:"name"`
	HourlyRate float64                `json:"hourlyRate"`
	Role       constants.EmployeeRole `json:"role"`
}

// CreateEmployee registers a crew member whose rate later seeds their timesheets.
func (s *Service) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*entity.Employee, error) {
	validator := common.NewValidator()
	validator.Field("name", req.Name, common.Required)
	validator.Field("hourlyRate", req.HourlyRate, common.NonNegative)
	role := constants.EmployeeRole(strings.ToUpper(strings.TrimSpace(string(req.Role))))
	if role == "" {
		role = constants.RoleLaborer
	}
	if !constants.ValidRole(role) {
		validator.Add("role", "must be FOREMAN, SPECIALIST, OPERATOR, SCOUT or LABORER")
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	e, err := s.employees.Create(ctx, strings.TrimSpace(req.Name), req.HourlyRate, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee created", "employee_id", e.ID, "role", e.Role)
	return e, nil
}

func (s *Service) GetEmployee(ctx context.Context, id uuid.UUID) (*entity.Employee, error) {
	return s.employees.GetByID(ctx, id)
}
