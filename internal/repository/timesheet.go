package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/payroll"
)

const timesheetsTable = "timesheets"

var timesheetColumns = []string{
	"id", "employee_id", "job_id", "clock_in", "clock_out", "hourly_rate",
	"clock_in_lat", "clock_in_lng", "clock_out_lat", "clock_out_lng",
	"location_valid", "clock_out_location_valid",
	"total_hours", "regular_hours", "overtime_hours", "regular_pay", "overtime_pay", "total_pay",
	"notes",
}

type TimesheetRepository interface {
	// Open inserts ts as the employee's open entry. It fails with a conflict
	// when one already exists, including when a concurrent clock-in wins.
	Open(ctx context.Context, ts *entity.Timesheet) error
	// CloseOpen loads the employee's open entry, lets finish fill in the
	// clock-out fields, and persists them.
	CloseOpen(ctx context.Context, employeeID uuid.UUID, finish func(ts *entity.Timesheet) error) (*entity.Timesheet, error)
	GetOpen(ctx context.Context, employeeID uuid.UUID) (*entity.Timesheet, error)
	List(ctx context.Context, employeeID *uuid.UUID, limit int) ([]*entity.Timesheet, error)
	// ListRange is List restricted to clock-ins in [from, to). Nil bounds are open.
	ListRange(ctx context.Context, employeeID *uuid.UUID, from, to *time.Time, limit int) ([]*entity.Timesheet, error)
}

type timesheetRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewTimesheetRepository(db *DB, logger *slog.Logger) TimesheetRepository {
	return &timesheetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *timesheetRepository) Open(ctx context.Context, ts *entity.Timesheet) error {
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		open, err := r.findOpen(ctx, tx, ts.EmployeeID)
		if err != nil {
			return err
		}
		if err := payroll.CanClockIn(payroll.StateOf(open != nil)); err != nil {
			return err
		}
		q, args := r.db.builder().Insert(timesheetsTable).
			Columns(timesheetColumns...).
			Values(timesheetValues(ts)...).
			Query()
		_, err = exec(ctx, tx, q, args)
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrConflict):
		return err
	case isUniqueViolation(err):
		r.logger.Warn("concurrent clock-in rejected", "employee_id", ts.EmployeeID)
		return payroll.ErrAlreadyClockedIn
	default:
		r.logger.Error("failed to open timesheet", "employee_id", ts.EmployeeID, "error", err)
		return common.DatabaseError("failed to clock in", err)
	}
}

func (r *timesheetRepository) CloseOpen(ctx context.Context, employeeID uuid.UUID, finish func(ts *entity.Timesheet) error) (*entity.Timesheet, error) {
	var closed *entity.Timesheet
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		open, err := r.findOpen(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		if err := payroll.CanClockOut(payroll.StateOf(open != nil)); err != nil {
			return err
		}
		if err := finish(open); err != nil {
			return err
		}

		var outLat, outLng *float64
		if open.ClockOutLocation != nil {
			outLat, outLng = &open.ClockOutLocation.Latitude, &open.ClockOutLocation.Longitude
		}
		q, args := r.db.builder().Update(timesheetsTable).
			Set("clock_out", toMillis(*open.ClockOut)).
			Set("clock_out_lat", outLat).
			Set("clock_out_lng", outLng).
			Set("clock_out_location_valid", open.ClockOutLocationValid).
			Set("total_hours", open.TotalHours).
			Set("regular_hours", open.RegularHours).
			Set("overtime_hours", open.OvertimeHours).
			Set("regular_pay", open.RegularPay).
			Set("overtime_pay", open.OvertimePay).
			Set("total_pay", open.TotalPay).
			Set("notes", open.Notes).
			Where(entsql.And(entsql.EQ("id", open.ID.String()), entsql.IsNull("clock_out"))).
			Query()
		n, err := exec(ctx, tx, q, args)
		if err != nil {
			return err
		}
		if n == 0 {
			// a concurrent clock-out won
			return payroll.ErrNotClockedIn
		}
		closed = open
		return nil
	})
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) || errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		r.logger.Error("failed to close timesheet", "employee_id", employeeID, "error", err)
		return nil, common.DatabaseError("failed to clock out", err)
	}
	return closed, nil
}

func (r *timesheetRepository) GetOpen(ctx context.Context, employeeID uuid.UUID) (*entity.Timesheet, error) {
	ts, err := r.findOpen(ctx, r.db.Driver, employeeID)
	if err != nil {
		r.logger.Error("failed to load open timesheet", "employee_id", employeeID, "error", err)
		return nil, common.DatabaseError("failed to load timesheet", err)
	}
	return ts, nil
}

func (r *timesheetRepository) List(ctx context.Context, employeeID *uuid.UUID, limit int) ([]*entity.Timesheet, error) {
	return r.ListRange(ctx, employeeID, nil, nil, limit)
}

func (r *timesheetRepository) ListRange(ctx context.Context, employeeID *uuid.UUID, from, to *time.Time, limit int) ([]*entity.Timesheet, error) {
	sel := r.db.builder().Select(timesheetColumns...).
		From(entsql.Table(timesheetsTable)).
		OrderBy(entsql.Desc("clock_in"), entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	if employeeID != nil {
		sel = sel.Where(entsql.EQ("employee_id", employeeID.String()))
	}
	if from != nil {
		sel = sel.Where(entsql.GTE("clock_in", toMillis(*from)))
	}
	if to != nil {
		sel = sel.Where(entsql.LT("clock_in", toMillis(*to)))
	}
	q, args := sel.Query()
	var out []*entity.Timesheet
	err := query(ctx, r.db.Driver, q, args, func(rows *entsql.Rows) error {
		ts, err := scanTimesheet(rows)
		if err == nil {
			out = append(out, ts)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to list timesheets", "error", err)
		return nil, common.DatabaseError("failed to list timesheets", err)
	}
	return out, nil
}

func (r *timesheetRepository) findOpen(ctx context.Context, q dialect.ExecQuerier, employeeID uuid.UUID) (*entity.Timesheet, error) {
	stmt, args := r.db.builder().Select(timesheetColumns...).
		From(entsql.Table(timesheetsTable)).
		Where(entsql.And(entsql.EQ("employee_id", employeeID.String()), entsql.IsNull("clock_out"))).
		Limit(1).
		Query()
	var out *entity.Timesheet
	err := query(ctx, q, stmt, args, func(rows *entsql.Rows) error {
		ts, err := scanTimesheet(rows)
		out = ts
		return err
	})
	return out, err
}

func timesheetValues(ts *entity.Timesheet) []any {
	var clockOut *int64
	if ts.ClockOut != nil {
		v := toMillis(*ts.ClockOut)
		clockOut = &v
	}
	var outLat, outLng *float64
	if ts.ClockOutLocation != nil {
		outLat, outLng = &ts.ClockOutLocation.Latitude, &ts.ClockOutLocation.Longitude
	}
	return []any{
		ts.ID.String(), ts.EmployeeID.String(), ts.JobID, toMillis(ts.ClockIn), clockOut, ts.HourlyRate,
		ts.ClockInLocation.Latitude, ts.ClockInLocation.Longitude, outLat, outLng,
		ts.LocationValid, ts.ClockOutLocationValid,
		ts.TotalHours, ts.RegularHours, ts.OvertimeHours, ts.RegularPay, ts.OvertimePay, ts.TotalPay,
		ts.Notes,
	}
}

func scanTimesheet(rows *entsql.Rows) (*entity.Timesheet, error) {
	var (
		ts                    entity.Timesheet
		id, employeeID        string
		jobID, notes          sql.NullString
		clockIn               int64
		clockOut              sql.NullInt64
		outLat, outLng        sql.NullFloat64
		clockOutLocationValid sql.NullBool
	)
	err := rows.Scan(
		&id, &employeeID, &jobID, &clockIn, &clockOut, &ts.HourlyRate,
		&ts.ClockInLocation.Latitude, &ts.ClockInLocation.Longitude, &outLat, &outLng,
		&ts.LocationValid, &clockOutLocationValid,
		&ts.TotalHours, &ts.RegularHours, &ts.OvertimeHours, &ts.RegularPay, &ts.OvertimePay, &ts.TotalPay,
		&notes,
	)
	if err != nil {
		return nil, err
	}
	if ts.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if ts.EmployeeID, err = uuid.Parse(employeeID); err != nil {
		return nil, err
	}
	ts.ClockIn = fromMillis(clockIn)
	if clockOut.Valid {
		t := fromMillis(clockOut.Int64)
		ts.ClockOut = &t
	}
	if outLat.Valid && outLng.Valid {
		ts.ClockOutLocation = &geo.Point{Latitude: outLat.Float64, Longitude: outLng.Float64}
	}
	if clockOutLocationValid.Valid {
		v := clockOutLocationValid.Bool
		ts.ClockOutLocationValid = &v
	}
	if jobID.Valid {
		ts.JobID = &jobID.String
	}
	if notes.Valid {
		ts.Notes = &notes.String
	}
	return &ts, nil
}
