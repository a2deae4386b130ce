package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/repository"
)

type fixture struct {
	svc        *Service
	employees  repository.EmployeeRepository
	timesheets repository.TimesheetRepository
	estimates  repository.EstimateRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "export.db"), logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { repository.Close(db, logger) })
	if err := repository.Migrate(db, logger); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	f := &fixture{
		employees:  repository.NewEmployeeRepository(db, logger),
		timesheets: repository.NewTimesheetRepository(db, logger),
		estimates:  repository.NewEstimateRepository(db, logger),
	}
	f.svc = NewService(f.timesheets, f.estimates, f.employees, logger)
	return f
}

func (f *fixture) shift(t *testing.T, employeeID uuid.UUID, in time.Time, hours float64) {
	t.Helper()
	ctx := context.Background()
	err := f.timesheets.Open(ctx, &entity.Timesheet{
		ID:              uuid.New(),
		EmployeeID:      employeeID,
		ClockIn:         in,
		HourlyRate:      20,
		ClockInLocation: geo.Point{Latitude: 36.6484, Longitude: -80.2737},
		LocationValid:   true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = f.timesheets.CloseOpen(ctx, employeeID, func(ts *entity.Timesheet) error {
		out := in.Add(time.Duration(hours * float64(time.Hour)))
		ts.ClockOut = &out
		ts.TotalHours = hours
		ts.RegularHours = hours
		ts.RegularPay = hours * 20
		ts.TotalPay = hours * 20
		return nil
	})
	if err != nil {
		t.Fatalf("CloseOpen: %v", err)
	}
}

func readRows(t *testing.T, b []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", sheet, err)
	}
	return rows
}

func TestTimesheetsXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp, err := f.employees.Create(ctx, "Dana", 20, constants.RoleForeman)
	if err != nil {
		t.Fatal(err)
	}
	f.shift(t, emp.ID, time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC), 8)
	f.shift(t, emp.ID, time.Date(2026, 5, 3, 7, 0, 0, 0, time.UTC), 6)

	b, err := f.svc.TimesheetsXLSX(ctx, nil, nil, nil)
	if err != nil {
		t.Fatalf("TimesheetsXLSX: %v", err)
	}
	rows := readRows(t, b, "Timesheets")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Date" || rows[1][1] != "Dana" {
		t.Fatalf("unexpected rows: %v", rows[:2])
	}

	from := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	b, err = f.svc.TimesheetsXLSX(ctx, &emp.ID, &from, &to)
	if err != nil {
		t.Fatalf("TimesheetsXLSX window: %v", err)
	}
	rows = readRows(t, b, "Timesheets")
	if len(rows) != 2 || rows[1][0] != "2026-05-03" {
		t.Fatalf("windowed rows = %v", rows)
	}
}

func TestTimesheetsXLSXWindowAppliedBeforeCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp, err := f.employees.Create(ctx, "Dana", 20, constants.RoleForeman)
	if err != nil {
		t.Fatal(err)
	}
	for day := 1; day <= 3; day++ {
		f.shift(t, emp.ID, time.Date(2026, 5, day, 7, 0, 0, 0, time.UTC), 8)
	}

	prev := maxRows
	maxRows = 1
	t.Cleanup(func() { maxRows = prev })

	// newer shifts must not crowd the old window out
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	b, err := f.svc.TimesheetsXLSX(ctx, &emp.ID, &from, &from)
	if err != nil {
		t.Fatalf("TimesheetsXLSX: %v", err)
	}
	rows := readRows(t, b, "Timesheets")
	if len(rows) != 2 || rows[1][0] != "2026-05-01" {
		t.Fatalf("windowed rows = %v", rows)
	}
}

func TestEstimatesXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gallons := 200.0
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	err := f.estimates.Create(ctx, &entity.Estimate{
		ID:      uuid.New(),
		JobType: constants.JobTypeSealcoating,
		Address: "12 Main St",
		Breakdown: entity.EstimateBreakdown{
			Materials: []entity.MaterialLine{
				{Name: "SealMaster PMM Concentrate", Quantity: 134, Unit: "gallon", UnitPrice: 3.65, Cost: 489.1, Gallons: &gallons},
				{Name: "Sand (50lb bags)", Quantity: 9, Unit: "bag", UnitPrice: 10, Cost: 90},
			},
			MaterialsCost: 579.1,
			Subtotal:      900,
			Total:         1260,
		},
		Currency:   "USD",
		CreatedAt:  now,
		ValidUntil: now.AddDate(0, 0, 30),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	b, err := f.svc.EstimatesXLSX(ctx)
	if err != nil {
		t.Fatalf("EstimatesXLSX: %v", err)
	}
	rows := readRows(t, b, "Estimates")
	if len(rows) != 2 || rows[1][0] != "EST-0001" || rows[1][3] != "12 Main St" {
		t.Fatalf("estimate rows = %v", rows)
	}
	lines := readRows(t, b, "Materials")
	if len(lines) != 3 || lines[1][1] != "SealMaster PMM Concentrate" || lines[2][1] != "Sand (50lb bags)" {
		t.Fatalf("material rows = %v", lines)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo world", 5); got != "héll…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
