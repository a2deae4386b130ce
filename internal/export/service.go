package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/fieldops/internal/repository"
	"github.com/joseph-ayodele/fieldops/internal/utils"
)

// maxRows bounds a single export. Tests lower it.
var maxRows = 10000

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	timesheets repository.TimesheetRepository
	estimates  repository.EstimateRepository
	employees  repository.EmployeeRepository
	logger     *slog.Logger
}

func NewService(timesheets repository.TimesheetRepository, estimates repository.EstimateRepository, employees repository.EmployeeRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{timesheets: timesheets, estimates: estimates, employees: employees, logger: logger}
}

// TimesheetsXLSX returns a workbook of timesheet entries, optionally for one
// employee and a clock-in date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
func (s *Service) TimesheetsXLSX(ctx context.Context, employeeID *uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()
	fromDate, toDate := normalizeWindow(from, to)

	// toDate is inclusive; the query bound is exclusive
	var upper *time.Time
	if toDate != nil {
		end := toDate.AddDate(0, 0, 1)
		upper = &end
	}
	list, err := s.timesheets.ListRange(ctx, employeeID, fromDate, upper, maxRows)
	if err != nil {
		return nil, fmt.Errorf("query timesheets: %w", err)
	}

	w, err := newSheet("Timesheets", []string{
		"Date", "Employee", "Job", "Clock In", "Clock Out",
		"Regular Hours", "Overtime Hours", "Total Hours",
		"Rate", "Regular Pay", "Overtime Pay", "Total Pay",
		"Location Valid", "Notes",
	})
	if err != nil {
		return nil, err
	}

	names := map[uuid.UUID]string{}
	nameOf := func(id uuid.UUID) string {
		if n, ok := names[id]; ok {
			return n
		}
		n := id.String()
		if e, err := s.employees.GetByID(ctx, id); err == nil {
			n = e.Name
		}
		names[id] = n
		return n
	}

	rows := 0
	for _, ts := range list {
		clockOut := ""
		if ts.ClockOut != nil {
			clockOut = ts.ClockOut.Format(time.RFC3339)
		}
		job := utils.StrOrEmpty(ts.JobID)
		notes := truncate(utils.StrOrEmpty(ts.Notes), 140)
		w.row(
			ts.ClockIn.Format("2006-01-02"), nameOf(ts.EmployeeID), job,
			ts.ClockIn.Format(time.RFC3339), clockOut,
			ts.RegularHours, ts.OvertimeHours, ts.TotalHours,
			ts.HourlyRate, ts.RegularPay, ts.OvertimePay, ts.TotalPay,
			ts.LocationValid, notes,
		)
		rows++
	}

	_ = w.f.SetColWidth(w.sheet, "A", "A", 12) // date
	_ = w.f.SetColWidth(w.sheet, "B", "C", 22) // employee, job
	_ = w.f.SetColWidth(w.sheet, "D", "E", 22) // clock times
	_ = w.f.SetColWidth(w.sheet, "F", "M", 13)
	_ = w.f.SetColWidth(w.sheet, "N", "N", 48) // notes

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.timesheets.ok", "rows", rows, "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// EstimatesXLSX returns a workbook with one row per estimate and a second
// sheet listing every material line.
func (s *Service) EstimatesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	list, err := s.estimates.List(ctx, maxRows)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}

	w, err := newSheet("Estimates", []string{
		"Number", "Date", "Job Type", "Address",
		"Materials", "Labor Hours", "Labor", "Equipment", "Fuel", "Travel Miles", "Travel",
		"Subtotal", "Overhead", "Profit", "Total", "Currency", "Valid Until",
	})
	if err != nil {
		return nil, err
	}
	lines, err := w.addSheet("Materials", []string{"Number", "Material", "Quantity", "Unit", "Unit Price", "Cost", "Gallons"})
	if err != nil {
		return nil, err
	}

	for _, e := range list {
		b := e.Breakdown
		w.row(
			e.Number, e.CreatedAt.Format("2006-01-02"), string(e.JobType), e.Address,
			b.MaterialsCost, b.Labor.Hours, b.Labor.Cost, b.Equipment.EquipmentCost, b.Equipment.FuelCost,
			b.Travel.Distance, b.Travel.Cost,
			b.Subtotal, b.Overhead, b.Profit, b.Total, e.Currency, e.ValidUntil.Format("2006-01-02"),
		)
		for _, m := range b.Materials {
			var gallons any = ""
			if m.Gallons != nil {
				gallons = *m.Gallons
			}
			lines.row(e.Number, m.Name, m.Quantity, m.Unit, m.UnitPrice, m.Cost, gallons)
		}
	}

	_ = w.f.SetColWidth(w.sheet, "A", "C", 16)
	_ = w.f.SetColWidth(w.sheet, "D", "D", 40) // address
	_ = w.f.SetColWidth(w.sheet, "E", "Q", 12)
	_ = w.f.SetColWidth(lines.sheet, "B", "B", 36) // material

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.estimates.ok", "rows", len(list), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
}

// newSheet starts a workbook whose active sheet is name, with a header row.
func newSheet(name string, headers []string) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, sheet: name, next: 1}
	w.row(toAny(headers)...)
	return w, nil
}

func (w *sheetWriter) addSheet(name string, headers []string) (*sheetWriter, error) {
	if _, err := w.f.NewSheet(name); err != nil {
		return nil, err
	}
	s := &sheetWriter{f: w.f, sheet: name, next: 1}
	s.row(toAny(headers)...)
	return s, nil
}

func (w *sheetWriter) row(values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.next)
		_ = w.f.SetCellValue(w.sheet, cell, v)
	}
	w.next++
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeWindow(from, to *time.Time) (*time.Time, *time.Time) {
	var fromDate, toDate *time.Time
	if from != nil {
		f := dateOnly(*from)
		fromDate = &f
	}
	if to != nil {
		t := dateOnly(*to)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		t := dateOnly(time.Now())
		toDate = &t
	}
	return fromDate, toDate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
