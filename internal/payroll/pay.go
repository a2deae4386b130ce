// Package payroll turns clock-in/clock-out pairs into regular and overtime pay.
package payroll

import "time"

const (
	// RegularHoursThreshold is the number of hours per shift paid at the base rate.
	RegularHoursThreshold = 8.0
	// OvertimeMultiplier applies to every hour past RegularHoursThreshold.
	OvertimeMultiplier = 1.5
)

// Pay is the result of closing a shift.
type Pay struct {
	TotalHours    float64 `json:"totalHours"`
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	RegularPay    float64 `json:"regularPay"`
	OvertimePay   float64 `json:"overtimePay"`
	TotalPay      float64 `json:"totalPay"`
}

// Compute splits the shift into regular and overtime hours and prices them.
// Elapsed time is measured at millisecond resolution; a clockOut before
// clockIn yields zero hours.
func Compute(clockIn, clockOut time.Time, hourlyRate float64) Pay {
	ms := clockOut.Sub(clockIn).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	total := float64(ms) / 3600000

	regular := min(total, RegularHoursThreshold)
	overtime := max(0, total-RegularHoursThreshold)

	regularPay := regular * hourlyRate
	overtimePay := overtime * hourlyRate * OvertimeMultiplier

	return Pay{
		TotalHours:    total,
		RegularHours:  regular,
		OvertimeHours: overtime,
		RegularPay:    regularPay,
		OvertimePay:   overtimePay,
		TotalPay:      regularPay + overtimePay,
	}
}
