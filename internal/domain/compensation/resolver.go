package compensation

import "time"

// periodEndDay caps the overlap window for adjustments at day 28 of the
// month. Adjustments ending on day 29-31 of the target month are therefore
// still included; see the resolver tests pinning this behavior.
const periodEndDay = 28

// PeriodBounds returns the first day and the (fixed) last day of the payroll
// period for the given month and year.
func PeriodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month), periodEndDay, 0, 0, 0, 0, time.UTC)
	return start, end
}

// ActiveSalary selects the single salary record effective on the target
// date. A record is a candidate when its interval covers the date; among
// candidates the one with the latest start date wins, which tolerates
// overlapping open-ended records instead of rejecting them. The second
// return value is false when no record is effective.
func ActiveSalary(records []SalaryRecord, target time.Time) (SalaryRecord, bool) {
	var best SalaryRecord
	found := false
	for _, rec := range records {
		if rec.StartDate.After(target) {
			continue
		}
		if rec.EndDate != nil && rec.EndDate.Before(target) {
			continue
		}
		if !found || rec.StartDate.After(best.StartDate) {
			best = rec
			found = true
		}
	}
	return best, found
}

// ActiveAdjustments returns every adjustment whose interval overlaps the
// period, preserving input order. Open-ended records overlap any period they
// started before.
func ActiveAdjustments(records []AdjustmentRecord, periodStart, periodEnd time.Time) []AdjustmentRecord {
	var active []AdjustmentRecord
	for _, rec := range records {
		if rec.StartDate.After(periodEnd) {
			continue
		}
		if rec.EndDate != nil && rec.EndDate.Before(periodStart) {
			continue
		}
		active = append(active, rec)
	}
	return active
}
