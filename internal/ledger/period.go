package ledger

import "time"

// MonthWindow returns the first and last day of the given month at UTC
// midnight. Out-of-range months are normalized the way time.Date does, so
// month 13 of 2020 is January 2021.
func MonthWindow(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}
