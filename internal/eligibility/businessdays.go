package eligibility

import "time"

// AddBusinessDays returns the date n business days after t, skipping
// Saturdays and Sundays. Public holidays are out of scope for the SOP's
// pending-date calculation.
func AddBusinessDays(t time.Time, n int) time.Time {
	added := 0
	for added < n {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return t
}
