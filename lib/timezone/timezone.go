package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Madrid")
	if err != nil {
		panic(err)
	}
}

// force timezone to be the one the meter lives in, since cloud hosts
// end up in arbitrary zones which will cause disturbances when
// manipulating dates based on <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}

// PreviousMonth returns the first and last day of the calendar month
// before `now`, both at midnight in the app timezone. The bounds are
// meant to be used inclusively on both ends.
func PreviousMonth(now time.Time) (start time.Time, end time.Time) {
	now = now.In(Location)
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, Location)
	start = firstOfCurrent.AddDate(0, -1, 0)
	end = firstOfCurrent.AddDate(0, 0, -1)
	return start, end
}

// FormatDay renders a date as yyyy-mm-dd, the form the document store
// expects for date filters.
func FormatDay(t time.Time) string {
	return t.In(Location).Format("2006-01-02")
}
