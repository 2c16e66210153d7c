// Package period computes the bimonthly reporting windows bills are reconciled against
package period

import (
	"errors"
	"fmt"
	"time"
)

// GraceDays is the day of month up to which a date still reports on the
// previous window.
const GraceDays = 10

// Labels names the six fixed windows of a year. Position matters: index i
// covers months i*2+1 and i*2+2.
var Labels = [6]string{"Jan-Feb", "Mar-Apr", "May-June", "July-Aug", "Sep-Oct", "Nov-Dec"}

// ErrUnknownLabel is returned by FromLabel for a label not in Labels.
var ErrUnknownLabel = errors.New("unknown reporting period label")

// Period is a reporting window. Both ends are inclusive calendar dates at
// midnight UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// Resolve returns the reporting window for ref. During the first GraceDays
// days of a window the previous window is returned.
func Resolve(ref time.Time) Period {
	year, month, day := ref.Date()

	startMonth := ((int(month)-1)/2)*2 + 1
	if day <= GraceDays {
		startMonth -= 2
	}
	if startMonth < 1 {
		startMonth += 12
		year--
	}

	return window(year, time.Month(startMonth))
}

// FromLabel builds the window named by label in the given year, without the
// grace shift.
func FromLabel(year int, label string) (Period, error) {
	for i, l := range Labels {
		if l == label {
			lastMonth := i*2 + 2
			return window(year, time.Month(lastMonth-1)), nil
		}
	}
	return Period{}, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}

// window spans startMonth and the month after it. Day 0 of the month after
// the end month normalizes to the last day of the end month.
func window(year int, startMonth time.Month) Period {
	return Period{
		Start: time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, startMonth+2, 0, 0, 0, 0, 0, time.UTC),
	}
}

// FromDate is the start date in the format the ledger API expects.
func (p Period) FromDate() string { return p.Start.Format(time.DateOnly) }

// ToDate is the end date in the format the ledger API expects.
func (p Period) ToDate() string { return p.End.Format(time.DateOnly) }

// Label returns the fixed-window label of the period.
func (p Period) Label() string {
	return Labels[(int(p.Start.Month())-1)/2]
}

// Describe renders the period as "January-February, 2024".
func (p Period) Describe() string {
	return fmt.Sprintf("%s-%s, %d", p.Start.Month(), p.End.Month(), p.End.Year())
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) String() string {
	return "[" + p.FromDate() + ", " + p.ToDate() + "]"
}
