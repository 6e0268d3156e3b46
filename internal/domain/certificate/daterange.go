package certificate

import (
	"fmt"
	"time"
)

const (
	// InputLayout is the ISO layout used by form fields and the JSON API.
	InputLayout = "2006-01-02"
	// DisplayLayout is the dd-mm-yyyy layout used in file names and chat commands.
	DisplayLayout = "02-01-2006"

	// ExportMIMEType is the content type of exported spreadsheets.
	ExportMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateOf strips the time-of-day from t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDateRange builds a range from two instants, truncated to calendar dates.
// It does not check ordering; call Validate for that.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

// DefaultDateRange returns January 1st of now's year through now.
func DefaultDateRange(now time.Time) DateRange {
	return DateRange{
		Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   DateOf(now),
	}
}

// PreviousMonth returns the full calendar month before now's month.
func PreviousMonth(now time.Time) DateRange {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start: firstOfMonth.AddDate(0, -1, 0),
		End:   firstOfMonth.AddDate(0, 0, -1),
	}
}

// ParseDateRange parses two dates with the given layout.
func ParseDateRange(layout, start, end string) (DateRange, error) {
	s, err := time.Parse(layout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
	}
	e, err := time.Parse(layout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
	}
	return NewDateRange(s, e), nil
}

// Validate rejects ranges whose start is after their end. The range is never
// swapped.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange,
			r.Start.Format(InputLayout), r.End.Format(InputLayout))
	}
	return nil
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// ExportFileName returns certificados_<dd-mm-yyyy>_a_<dd-mm-yyyy>.xlsx.
func (r DateRange) ExportFileName() string {
	return fmt.Sprintf("certificados_%s_a_%s.xlsx", r.Start.Format(DisplayLayout), r.End.Format(DisplayLayout))
}

func (r DateRange) String() string {
	return r.Start.Format(InputLayout) + ".." + r.End.Format(InputLayout)
}
