package certificate

import "time"

const (
	// ViewName is the read-only view all certificate queries run against.
	ViewName = "vw_consulta_certificados"
	// DateColumn is the view column the date range filters on.
	DateColumn = "fecha"
)

// Record is one row of the view. Values are aligned with ResultSet.Columns.
type Record []any

// ResultSet holds the rows returned for a DateRange, in database order.
// It is never mutated after the fetcher hands it out.
type ResultSet struct {
	Columns []string
	Records []Record
	// Unavailable is set when the set is empty because no database
	// connection could be obtained, as opposed to no rows matching.
	Unavailable bool
}

// Empty reports whether the set has no records.
func (rs ResultSet) Empty() bool {
	return len(rs.Records) == 0
}

// Len returns the number of records.
func (rs ResultSet) Len() int {
	return len(rs.Records)
}

// ColumnIndex returns the position of name in Columns, or -1.
func (rs ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Dates returns the DateColumn value of every record. Records whose value is
// not a time.Time are skipped.
func (rs ResultSet) Dates() []time.Time {
	idx := rs.ColumnIndex(DateColumn)
	if idx < 0 {
		return nil
	}
	dates := make([]time.Time, 0, len(rs.Records))
	for _, r := range rs.Records {
		if idx >= len(r) {
			continue
		}
		if t, ok := r[idx].(time.Time); ok {
			dates = append(dates, t)
		}
	}
	return dates
}

// ExportArtifact is an in-memory spreadsheet ready to be downloaded.
type ExportArtifact struct {
	FileName string
	MIMEType string
	Data     []byte
	Rows     int
}
