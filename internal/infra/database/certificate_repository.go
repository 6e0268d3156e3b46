package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certificados_dashboard/internal/domain/certificate"
)

// Connector hands out the shared database handle.
type Connector interface {
	Get(ctx context.Context) (*sql.DB, error)
	Driver() string
}

// CertificateRepository reads the certificate view.
type CertificateRepository struct {
	conn  Connector
	query string
}

func NewCertificateRepository(conn Connector) *CertificateRepository {
	return &CertificateRepository{
		conn:  conn,
		query: buildRangeQuery(conn.Driver()),
	}
}

// buildRangeQuery filters on [start, end+1 day) so a fecha carrying a time of
// day on the end date is still included.
func buildRangeQuery(driver string) string {
	lower, upper := "?", "?"
	if driver == "postgres" {
		lower, upper = "$1", "$2"
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s >= %s AND %s < %s",
		certificate.ViewName, certificate.DateColumn, lower, certificate.DateColumn, upper)
}

// FindByDateRange runs the view query with bound parameters. It returns an
// error wrapping certificate.ErrNoConnection when no handle is available and
// certificate.ErrQuery for any failure after that.
func (r *CertificateRepository) FindByDateRange(ctx context.Context, dr certificate.DateRange) (certificate.ResultSet, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return certificate.ResultSet{}, err
	}
	if db == nil {
		return certificate.ResultSet{}, certificate.ErrNoConnection
	}

	lower := dr.Start.Format(certificate.InputLayout)
	upper := dr.End.AddDate(0, 0, 1).Format(certificate.InputLayout)

	rows, err := db.QueryContext(ctx, r.query, lower, upper)
	if err != nil {
		return certificate.ResultSet{}, fmt.Errorf("%w: error querying %s: %v", certificate.ErrQuery, certificate.ViewName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return certificate.ResultSet{}, fmt.Errorf("%w: error reading columns: %v", certificate.ErrQuery, err)
	}

	rs := certificate.ResultSet{
		Columns: columns,
		Records: make([]certificate.Record, 0),
	}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return certificate.ResultSet{}, fmt.Errorf("%w: error scanning certificate row: %v", certificate.ErrQuery, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Records = append(rs.Records, certificate.Record(values))
	}
	if err = rows.Err(); err != nil {
		return certificate.ResultSet{}, fmt.Errorf("%w: error iterating certificate rows: %v", certificate.ErrQuery, err)
	}

	if !rs.Empty() {
		if err := normalizeDates(rs); err != nil {
			return certificate.ResultSet{}, fmt.Errorf("%w: %v", certificate.ErrQuery, err)
		}
	}
	return rs, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// normalizeDates replaces every DateColumn value with its calendar date.
func normalizeDates(rs certificate.ResultSet) error {
	idx := rs.ColumnIndex(certificate.DateColumn)
	if idx < 0 {
		return nil
	}
	for n, rec := range rs.Records {
		d, err := toDate(rec[idx])
		if err != nil {
			return fmt.Errorf("row %d: %w", n, err)
		}
		rec[idx] = d
	}
	return nil
}

var errUnparseableDate = errors.New("unparseable fecha value")

func toDate(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return certificate.DateOf(t), nil
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return certificate.DateOf(parsed), nil
			}
		}
		return nil, fmt.Errorf("%w: %q", errUnparseableDate, t)
	default:
		return nil, fmt.Errorf("%w: %T", errUnparseableDate, v)
	}
}
