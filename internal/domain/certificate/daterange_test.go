package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_ExportFileName(t *testing.T) {
	r := NewDateRange(date(2024, time.January, 1), date(2024, time.December, 31))
	assert.Equal(t, "certificados_01-01-2024_a_31-12-2024.xlsx", r.ExportFileName())
}

func TestDateRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"ordered", NewDateRange(date(2024, 1, 1), date(2024, 12, 31)), false},
		{"same day", NewDateRange(date(2024, 5, 5), date(2024, 5, 5)), false},
		{"reversed", NewDateRange(date(2024, 12, 31), date(2024, 1, 1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDateRange_ValidateDoesNotSwap(t *testing.T) {
	r := NewDateRange(date(2024, 12, 31), date(2024, 1, 1))
	_ = r.Validate()
	assert.Equal(t, date(2024, 12, 31), r.Start)
	assert.Equal(t, date(2024, 1, 1), r.End)
}

func TestNewDateRange_StripsTime(t *testing.T) {
	r := NewDateRange(time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC), time.Date(2024, 3, 6, 1, 2, 3, 4, time.UTC))
	assert.Equal(t, date(2024, 3, 5), r.Start)
	assert.Equal(t, date(2024, 3, 6), r.End)
}

func TestDefaultDateRange(t *testing.T) {
	now := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	r := DefaultDateRange(now)
	assert.Equal(t, date(2026, 1, 1), r.Start)
	assert.Equal(t, date(2026, 10, 18), r.End)
}

func TestPreviousMonth(t *testing.T) {
	r := PreviousMonth(time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, date(2024, 2, 1), r.Start)
	assert.Equal(t, date(2024, 2, 29), r.End)

	r = PreviousMonth(time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, date(2024, 12, 1), r.Start)
	assert.Equal(t, date(2024, 12, 31), r.End)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange(DisplayLayout, "01-01-2024", "31-12-2024")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1), r.Start)
	assert.Equal(t, date(2024, 12, 31), r.End)

	_, err = ParseDateRange(InputLayout, "2024-13-01", "2024-12-31")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDateRange_Contains(t *testing.T) {
	r := NewDateRange(date(2024, 1, 1), date(2024, 12, 31))
	assert.True(t, r.Contains(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, r.Contains(date(2024, 1, 1)))
	assert.False(t, r.Contains(date(2023, 12, 31)))
	assert.False(t, r.Contains(date(2025, 1, 1)))
}

func TestResultSet_Dates(t *testing.T) {
	rs := ResultSet{
		Columns: []string{"id", DateColumn},
		Records: []Record{{int64(1), date(2024, 2, 1)}, {int64(2), "not a date"}},
	}
	assert.Equal(t, []time.Time{date(2024, 2, 1)}, rs.Dates())
	assert.Equal(t, 1, rs.ColumnIndex(DateColumn))
	assert.Equal(t, -1, rs.ColumnIndex("missing"))
	assert.False(t, rs.Empty())
	assert.True(t, ResultSet{}.Empty())
}
