package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"certificados_dashboard/internal/domain/certificate"
	"certificados_dashboard/internal/infra/config"
	"certificados_dashboard/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE certificados (
	id        INTEGER PRIMARY KEY,
	proveedor TEXT NOT NULL,
	valor     REAL NOT NULL,
	creado    DATETIME NOT NULL
);
CREATE VIEW vw_consulta_certificados AS
	SELECT id, proveedor, valor, creado AS fecha FROM certificados;
`

// newSQLiteProvider returns a provider backed by a fresh file database
// holding the certificate view and the given rows (proveedor, fecha).
func newSQLiteProvider(t *testing.T, rows [][2]string) *Provider {
	t.Helper()

	p := NewProvider(config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "certificados.db"),
	}, logger.Discard())
	t.Cleanup(func() { p.Close() })

	db, err := p.Get(context.Background())
	require.NoError(t, err)

	_, err = db.Exec(schema)
	require.NoError(t, err)
	for i, r := range rows {
		_, err = db.Exec(`INSERT INTO certificados (id, proveedor, valor, creado) VALUES (?, ?, ?, ?)`,
			i+1, r[0], float64(i+1)*100.5, r[1])
		require.NoError(t, err)
	}
	return p
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCertificateRepository_FindByDateRange_FiltersInclusive(t *testing.T) {
	p := newSQLiteProvider(t, [][2]string{
		{"Acme", "2023-12-31 23:59:59"},
		{"Globex", "2024-01-01 00:00:00"},
		{"Initech", "2024-06-15 10:30:00"},
		{"Umbrella", "2024-12-31 18:00:00"},
		{"Hooli", "2025-01-01 00:00:00"},
	})
	repo := NewCertificateRepository(p)

	dr := certificate.NewDateRange(day(2024, 1, 1), day(2024, 12, 31))
	rs, err := repo.FindByDateRange(context.Background(), dr)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "proveedor", "valor", "fecha"}, rs.Columns)
	require.Equal(t, 3, rs.Len())

	var names []string
	for _, rec := range rs.Records {
		names = append(names, rec[1].(string))
	}
	assert.Equal(t, []string{"Globex", "Initech", "Umbrella"}, names)

	dates := rs.Dates()
	require.Len(t, dates, 3)
	for _, d := range dates {
		assert.True(t, dr.Contains(d), "fecha %s outside range", d)
		assert.Equal(t, certificate.DateOf(d), d, "fecha keeps a time of day")
	}
	assert.Equal(t, []time.Time{day(2024, 1, 1), day(2024, 6, 15), day(2024, 12, 31)}, dates)
}

func TestCertificateRepository_FindByDateRange_PlainDates(t *testing.T) {
	p := newSQLiteProvider(t, [][2]string{
		{"Acme", "2024-02-10"},
		{"Globex", "2024-03-01"},
	})
	repo := NewCertificateRepository(p)

	rs, err := repo.FindByDateRange(context.Background(), certificate.NewDateRange(day(2024, 2, 10), day(2024, 2, 10)))
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, day(2024, 2, 10), rs.Records[0][3])
}

func TestCertificateRepository_FindByDateRange_Empty(t *testing.T) {
	p := newSQLiteProvider(t, [][2]string{{"Acme", "2020-05-05"}})
	repo := NewCertificateRepository(p)

	rs, err := repo.FindByDateRange(context.Background(), certificate.NewDateRange(day(2024, 1, 1), day(2024, 12, 31)))
	require.NoError(t, err)
	assert.True(t, rs.Empty())
	assert.False(t, rs.Unavailable)
	assert.Equal(t, []string{"id", "proveedor", "valor", "fecha"}, rs.Columns)
}

func TestCertificateRepository_FindByDateRange_MissingSettings(t *testing.T) {
	p := NewProvider(config.DatabaseConfig{Driver: "mysql"}, logger.Discard())
	repo := NewCertificateRepository(p)

	_, err := repo.FindByDateRange(context.Background(), certificate.NewDateRange(day(2024, 1, 1), day(2024, 12, 31)))
	assert.ErrorIs(t, err, certificate.ErrNoConnection)
	assert.ErrorIs(t, err, certificate.ErrMissingSetting)
}

func TestCertificateRepository_FindByDateRange_QueryError(t *testing.T) {
	p := NewProvider(config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "empty.db"),
	}, logger.Discard())
	t.Cleanup(func() { p.Close() })
	repo := NewCertificateRepository(p)

	// No view exists in this database.
	_, err := repo.FindByDateRange(context.Background(), certificate.NewDateRange(day(2024, 1, 1), day(2024, 12, 31)))
	assert.ErrorIs(t, err, certificate.ErrQuery)
	assert.NotErrorIs(t, err, certificate.ErrNoConnection)
}

func TestProvider_MemoizesHandle(t *testing.T) {
	p := newSQLiteProvider(t, nil)

	first, err := p.Get(context.Background())
	require.NoError(t, err)
	second, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, first.Stats().MaxOpenConnections)
}

func TestProvider_FirstGetIgnoresCallerCancellation(t *testing.T) {
	p := NewProvider(config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "certificados.db"),
	}, logger.Discard())
	t.Cleanup(func() { p.Close() })

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	first, err := p.Get(cancelled)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestProvider_MemoizesFailure(t *testing.T) {
	p := NewProvider(config.DatabaseConfig{
		Driver: "mysql",
		Host:   "127.0.0.1",
		User:   "reporter",
		Name:   "retenciones",
		Port:   "1",
	}, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := p.Get(ctx)
	assert.Nil(t, db)
	assert.ErrorIs(t, err, certificate.ErrNoConnection)
	assert.NotErrorIs(t, err, certificate.ErrMissingSetting)

	_, again := p.Get(ctx)
	assert.Same(t, err, again)
	assert.NoError(t, p.Close())
}

func TestBuildRangeQuery(t *testing.T) {
	assert.Equal(t, "SELECT * FROM vw_consulta_certificados WHERE fecha >= ? AND fecha < ?", buildRangeQuery("mysql"))
	assert.Equal(t, "SELECT * FROM vw_consulta_certificados WHERE fecha >= $1 AND fecha < $2", buildRangeQuery("postgres"))
}

func TestDataSourceName(t *testing.T) {
	dsn, err := dataSourceName(config.DatabaseConfig{
		Driver: "mysql", Host: "db", User: "u", Password: "p", Name: "certs", Port: "3306",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "u:p@tcp(db:3306)/certs")
	assert.Contains(t, dsn, "parseTime=true")

	dsn, err = dataSourceName(config.DatabaseConfig{
		Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "certs", Port: "5432",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/certs", dsn)

	_, err = dataSourceName(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestToDate(t *testing.T) {
	got, err := toDate(time.Date(2024, 7, 4, 13, 14, 15, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 7, 4), got)

	got, err = toDate("2024-07-04T13:14:15Z")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 7, 4), got)

	got, err = toDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = toDate("yesterday")
	assert.ErrorIs(t, err, errUnparseableDate)
}

var _ Connector = (*Provider)(nil)
var _ certificate.Repository = (*CertificateRepository)(nil)
