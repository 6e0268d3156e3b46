package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"certificados_dashboard/internal/domain/certificate"
	"certificados_dashboard/internal/infra/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// A single shared connection, kept for the process lifetime.
	defaultMaxOpenConns    = 1
	defaultMaxIdleConns    = 1
	defaultConnMaxLifetime = 0
	defaultPingTimeout     = 10 * time.Second
)

// Provider lazily opens the one database handle the process uses and
// memoizes the outcome. A failed attempt is not retried.
type Provider struct {
	cfg    config.DatabaseConfig
	logger *logrus.Entry

	once sync.Once
	db   *sql.DB
	err  error
}

// NewProvider creates a provider. No connection is attempted until Get.
func NewProvider(cfg config.DatabaseConfig, logger *logrus.Entry) *Provider {
	return &Provider{cfg: cfg, logger: logger}
}

// Driver returns the configured database/sql driver name.
func (p *Provider) Driver() string {
	return p.cfg.Driver
}

// Get returns the shared handle, opening it on first use. Cancellation of ctx
// does not abort the one-time attempt, since its outcome is kept. The returned error
// always wraps certificate.ErrNoConnection, and also
// certificate.ErrMissingSetting when the cause is configuration.
func (p *Provider) Get(ctx context.Context) (*sql.DB, error) {
	p.once.Do(func() {
		p.db, p.err = p.connect(context.WithoutCancel(ctx))
		if p.err != nil {
			p.logger.WithError(p.err).Error("Could not connect to database; serving without data")
			return
		}
		p.logger.WithField("driver", p.cfg.Driver).Info("Database connection established successfully.")
	})
	return p.db, p.err
}

// Close releases the handle if one was opened.
func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *Provider) connect(ctx context.Context) (*sql.DB, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", certificate.ErrNoConnection, certificate.ErrMissingSetting, err)
	}

	dsn, err := dataSourceName(p.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", certificate.ErrNoConnection, certificate.ErrMissingSetting, err)
	}

	db, err := sql.Open(p.cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database connection: %v", certificate.ErrNoConnection, err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", certificate.ErrNoConnection, err)
	}

	return db, nil
}

func dataSourceName(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   net.JoinHostPort(cfg.Host, cfg.Port),
			Path:   "/" + cfg.Name,
		}
		return u.String(), nil
	case "sqlite":
		return cfg.Name, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
