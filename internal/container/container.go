package container

import (
	"fmt"

	"exampulse/adapters/excel"
	"exampulse/adapters/fixture"
	"exampulse/adapters/postgres"
	"exampulse/app"
	"exampulse/internal"
	"exampulse/internal/config"
	"exampulse/internal/errors"
	"exampulse/internal/metrics"
	"exampulse/internal/session"
	"exampulse/internal/store"
	"exampulse/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Metrics

	// Data
	Source ports.RecordSource
	Store  *store.Store

	// Services
	Sessions   *session.Manager
	Dashboards *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:  cfg,
		Logger:  internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Metrics: metrics.New(),
	}

	if cfg.Data.Source == config.SourcePostgres {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, errors.DatabaseError("failed to connect to database", err)
		}
		c.DB = db
	}

	source, err := NewSource(cfg, c.DB)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Source = source

	c.Store = store.New(source,
		store.WithTimeout(cfg.Data.LoadTimeout),
		store.WithLogger(c.Logger),
		store.WithMetrics(c.Metrics),
	)
	c.Sessions = session.NewManager(c.Store, session.Options{
		CacheEnabled: cfg.Data.CacheEnabled,
		Logger:       c.Logger,
		Metrics:      c.Metrics,
	}, session.DefaultTTL)
	c.Dashboards = app.NewDashboardService(c.Store, c.Sessions, c.Logger)

	c.Logger.With("Container").Info("using %s record source", source.Name())
	return c, nil
}

// NewSource selects the record source named by the configuration
func NewSource(cfg *config.Config, db *sqlx.DB) (ports.RecordSource, error) {
	switch cfg.Data.Source {
	case config.SourceFixture:
		return fixture.NewSource(cfg.Data.FixtureDelay), nil
	case config.SourceFile:
		return excel.NewDataReader(cfg.Data.File), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, errors.ConfigInvalid("postgres source needs a database connection")
		}
		return postgres.NewStudentRepository(db), nil
	default:
		return nil, errors.ConfigInvalid("unknown DATA_SOURCE " + cfg.Data.Source)
	}
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
