package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/koustreak/dbanalyser/internal/analyser"
	mysqldialect "github.com/koustreak/dbanalyser/internal/analyser/mysql"
	"github.com/koustreak/dbanalyser/internal/archive"
	"github.com/koustreak/dbanalyser/internal/config"
	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/database/mysql"
	"github.com/koustreak/dbanalyser/internal/errs"
	"github.com/koustreak/dbanalyser/internal/filestore"
	"github.com/koustreak/dbanalyser/internal/filestore/minio"
	"github.com/koustreak/dbanalyser/internal/logger"
)

type globalOptions struct {
	configPath string
	dsn        string
	logLevel   string
}

// app holds the wired components for one command run.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       database.DB
	analyser *analyser.Analyser
	store    filestore.Store
	archive  *archive.Archive // nil when the store is disabled
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dsn != "" {
		cfg.Database.DSN = opts.dsn
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp connects to the database and, when enabled, the archive store.
func openApp(ctx context.Context, opts *globalOptions, progress bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LoggerConfig())

	db, err := mysql.New(ctx, cfg.DatabaseConfig())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, db: db}

	analyserOpts := []analyser.Option{analyser.WithLogger(log)}
	if progress {
		analyserOpts = append(analyserOpts, analyser.WithProgress(analyser.LogProgress{Log: log}))
	}
	a.analyser = analyser.New(db, mysqldialect.New(), db.DatabaseName(), analyserOpts...)

	if cfg.Store.Enabled {
		store, err := minio.New(ctx, cfg.FilestoreConfig())
		if err != nil {
			db.Close()
			return nil, err
		}
		a.store = store
		a.archive = archive.New(store, log)
	}

	log.InfoWith("connected", map[string]interface{}{
		"database": db.DatabaseName(),
		"archive":  cfg.Store.Enabled,
	})
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	a.db.Close()
}

// requireArchive fails commands that need a baseline when the store is off.
func (a *app) requireArchive() error {
	if a.archive == nil {
		return errs.New(errs.ErrKindInvalidInput, "this command needs the analysis archive: set store.enabled in the config")
	}
	return nil
}

// analysisContext bounds one analysis by database.query_timeout.
func (a *app) analysisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Database.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Database.QueryTimeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
