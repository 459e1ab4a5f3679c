// Package store persists the process dataset in a relational database and
// reads date ranges back out of it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"  // postgres driver, registered as "pgx"
	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
	"github.com/sirupsen/logrus"
	proton "github.com/timeplus-io/proton-go-driver/v2"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/models"
)

const (
	pingTimeout  = 10 * time.Second
	pingInterval = 2 * time.Second
)

// Store is a process table in one database
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	schema  []Column
}

// New wraps an already opened database handle
func New(db *sql.DB, dialect Dialect, table string) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		table:   table,
		schema:  GetProcessSchema(),
	}
}

// Open connects to the database described by cfg and verifies the connection
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Connecting to %s at %s", dialect.Name(), RedactedDSN(cfg))

	var db *sql.DB
	if cfg.Driver == config.DriverProton {
		db = proton.OpenDB(ProtonOptions(cfg))
	} else {
		dsn, err := BuildDSN(cfg)
		if err != nil {
			return nil, err
		}
		db, err = sql.Open(dialect.DriverName(), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s connection: %w", dialect.Name(), err)
		}
	}

	// Embedded engines allow a single writer
	if cfg.IsFileBased() {
		db.SetMaxOpenConns(1)
	}

	if err := ping(ctx, db, dialect.Name(), cfg.PingAttempts); err != nil {
		db.Close()
		return nil, err
	}

	logrus.Infof("Successfully connected to %s", dialect.Name())
	return New(db, dialect, cfg.Table), nil
}

// ping tests the connection, retrying up to attempts times
func ping(ctx context.Context, db *sql.DB, name string, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}

	var pingErr error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			return nil
		}
		logrus.Warnf("Failed to ping %s (attempt %d/%d): %v", name, i+1, attempts, pingErr)

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pingInterval):
			}
		}
	}
	return fmt.Errorf("failed to ping %s after %d attempts: %w", name, attempts, pingErr)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect returns the SQL dialect of the store
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Table returns the name of the process table
func (s *Store) Table() string {
	return s.table
}

// DropTable drops the process table if it exists
func (s *Store) DropTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.DropTable(s.table)); err != nil {
		return fmt.Errorf("failed to drop table '%s': %w", s.table, err)
	}
	return nil
}

// ReplaceProcessTable drops the process table, recreates it and inserts every
// record of ds in a single transaction. It returns the number of rows written.
func (s *Store) ReplaceProcessTable(ctx context.Context, ds models.Dataset) (int64, error) {
	if err := s.DropTable(ctx); err != nil {
		return 0, err
	}

	create := s.dialect.CreateTable(s.table, s.schema)
	logrus.Debugf("Creating process table: %s", create)
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("failed to create table '%s': %w", s.table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.Insert(s.table, columnNames(s.schema)))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for _, r := range ds {
		if _, err := stmt.ExecContext(ctx, r.Date.UTC(), r.ExpParam, r.ConstParam, r.RandParam, r.SinParam); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert row for %s: %w", r.Date.Format(time.DateOnly), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %d rows: %w", written, err)
	}

	logrus.WithFields(logrus.Fields{
		"table": s.table,
		"rows":  written,
	}).Info("Replaced process table")
	return written, nil
}

// QueryProcessRange returns the records dated in [from, to), ordered by date
func (s *Store) QueryProcessRange(ctx context.Context, from, to time.Time) (models.Dataset, error) {
	query := s.dialect.SelectRange(s.table, columnNames(s.schema), ColumnDate)
	rows, err := s.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query table '%s': %w", s.table, err)
	}
	defer rows.Close()

	ds := make(models.Dataset, 0)
	for rows.Next() {
		var (
			rawDate interface{}
			r       models.ProcessRecord
		)
		if err := rows.Scan(&rawDate, &r.ExpParam, &r.ConstParam, &r.RandParam, &r.SinParam); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if r.Date, err = parseTime(rawDate); err != nil {
			return nil, fmt.Errorf("failed to read %s column: %w", ColumnDate, err)
		}
		ds = append(ds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"table": s.table,
		"from":  from.Format(time.DateOnly),
		"to":    to.Format(time.DateOnly),
		"rows":  len(ds),
	}).Info("Queried process range")
	return ds, nil
}

// CountRows returns the number of rows in the process table
func (s *Store) CountRows(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, s.dialect.Count(s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in '%s': %w", s.table, err)
	}
	return n, nil
}
