// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-rest-common/internal/config"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/migrations"
	"github.com/MKhiriev/go-rest-common/querylog"
)

// DB wraps *sql.DB with the dialect-specific query builder and records every
// executed statement in the request's [querylog.Recorder].
type DB struct {
	*sql.DB
	dialect  string
	builder  sq.StatementBuilderType
	isUnique func(error) bool
	logger   *logger.Logger
}

// NewConnect opens the database selected by cfg.Driver.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

func newDB(conn *sql.DB, dialect string, placeholder sq.PlaceholderFormat, isUnique func(error) bool, log *logger.Logger) *DB {
	return &DB{
		DB:       conn,
		dialect:  dialect,
		builder:  sq.StatementBuilder.PlaceholderFormat(placeholder),
		isUnique: isUnique,
		logger:   log,
	}
}

// Migrate applies pending schema migrations for the connection's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// QueryRowContext records query and delegates to [sql.DB.QueryRowContext].
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	querylog.Record(ctx, query)
	return db.DB.QueryRowContext(ctx, query, args...)
}

// QueryContext records query and delegates to [sql.DB.QueryContext].
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	querylog.Record(ctx, query)
	return db.DB.QueryContext(ctx, query, args...)
}

// ExecContext records query and delegates to [sql.DB.ExecContext].
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	querylog.Record(ctx, query)
	return db.DB.ExecContext(ctx, query, args...)
}

func (db *DB) uniqueViolation(err error) bool {
	return db.isUnique != nil && db.isUnique(err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
