// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

// Package postgres provides PostgreSQL implementations of world repositories.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// querier abstracts query execution for *pgxpool.Pool, pgx.Tx, and pgxmock.
// This allows repository methods to work within or outside of transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txKey is the context key under which Transactor stores the active pgx.Tx.
type txKey struct{}

// queryEngine returns the transaction stored in ctx, if any, falling back to
// the repository's pool. Repository methods called inside
// Transactor.InTransaction participate in that transaction.
func queryEngine(ctx context.Context, pool querier) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// parseULID parses a ULID string scanned from the database.
// Wraps parse errors with the field name for context.
func parseULID(s, fieldName string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "parse "+fieldName).With(fieldName, s).Wrap(err)
	}
	return id, nil
}
