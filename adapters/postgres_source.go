//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The flowgraph authors
//
// This file is part of flowgraph.
//
// flowgraph is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// flowgraph is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with flowgraph. If not, see https://www.gnu.org/licenses/.

package adapters

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hangy/flowgraph/block"
)

// PostgresSourceError wraps a Postgres row-source failure with the
// operation that produced it.
type PostgresSourceError struct {
	Op  string
	Err error
}

func (e *PostgresSourceError) Error() string { return fmt.Sprintf("postgres source %s: %v", e.Op, e.Err) }
func (e *PostgresSourceError) Unwrap() error { return e.Err }

// NewPostgresQuerySource runs query against db and returns a
// BufferBlock producing one Row per result row, column order
// matching the query's own column order. db is not closed here: the
// caller owns the pool, mirroring NewPostgresBulkSink's symmetric
// sink side.
func NewPostgresQuerySource(ctx context.Context, db *sql.DB, query string, args ...interface{}) *block.BufferBlock[Row] {
	out := block.NewBufferBlock[Row](ctx, block.WithName("PostgresSource"))

	go func() {
		defer out.Complete()

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			out.Fault(&PostgresSourceError{Op: "query", Err: err})
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			out.Fault(&PostgresSourceError{Op: "columns", Err: err})
			return
		}

		for rows.Next() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			scanTargets := make([]interface{}, len(cols))
			values := make([]interface{}, len(cols))
			for i := range values {
				scanTargets[i] = &values[i]
			}
			if err := rows.Scan(scanTargets...); err != nil {
				out.Fault(&PostgresSourceError{Op: "scan", Err: err})
				return
			}

			row := Row(values)
			if err := out.Send(ctx, row); err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			out.Fault(&PostgresSourceError{Op: "rows", Err: err})
		}
	}()

	return out
}
