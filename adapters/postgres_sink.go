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

// Package adapters provides thin ActionBlock-shaped sinks wired to
// real external collaborators (Postgres, MongoDB, S3, Arrow/Parquet,
// CSV), plus CSV and Postgres sources. Each sink accepts a pre-built
// row, document, or object and writes it out using the real driver
// with no entity-to-row mapping or column-mapping machinery — that
// layer is a deliberate non-goal. Every sink is an InputContainer
// leaf, so it plugs into InputOutputContainer.LinkTo and the rest of
// the container package's fault/completion protocol exactly like any
// other child. The sources are BufferBlocks, fed by their own
// goroutine, that a container links from with LinkFrom.
package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/container"
)

// PostgresSinkError wraps a Postgres bulk-sink failure with the
// operation that produced it.
type PostgresSinkError struct {
	Op  string
	Err error
}

func (e *PostgresSinkError) Error() string { return fmt.Sprintf("postgres sink %s: %v", e.Op, e.Err) }
func (e *PostgresSinkError) Unwrap() error { return e.Err }

// Row is a single pre-built tuple of column values, in the order
// Columns lists them. Building this tuple from a domain object is the
// caller's responsibility — out of scope here by design.
type Row []interface{}

// PostgresSinkOptions configures NewPostgresBulkSink.
type PostgresSinkOptions struct {
	DSN             string
	Table           string
	Columns         []string
	BatchSize       int
	FlushInterval   time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresSinkOption mutates PostgresSinkOptions during construction.
type PostgresSinkOption func(*PostgresSinkOptions)

func WithPostgresBatchSize(n int) PostgresSinkOption {
	return func(o *PostgresSinkOptions) { o.BatchSize = n }
}

func WithPostgresFlushInterval(d time.Duration) PostgresSinkOption {
	return func(o *PostgresSinkOptions) { o.FlushInterval = d }
}

func WithPostgresPool(maxOpen, maxIdle int, lifetime time.Duration) PostgresSinkOption {
	return func(o *PostgresSinkOptions) {
		o.MaxOpenConns = maxOpen
		o.MaxIdleConns = maxIdle
		o.ConnMaxLifetime = lifetime
	}
}

func resolvePostgresOptions(dsn, table string, columns []string, opts []PostgresSinkOption) PostgresSinkOptions {
	o := PostgresSinkOptions{
		DSN:             dsn,
		Table:           table,
		Columns:         columns,
		BatchSize:       500,
		FlushInterval:   2 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// postgresBatcher buffers rows and flushes them in one transaction,
// executing one prepared INSERT per row, following the teacher's
// prepared-statement-per-flush pattern but narrowed to pre-built row
// tuples.
type postgresBatcher struct {
	db      *sql.DB
	opts    PostgresSinkOptions
	mu      sync.Mutex
	pending []Row
}

func (p *postgresBatcher) add(ctx context.Context, row Row) error {
	p.mu.Lock()
	p.pending = append(p.pending, row)
	shouldFlush := len(p.pending) >= p.opts.BatchSize
	p.mu.Unlock()
	if shouldFlush {
		return p.flush(ctx)
	}
	return nil
}

func (p *postgresBatcher) flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &PostgresSinkError{Op: "begin", Err: err}
	}

	placeholders := make([]string, len(p.opts.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		p.opts.Table, strings.Join(p.opts.Columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return &PostgresSinkError{Op: "prepare", Err: err}
	}
	defer stmt.Close()

	for _, row := range batch {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			tx.Rollback()
			return &PostgresSinkError{Op: "exec", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PostgresSinkError{Op: "commit", Err: err}
	}
	return nil
}

// NewPostgresBulkSink opens a Postgres connection pool and returns an
// InputContainer leaf that batches incoming rows and flushes them via
// batched prepared-statement inserts.
func NewPostgresBulkSink(
	ctx context.Context, table string, columns []string, dsn string, opts ...PostgresSinkOption,
) (*container.InputContainer[Row], *sql.DB, error) {
	o := resolvePostgresOptions(dsn, table, columns, opts)

	db, err := sql.Open("postgres", o.DSN)
	if err != nil {
		return nil, nil, &PostgresSinkError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, &PostgresSinkError{Op: "ping", Err: err}
	}

	batcher := &postgresBatcher{db: db, opts: o}

	sink := block.NewActionBlock[Row](ctx, func(ctx context.Context, row Row) error {
		return batcher.add(ctx, row)
	})

	ic, err := container.NewInputContainer[Row](sink, container.WithContainerName(o.Table+"Sink"))
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	go func() {
		<-sink.Completion().Done()
		batcher.flush(context.Background())
	}()

	return ic, db, nil
}
