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
	"fmt"
	"os"
	"sync"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/container"
)

// ParquetBufferError wraps a Parquet row-group buffer failure with
// the operation that produced it.
type ParquetBufferError struct {
	Op  string
	Err error
}

func (e *ParquetBufferError) Error() string { return fmt.Sprintf("parquet buffer %s: %v", e.Op, e.Err) }
func (e *ParquetBufferError) Unwrap() error { return e.Err }

// ParquetBufferOptions configures NewParquetBufferBlock.
type ParquetBufferOptions struct {
	Path        string
	Schema      *arrow.Schema
	RowGroupLen int
	Compression compress.Compression
}

// ParquetBufferOption mutates ParquetBufferOptions during construction.
type ParquetBufferOption func(*ParquetBufferOptions)

func WithParquetRowGroupLen(n int) ParquetBufferOption {
	return func(o *ParquetBufferOptions) { o.RowGroupLen = n }
}

func WithParquetCompression(c compress.Compression) ParquetBufferOption {
	return func(o *ParquetBufferOptions) { o.Compression = c }
}

func resolveParquetOptions(path string, schema *arrow.Schema, opts []ParquetBufferOption) ParquetBufferOptions {
	o := ParquetBufferOptions{
		Path:        path,
		Schema:      schema,
		RowGroupLen: 10000,
		Compression: compress.Codecs.Snappy,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// parquetRowGroupWriter accumulates Arrow-typed column builders and
// flushes a row group once RowGroupLen rows have been buffered.
type parquetRowGroupWriter struct {
	opts      ParquetBufferOptions
	allocator memory.Allocator
	builders  []array.Builder
	file      *pqarrow.FileWriter
	osFile    *os.File

	mu  sync.Mutex
	len int
}

func newParquetRowGroupWriter(o ParquetBufferOptions) (*parquetRowGroupWriter, error) {
	f, err := os.Create(o.Path)
	if err != nil {
		return nil, &ParquetBufferError{Op: "create_file", Err: err}
	}

	props := parquet.NewWriterProperties(parquet.WithCompression(o.Compression))
	writer, err := pqarrow.NewFileWriter(o.Schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return nil, &ParquetBufferError{Op: "new_file_writer", Err: err}
	}

	allocator := memory.NewGoAllocator()
	builders := make([]array.Builder, len(o.Schema.Fields()))
	for i, field := range o.Schema.Fields() {
		builders[i] = array.NewBuilder(allocator, field.Type)
	}

	return &parquetRowGroupWriter{opts: o, allocator: allocator, builders: builders, file: writer, osFile: f}, nil
}

// appendRow appends one row of column values, positionally matched to
// the schema's field order. The caller is responsible for producing
// values of the correct Arrow-compatible type per field — this is the
// same scoping boundary the Postgres and MongoDB sinks draw: no
// generic struct-to-row mapping lives here.
func (w *parquetRowGroupWriter) appendRow(ctx context.Context, row []interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(row) != len(w.builders) {
		return &ParquetBufferError{Op: "append_row", Err: fmt.Errorf("expected %d columns, got %d", len(w.builders), len(row))}
	}
	for i, v := range row {
		if err := appendScalar(w.builders[i], v); err != nil {
			return &ParquetBufferError{Op: "append_row", Err: err}
		}
	}
	w.len++
	if w.len >= w.opts.RowGroupLen {
		return w.flushLocked()
	}
	return nil
}

func (w *parquetRowGroupWriter) flushLocked() error {
	if w.len == 0 {
		return nil
	}
	cols := make([]arrow.Array, len(w.builders))
	for i, b := range w.builders {
		cols[i] = b.NewArray()
		defer cols[i].Release()
	}
	rec := array.NewRecord(w.opts.Schema, cols, int64(w.len))
	defer rec.Release()

	if err := w.file.Write(rec); err != nil {
		return &ParquetBufferError{Op: "write_row_group", Err: err}
	}
	w.len = 0
	return nil
}

func (w *parquetRowGroupWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		return &ParquetBufferError{Op: "close_writer", Err: err}
	}
	return w.osFile.Close()
}

func appendScalar(b array.Builder, v interface{}) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch builder := b.(type) {
	case *array.Int64Builder:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", v)
		}
		builder.Append(n)
	case *array.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", v)
		}
		builder.Append(f)
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		builder.Append(s)
	case *array.BooleanBuilder:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		builder.Append(bv)
	default:
		return fmt.Errorf("unsupported column builder %T", b)
	}
	return nil
}

// NewParquetBufferBlock returns an InputContainer leaf that
// accumulates rows into Arrow column builders and flushes a parquet
// row group once RowGroupLen rows have buffered, or on Complete.
func NewParquetBufferBlock(
	ctx context.Context, path string, schema *arrow.Schema, opts ...ParquetBufferOption,
) (*container.InputContainer[[]interface{}], error) {
	o := resolveParquetOptions(path, schema, opts)

	w, err := newParquetRowGroupWriter(o)
	if err != nil {
		return nil, err
	}

	sink := block.NewActionBlock[[]interface{}](ctx, func(ctx context.Context, row []interface{}) error {
		return w.appendRow(ctx, row)
	})

	ic, err := container.NewInputContainer[[]interface{}](sink, container.WithContainerName("ParquetSink"))
	if err != nil {
		w.close()
		return nil, err
	}

	go func() {
		<-sink.Completion().Done()
		w.close()
	}()

	return ic, nil
}
