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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hangy/flowgraph/block"
)

// CSVSourceError wraps a CSV source read failure with the operation
// that produced it.
type CSVSourceError struct {
	Op  string
	Err error
}

func (e *CSVSourceError) Error() string { return fmt.Sprintf("csv source %s: %v", e.Op, e.Err) }
func (e *CSVSourceError) Unwrap() error { return e.Err }

// CSVSourceOptions configures NewCSVSource.
type CSVSourceOptions struct {
	Comma      rune
	HasHeaders bool
}

// CSVSourceOption mutates CSVSourceOptions during construction.
type CSVSourceOption func(*CSVSourceOptions)

func WithCSVSourceComma(r rune) CSVSourceOption {
	return func(o *CSVSourceOptions) { o.Comma = r }
}

func WithCSVSourceHasHeaders(has bool) CSVSourceOption {
	return func(o *CSVSourceOptions) { o.HasHeaders = has }
}

func resolveCSVSourceOptions(opts []CSVSourceOption) CSVSourceOptions {
	o := CSVSourceOptions{Comma: ',', HasHeaders: true}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// NewCSVSource returns a BufferBlock producing one Row per CSV
// record, values in the record's column order. When HasHeaders is
// true the first line is read and discarded; Rows carry no column
// names. r is closed once the file is fully read or
// ctx is canceled. Values are type-inferred the same way the
// Postgres and MongoDB sinks leave mapping to the caller: a Row
// here is the raw inferred scalar per column, nothing more.
func NewCSVSource(ctx context.Context, r io.ReadCloser, opts ...CSVSourceOption) *block.BufferBlock[Row] {
	o := resolveCSVSourceOptions(opts)
	out := block.NewBufferBlock[Row](ctx, block.WithName("CSVSource"))

	go func() {
		defer r.Close()
		defer out.Complete()

		reader := csv.NewReader(r)
		reader.Comma = o.Comma

		if o.HasHeaders {
			if _, err := reader.Read(); err != nil {
				out.Fault(&CSVSourceError{Op: "read_headers", Err: err})
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				out.Fault(&CSVSourceError{Op: "read_record", Err: err})
				return
			}

			row := make(Row, len(record))
			for i, v := range record {
				row[i] = parseCSVScalar(v)
			}
			if err := out.Send(ctx, row); err != nil {
				return
			}
		}
	}()

	return out
}

func parseCSVScalar(v string) interface{} {
	v = strings.TrimSpace(v)
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
