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
	"sync"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/container"
)

// CSVSinkError wraps a CSV sink write failure with the operation that
// produced it.
type CSVSinkError struct {
	Op  string
	Err error
}

func (e *CSVSinkError) Error() string { return fmt.Sprintf("csv sink %s: %v", e.Op, e.Err) }
func (e *CSVSinkError) Unwrap() error { return e.Err }

// CSVSinkOptions configures NewCSVSink.
type CSVSinkOptions struct {
	Headers []string
	Comma   rune
}

// CSVSinkOption mutates CSVSinkOptions during construction.
type CSVSinkOption func(*CSVSinkOptions)

func WithCSVSinkHeaders(headers []string) CSVSinkOption {
	return func(o *CSVSinkOptions) { o.Headers = append([]string(nil), headers...) }
}

func WithCSVSinkComma(r rune) CSVSinkOption {
	return func(o *CSVSinkOptions) { o.Comma = r }
}

func resolveCSVSinkOptions(opts []CSVSinkOption) CSVSinkOptions {
	o := CSVSinkOptions{Comma: ','}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// NewCSVSink returns an InputContainer leaf that writes each received
// Row as one CSV record to w, writing the header row first if Headers
// was configured. w is flushed and closed once the block completes.
func NewCSVSink(ctx context.Context, w io.WriteCloser, opts ...CSVSinkOption) (*container.InputContainer[Row], error) {
	o := resolveCSVSinkOptions(opts)

	cw := csv.NewWriter(w)
	cw.Comma = o.Comma

	var mu sync.Mutex
	wroteHeader := len(o.Headers) == 0

	sink := block.NewActionBlock[Row](ctx, func(_ context.Context, row Row) error {
		mu.Lock()
		defer mu.Unlock()
		if !wroteHeader {
			if err := cw.Write(o.Headers); err != nil {
				return &CSVSinkError{Op: "write_header", Err: err}
			}
			wroteHeader = true
		}
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}
		if err := cw.Write(record); err != nil {
			return &CSVSinkError{Op: "write_row", Err: err}
		}
		return nil
	})

	ic, err := container.NewInputContainer[Row](sink, container.WithContainerName("CSVSink"))
	if err != nil {
		return nil, err
	}

	go func() {
		<-sink.Completion().Done()
		cw.Flush()
		w.Close()
	}()

	return ic, nil
}
