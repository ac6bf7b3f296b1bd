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
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopReadCloser and nopWriteCloser let the in-memory csv_test exercise
// the adapters' io.ReadCloser/io.WriteCloser contracts without hitting
// the filesystem.
type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

type buildingWriteCloser struct {
	buf    *bytes.Buffer
	closed chan struct{}
}

func (w *buildingWriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *buildingWriteCloser) Close() error {
	close(w.closed)
	return nil
}

func TestCSVSourceParsesRowsWithInference(t *testing.T) {
	ctx := context.Background()
	csvData := "name,age,active\nalice,30,true\nbob,25,false\n"
	src := NewCSVSource(ctx, nopReadCloser{bytes.NewBufferString(csvData)})

	var rows []Row
	for row := range src.Output() {
		rows = append(rows, row)
	}

	select {
	case <-src.Completion().Done():
	case <-time.After(time.Second):
		t.Fatal("source never completed")
	}
	require.NoError(t, src.Completion().Result())

	require.Len(t, rows, 2)
	assert.Equal(t, Row{"alice", 30, true}, rows[0])
	assert.Equal(t, Row{"bob", 25, false}, rows[1])
}

func TestCSVSinkWritesHeaderAndRows(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	wc := &buildingWriteCloser{buf: buf, closed: make(chan struct{})}

	sink, err := NewCSVSink(ctx, wc, WithCSVSinkHeaders([]string{"name", "age"}))
	require.NoError(t, err)

	require.NoError(t, sink.InputBlock().Send(ctx, Row{"alice", 30}))
	require.NoError(t, sink.InputBlock().Send(ctx, Row{"bob", 25}))
	sink.InputBlock().Complete()

	select {
	case <-wc.closed:
	case <-time.After(time.Second):
		t.Fatal("sink never closed its writer")
	}

	assert.Equal(t, "name,age\nalice,30\nbob,25\n", buf.String())
}
