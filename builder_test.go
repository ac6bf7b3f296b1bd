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

package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/container"
)

func TestGraphBuilderRunsLinearChain(t *testing.T) {
	ctx := context.Background()

	doubler := block.NewTransformBlock[int, int](ctx, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	source, err := container.NewInputOutputContainer[int, int](ctx, doubler, doubler)
	require.NoError(t, err)

	var got []int
	ab := block.NewActionBlock[int](ctx, func(_ context.Context, n int) error {
		got = append(got, n)
		return nil
	})
	sink, err := container.NewInputContainer[int](ab)
	require.NoError(t, err)

	g := NewGraph(source).Sink(func() error {
		source.LinkTo(sink)
		return nil
	}, sink)

	fut, err := g.Run(ctx)
	require.NoError(t, err)

	require.NoError(t, source.PullFrom(ctx, []int{1, 2, 3}))
	source.InputBlock().Complete()

	select {
	case <-fut.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("graph never completed")
	}
	assert.NoError(t, fut.Result())
	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestGraphBuilderRejectsNilSource(t *testing.T) {
	g := NewGraph(nil)
	_, err := g.Build()
	assert.Error(t, err)
}
