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

package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangy/flowgraph/block"
)

func TestBroadcasterDeliversToEveryTarget(t *testing.T) {
	ctx := context.Background()
	b, err := NewBroadcaster[int](ctx, nil)
	require.NoError(t, err)

	var gotA, gotB []int
	abA := block.NewActionBlock[int](ctx, func(_ context.Context, n int) error {
		gotA = append(gotA, n)
		return nil
	})
	targetA, err := NewInputContainer[int](abA)
	require.NoError(t, err)

	abB := block.NewActionBlock[int](ctx, func(_ context.Context, n int) error {
		gotB = append(gotB, n)
		return nil
	})
	targetB, err := NewInputContainer[int](abB)
	require.NoError(t, err)

	require.NoError(t, b.GoTo(ctx, targetA, nil))
	require.NoError(t, b.GoTo(ctx, targetB, nil))

	require.NoError(t, b.PullFrom(ctx, []int{1, 2, 3}))
	b.InputBlock().Complete()

	assert.NoError(t, waitFuture(t, b.CompletionTask()))
	assert.NoError(t, waitFuture(t, targetA.CompletionTask()))
	assert.NoError(t, waitFuture(t, targetB.CompletionTask()))

	assert.Equal(t, []int{1, 2, 3}, gotA)
	assert.Equal(t, []int{1, 2, 3}, gotB)
}

func TestBroadcasterRejectsPredicatedTarget(t *testing.T) {
	ctx := context.Background()
	b, err := NewBroadcaster[int](ctx, nil)
	require.NoError(t, err)

	ab := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })
	target, err := NewInputContainer[int](ab)
	require.NoError(t, err)

	err = b.GoTo(ctx, target, func(int) bool { return true })
	require.Error(t, err)
}

func TestBroadcasterAppliesCopyFunc(t *testing.T) {
	ctx := context.Background()
	type box struct{ n int }
	b, err := NewBroadcaster[*box](ctx, func(item *box) *box {
		copied := *item
		return &copied
	})
	require.NoError(t, err)

	var seenA, seenB *box
	abA := block.NewActionBlock[*box](ctx, func(_ context.Context, v *box) error {
		seenA = v
		return nil
	})
	targetA, err := NewInputContainer[*box](abA)
	require.NoError(t, err)

	abB := block.NewActionBlock[*box](ctx, func(_ context.Context, v *box) error {
		seenB = v
		return nil
	})
	targetB, err := NewInputContainer[*box](abB)
	require.NoError(t, err)

	require.NoError(t, b.GoTo(ctx, targetA, nil))
	require.NoError(t, b.GoTo(ctx, targetB, nil))

	require.NoError(t, b.PullFrom(ctx, []*box{{n: 7}}))
	b.InputBlock().Complete()

	assert.NoError(t, waitFuture(t, b.CompletionTask()))

	select {
	case <-targetB.CompletionTask().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("target B never completed")
	}

	require.NotNil(t, seenA)
	require.NotNil(t, seenB)
	assert.NotSame(t, seenA, seenB)
	assert.Equal(t, seenA.n, seenB.n)
}
