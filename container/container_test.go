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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/core"
)

func waitFuture(t *testing.T, f *core.Future) error {
	t.Helper()
	select {
	case <-f.Done():
		return f.Result()
	case <-time.After(2 * time.Second):
		t.Fatal("completion future never resolved")
		return nil
	}
}

func TestInputContainerCleanCompletion(t *testing.T) {
	ctx := context.Background()
	ab := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })
	ic, err := NewInputContainer[int](ab)
	require.NoError(t, err)

	require.NoError(t, ic.PullFrom(ctx, []int{1, 2, 3}))
	ic.InputBlock().Complete()

	assert.NoError(t, waitFuture(t, ic.CompletionTask()))
}

func TestInputContainerNoChildRegistered(t *testing.T) {
	base := NewBase("Empty")
	err := waitFuture(t, base.CompletionTask())
	var nc *core.NoChildRegisteredError
	require.ErrorAs(t, err, &nc)
}

func TestRegisterBlockRejectsNilAndDuplicate(t *testing.T) {
	ctx := context.Background()
	base := NewBase("Test")
	ab := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })

	err := base.RegisterBlock(nil, nil)
	var ia *core.IllegalArgumentError
	require.ErrorAs(t, err, &ia)
	assert.Equal(t, "nil", ia.Reason)

	require.NoError(t, base.RegisterBlock(ab, nil))
	err = base.RegisterBlock(ab, nil)
	require.ErrorAs(t, err, &ia)
	assert.Equal(t, "duplicate", ia.Reason)
}

func TestCompletionTaskIsMemoized(t *testing.T) {
	ctx := context.Background()
	ab := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })
	ic, err := NewInputContainer[int](ab)
	require.NoError(t, err)

	f1 := ic.CompletionTask()
	f2 := ic.CompletionTask()
	assert.Same(t, f1, f2)

	ic.InputBlock().Complete()
	waitFuture(t, f1)
}

func TestRegisteringAfterCompletionObservedRetriesAggregation(t *testing.T) {
	ctx := context.Background()
	ab1 := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })
	ic, err := NewInputContainer[int](ab1)
	require.NoError(t, err)

	// Observe CompletionTask before the second child registers, to
	// exercise the generation-growth retry in runAggregation.
	fut := ic.CompletionTask()

	ab2 := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })
	require.NoError(t, ic.RegisterBlock(ab2, nil))

	ab1.Complete()
	time.Sleep(20 * time.Millisecond)
	ab2.Complete()

	assert.NoError(t, waitFuture(t, fut))
}

func TestContainerFaultPropagatesToSiblingBlocks(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	failing := block.NewActionBlock[int](ctx, func(context.Context, int) error { return boom })
	sibling := block.NewActionBlock[int](ctx, func(context.Context, int) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ic, err := NewInputContainer[int](failing)
	require.NoError(t, err)
	require.NoError(t, ic.RegisterBlock(sibling, nil))

	require.NoError(t, failing.Send(ctx, 1))

	err = waitFuture(t, ic.CompletionTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestOutputRoutingFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	doubler := block.NewTransformBlock[int, int](ctx, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	io, err := NewInputOutputContainer[int, int](ctx, doubler, doubler)
	require.NoError(t, err)

	var gotEven, gotOverlap []int
	evenAB := block.NewActionBlock[int](ctx, func(_ context.Context, n int) error {
		gotEven = append(gotEven, n)
		return nil
	})
	evenSink, err := NewInputContainer[int](evenAB)
	require.NoError(t, err)

	overlapAB := block.NewActionBlock[int](ctx, func(_ context.Context, n int) error {
		gotOverlap = append(gotOverlap, n)
		return nil
	})
	overlapSink, err := NewInputContainer[int](overlapAB)
	require.NoError(t, err)

	require.NoError(t, TransformAndLink[int, int, int](ctx, io, evenSink,
		func(_ context.Context, n int) (int, error) { return n, nil },
		func(n int) bool { return n%2 == 0 },
	))
	// 4 and 6 also match this later route; the earlier even route wins.
	require.NoError(t, TransformAndLink[int, int, int](ctx, io, overlapSink,
		func(_ context.Context, n int) (int, error) { return n, nil },
		func(n int) bool { return n > 2 },
	))

	require.NoError(t, io.PullFrom(ctx, []int{1, 2, 3}))
	io.InputBlock().Complete()

	assert.NoError(t, waitFuture(t, io.CompletionTask()))
	assert.NoError(t, waitFuture(t, evenSink.CompletionTask()))
	assert.NoError(t, waitFuture(t, overlapSink.CompletionTask()))
	assert.Equal(t, []int{2, 4, 6}, gotEven)
	assert.Empty(t, gotOverlap)
}

func TestLinkLeftToNullRecordsGarbage(t *testing.T) {
	ctx := context.Background()
	identity := block.NewTransformBlock[int, int](ctx, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	io, err := NewInputOutputContainer[int, int](ctx, identity, identity)
	require.NoError(t, err)

	require.NoError(t, io.LinkLeftToNull(ctx))

	require.NoError(t, io.PullFrom(ctx, []int{1, 2, 3}))
	io.InputBlock().Complete()

	assert.NoError(t, waitFuture(t, io.CompletionTask()))
	assert.Equal(t, 3, io.GarbageRecorder().Count("int"))
}

func TestInputOutputContainerLinkToPropagatesFault(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	upstream := block.NewTransformBlock[int, int](ctx, func(_ context.Context, n int) (int, error) {
		return 0, boom
	})
	source, err := NewInputOutputContainer[int, int](ctx, upstream, upstream)
	require.NoError(t, err)

	downAB := block.NewActionBlock[int](ctx, func(context.Context, int) error {
		<-ctx.Done()
		return ctx.Err()
	})
	downstream, err := NewInputContainer[int](downAB)
	require.NoError(t, err)

	source.LinkTo(downstream)

	require.NoError(t, source.InputBlock().Send(ctx, 1))

	srcErr := waitFuture(t, source.CompletionTask())
	require.Error(t, srcErr)

	dstErr := waitFuture(t, downstream.CompletionTask())
	require.Error(t, dstErr)
	assert.True(t, core.IsPropagated(dstErr))
}
