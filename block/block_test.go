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

package block

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBlockPassesItemsThrough(t *testing.T) {
	ctx := context.Background()
	buf := NewBufferBlock[int](ctx, WithName("buf"))

	go func() {
		for i := 0; i < 3; i++ {
			require.NoError(t, buf.Send(ctx, i))
		}
		buf.Complete()
	}()

	var got []int
	for v := range buf.Output() {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)

	select {
	case <-buf.Completion().Done():
	case <-time.After(time.Second):
		t.Fatal("completion never resolved")
	}
	assert.NoError(t, buf.Completion().Result())
}

func TestTransformBlockAppliesFunction(t *testing.T) {
	ctx := context.Background()
	tb := NewTransformBlock[int, int](ctx, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	go func() {
		require.NoError(t, tb.Send(ctx, 21))
		tb.Complete()
	}()

	assert.Equal(t, 42, <-tb.Output())
}

func TestTransformBlockFaultsOnError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	tb := NewTransformBlock[int, int](ctx, func(_ context.Context, n int) (int, error) {
		return 0, boom
	})

	require.NoError(t, tb.Send(ctx, 1))

	select {
	case <-tb.Completion().Done():
	case <-time.After(time.Second):
		t.Fatal("completion never resolved")
	}
	assert.ErrorIs(t, tb.Completion().Result(), boom)
}

func TestActionBlockRunsSideEffect(t *testing.T) {
	ctx := context.Background()
	seen := make(chan int, 1)
	ab := NewActionBlock[int](ctx, func(_ context.Context, n int) error {
		seen <- n
		return nil
	})

	require.NoError(t, ab.Send(ctx, 7))
	assert.Equal(t, 7, <-seen)

	ab.Complete()
	select {
	case <-ab.Completion().Done():
	case <-time.After(time.Second):
		t.Fatal("completion never resolved")
	}
	assert.NoError(t, ab.Completion().Result())
}

func TestNullBlockDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	nb := NewNullBlock[int](ctx)
	require.NoError(t, nb.Send(ctx, 1))
	require.NoError(t, nb.Send(ctx, 2))
	nb.Complete()

	select {
	case <-nb.Completion().Done():
	case <-time.After(time.Second):
		t.Fatal("completion never resolved")
	}
	assert.NoError(t, nb.Completion().Result())
}

func TestBroadcastBlockOverwritesUnreadValue(t *testing.T) {
	ctx := context.Background()
	bb := NewBroadcastBlock[int](ctx)
	sub := bb.Subscribe()

	require.NoError(t, bb.Send(ctx, 1))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, bb.Send(ctx, 2))

	assert.Eventually(t, func() bool {
		select {
		case v := <-sub:
			return v == 2
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestLinkForwardsWithPredicate(t *testing.T) {
	ctx := context.Background()
	src := make(chan int, 10)
	for i := 0; i < 5; i++ {
		src <- i
	}
	close(src)

	target := NewBufferBlock[int](ctx, WithBoundedCapacity(10))
	var rejected []int
	errCh := Link[int](ctx, src, target, LinkOptions[int]{
		PropagateCompletion: true,
		Predicate:           func(n int) bool { return n%2 == 0 },
		Reject:              func(n int) { rejected = append(rejected, n) },
	})

	require.NoError(t, <-errCh)

	var got []int
	deadline := time.After(time.Second)
drain:
	for {
		select {
		case v, ok := <-target.Output():
			if !ok {
				break drain
			}
			got = append(got, v)
		case <-deadline:
			t.Fatal("timed out draining target")
		}
	}

	assert.Equal(t, []int{0, 2, 4}, got)
	assert.Equal(t, []int{1, 3}, rejected)
}
