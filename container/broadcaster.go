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
	"fmt"
	"sync"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/core"
)

// CopyFunc produces a per-target copy of an item, for callers whose T
// has reference semantics and needs cloning before a second target
// sees it. A nil CopyFunc means every target shares the same value.
type CopyFunc[T any] func(item T) T

// Broadcaster delivers an exact copy of its input to its own primary
// output and to every additional target attached with GoTo, with
// cooperative backpressure: a slow target never causes a dropped
// item, unlike block.BroadcastBlock's broadcast-by-latest semantics.
type Broadcaster[T any] struct {
	*InputOutputContainer[T, T]
	copyFunc CopyFunc[T]

	mu            sync.Mutex
	primaryLinked bool
	buffers       []*block.BufferBlock[T]
}

// NewBroadcaster constructs a Broadcaster. copyFunc may be nil, in
// which case every target observes the same value.
func NewBroadcaster[T any](ctx context.Context, copyFunc CopyFunc[T], opts ...Option) (*Broadcaster[T], error) {
	b := &Broadcaster[T]{copyFunc: copyFunc}

	x := block.NewTransformBlock[T, T](ctx, b.body)
	io, err := NewInputOutputContainer[T, T](ctx, x, x, opts...)
	if err != nil {
		return nil, err
	}
	b.InputOutputContainer = io
	return b, nil
}

func (b *Broadcaster[T]) body(ctx context.Context, item T) (T, error) {
	b.mu.Lock()
	buffers := make([]*block.BufferBlock[T], len(b.buffers))
	copy(buffers, b.buffers)
	b.mu.Unlock()

	for _, buf := range buffers {
		copied := item
		if b.copyFunc != nil {
			copied = b.copyFunc(item)
		}
		if err := buf.Send(ctx, copied); err != nil {
			var zero T
			return zero, err
		}
	}
	return item, nil
}

// GoTo attaches target as a downstream recipient of every item the
// broadcaster receives. Predicate-guarded attachment is explicitly
// unsupported: the first attachment becomes the primary output edge
// (via the container's ordinary always-true routing); every
// subsequent attachment gets its own dedicated buffer child, named
// "Buffer"+k, whose completion the container's aggregation will not
// observe as resolved until it has drained everything the transform
// sent it.
func (b *Broadcaster[T]) GoTo(ctx context.Context, target *InputContainer[T], predicate func(T) bool) error {
	if predicate != nil {
		return &core.IllegalArgumentError{
			Container: b.Name(), Argument: "predicate", Reason: "broadcaster targets do not support predicate linking",
		}
	}

	b.mu.Lock()
	first := !b.primaryLinked
	if first {
		b.primaryLinked = true
	}
	k := len(b.buffers)
	b.mu.Unlock()

	if first {
		b.LinkTo(target)
		return nil
	}

	x := b.OutputBlock()
	buf := block.NewBufferBlock[T](ctx, block.WithName(fmt.Sprintf("Buffer%d", k+1)))
	if err := b.RegisterBlock(buf, nil); err != nil {
		return err
	}

	b.mu.Lock()
	b.buffers = append(b.buffers, buf)
	b.mu.Unlock()

	go func() {
		<-x.Completion().Done()
		if x.Completion().Result() == nil {
			buf.Complete()
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-buf.Output():
				if !ok {
					return
				}
				if err := target.InputBlock().Send(ctx, item); err != nil {
					b.Fault(err)
					return
				}
			}
		}
	}()

	bridgeContainers(buf.Completion(), b.Base, target)
	return nil
}
