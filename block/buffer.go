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
	"log/slog"
)

// BufferBlock holds items in a bounded FIFO queue without transforming
// them. It is the simplest block: a pass-through with backpressure.
type BufferBlock[T any] struct {
	*baseBlock
	in  chan T
	out chan T
}

// NewBufferBlock constructs a BufferBlock ready to accept Send calls.
func NewBufferBlock[T any](ctx context.Context, opts ...Option) *BufferBlock[T] {
	o := resolveOptions("Buffer", opts)
	ctx, cancel := context.WithCancel(ctx)
	b := &BufferBlock[T]{
		baseBlock: newBaseBlock(o, cancel),
		in:        make(chan T, o.BoundedCapacity),
		out:       make(chan T, o.BoundedCapacity),
	}
	go b.run(ctx)
	return b
}

func (b *BufferBlock[T]) run(ctx context.Context) {
	defer close(b.out)
	defer b.markDone()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-b.in:
			if !ok {
				return
			}
			b.buffered.Add(1)
			select {
			case b.out <- item:
				b.buffered.Add(-1)
			case <-ctx.Done():
				b.buffered.Add(-1)
				return
			}
		}
	}
}

// Send enqueues item, blocking until there is room or ctx is done.
func (b *BufferBlock[T]) Send(ctx context.Context, item T) error {
	select {
	case b.in <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Output returns the channel downstream readers (or a Link) drain.
func (b *BufferBlock[T]) Output() <-chan T { return b.out }

// Complete signals that no more items will be sent.
func (b *BufferBlock[T]) Complete() {
	b.mu.Lock()
	if b.completed {
		b.mu.Unlock()
		return
	}
	b.completed = true
	b.mu.Unlock()
	close(b.in)
	b.logger.Debug("block completed", slog.String("block", b.name))
}
