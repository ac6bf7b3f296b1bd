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
	"sync"
)

// BroadcastBlock republishes the latest item it received to every
// subscriber, overwriting whatever that subscriber had not yet read.
// A slow subscriber loses intermediate values rather than applying
// backpressure — this is the opposite tradeoff from
// container.Broadcaster, which guarantees no subscriber ever misses an
// item at the cost of blocking on the slowest one. BroadcastBlock is
// appropriate for "latest config wins" style fan-out, never for a
// container's data-loss-free child distribution.
type BroadcastBlock[T any] struct {
	*baseBlock
	in chan T

	mu   sync.Mutex
	subs []chan T
}

// NewBroadcastBlock constructs a BroadcastBlock.
func NewBroadcastBlock[T any](ctx context.Context, opts ...Option) *BroadcastBlock[T] {
	o := resolveOptions("Broadcast", opts)
	ctx, cancel := context.WithCancel(ctx)
	b := &BroadcastBlock[T]{
		baseBlock: newBaseBlock(o, cancel),
		in:        make(chan T, o.BoundedCapacity),
	}
	go b.run(ctx)
	return b
}

func (b *BroadcastBlock[T]) run(ctx context.Context) {
	defer b.markDone()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-b.in:
			if !ok {
				return
			}
			b.publish(item)
		}
	}
}

func (b *BroadcastBlock[T]) publish(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case <-sub:
			// drop whatever the subscriber had not read yet
		default:
		}
		sub <- item
	}
}

// Subscribe returns a channel of capacity 1 that holds the most
// recently broadcast item until the subscriber reads it.
func (b *BroadcastBlock[T]) Subscribe() <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, 1)
	b.subs = append(b.subs, ch)
	return ch
}

// Send enqueues item for broadcast, blocking until there is room or ctx
// is done.
func (b *BroadcastBlock[T]) Send(ctx context.Context, item T) error {
	select {
	case b.in <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Complete signals that no more items will be broadcast.
func (b *BroadcastBlock[T]) Complete() {
	b.baseBlock.mu.Lock()
	if b.baseBlock.completed {
		b.baseBlock.mu.Unlock()
		return
	}
	b.baseBlock.completed = true
	b.baseBlock.mu.Unlock()
	close(b.in)
	b.logger.Debug("block completed", slog.String("block", b.name))
}
