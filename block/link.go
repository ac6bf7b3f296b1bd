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

import "context"

// Predicate decides whether an item pumped through a Link should be
// forwarded. A nil predicate forwards everything.
type Predicate[T any] func(item T) bool

// LinkOptions configures a Link.
type LinkOptions[T any] struct {
	// PropagateCompletion, when true, calls Complete on the target
	// once the source's output channel closes. Inter-container links
	// (container/link.go) do not use Link; they drive completion
	// through the container fault/completion protocol instead.
	PropagateCompletion bool
	// Predicate, when non-nil, filters which items are forwarded.
	// Items the predicate rejects are the caller's responsibility to
	// route elsewhere (see container's conditional routing, §4.7).
	Predicate Predicate[T]
	// Reject, when non-nil, receives every item Predicate rejected.
	Reject func(item T)
}

// Sendable is satisfied by every block that accepts Send calls.
type Sendable[T any] interface {
	Send(ctx context.Context, item T) error
}

// Completable is satisfied by every block that can be told its input
// has ended.
type Completable interface {
	Complete()
}

// Link pumps items from src onto target, honoring opts. It runs until
// src closes, ctx is canceled, or target.Send returns an error (which
// Link does not itself fault on — that decision belongs to the caller,
// since only the caller knows whether the error should propagate as a
// fault or be swallowed). If opts.PropagateCompletion is true and
// target also implements Completable, target.Complete is called once
// src closes cleanly.
func Link[T any](ctx context.Context, src <-chan T, target Sendable[T], opts LinkOptions[T]) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case item, ok := <-src:
				if !ok {
					if opts.PropagateCompletion {
						if c, ok := target.(Completable); ok {
							c.Complete()
						}
					}
					return
				}
				if opts.Predicate != nil && !opts.Predicate(item) {
					if opts.Reject != nil {
						opts.Reject(item)
					}
					continue
				}
				if err := target.Send(ctx, item); err != nil {
					errCh <- err
					return
				}
			}
		}
	}()
	return errCh
}
