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

type route[TOut any] struct {
	predicate func(TOut) bool
	deliver   func(ctx context.Context, item TOut) error
}

// InputOutputContainer is a container with a single typed ingress and
// a single typed egress, plus the conditional output-routing protocol:
// an ordered list of predicate-guarded edges, evaluated first-match-
// wins, with an optional trailing null sink for anything unmatched.
type InputOutputContainer[TIn, TOut any] struct {
	*InputContainer[TIn]
	output OutputBlock[TOut]

	mu              sync.Mutex
	routes          []route[TOut]
	pendingComplete []func()
	garbage         *GarbageRecorder
}

// NewInputOutputContainer registers input and output as block children
// of a freshly constructed container and starts the routing dispatcher
// that drains output and applies the registered routes in order.
func NewInputOutputContainer[TIn, TOut any](
	ctx context.Context, input InputBlock[TIn], output OutputBlock[TOut], opts ...Option,
) (*InputOutputContainer[TIn, TOut], error) {
	base := NewBase("InputOutputContainer", opts...)
	if err := base.RegisterBlock(input, nil); err != nil {
		return nil, err
	}
	// A single block may serve as both ingress and egress (the
	// broadcaster's internal transform does exactly this); only
	// register it once.
	if any(output) != any(input) {
		if err := base.RegisterBlock(output, nil); err != nil {
			return nil, err
		}
	}
	c := &InputOutputContainer[TIn, TOut]{
		InputContainer: &InputContainer[TIn]{Base: base, input: input},
		output:         output,
		garbage:        NewGarbageRecorder(),
	}
	c.startDispatch(ctx)
	return c, nil
}

// OutputBlock exposes the egress block for advanced composition.
func (c *InputOutputContainer[TIn, TOut]) OutputBlock() OutputBlock[TOut] { return c.output }

// GarbageRecorder returns the recorder backing LinkLeftToNull.
func (c *InputOutputContainer[TIn, TOut]) GarbageRecorder() *GarbageRecorder { return c.garbage }

func (c *InputOutputContainer[TIn, TOut]) addRoute(r route[TOut]) {
	c.mu.Lock()
	c.routes = append(c.routes, r)
	c.mu.Unlock()
}

// onCleanFinish registers fn to run once the output block has closed
// and every item it ever produced has been routed. Because dispatch
// runs synchronously inside startDispatch's own goroutine, by the time
// that goroutine observes output closed, the last deliver call it
// issued has already returned — so fn is guaranteed to see no more
// in-flight deliveries to the block it completes.
func (c *InputOutputContainer[TIn, TOut]) onCleanFinish(fn func()) {
	c.mu.Lock()
	c.pendingComplete = append(c.pendingComplete, fn)
	c.mu.Unlock()
}

func (c *InputOutputContainer[TIn, TOut]) startDispatch(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-c.output.Output():
				if !ok {
					c.finishRoutedChildren()
					return
				}
				c.dispatch(ctx, item)
			}
		}
	}()
}

// finishRoutedChildren runs every callback registered with
// onCleanFinish, but only once the output block's own completion has
// resolved without error — a faulted or canceled output leaves its
// routed children to the ordinary fault-propagation path instead.
func (c *InputOutputContainer[TIn, TOut]) finishRoutedChildren() {
	<-c.output.Completion().Done()
	if c.output.Completion().Result() != nil {
		return
	}
	c.mu.Lock()
	fns := make([]func(), len(c.pendingComplete))
	copy(fns, c.pendingComplete)
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// dispatch evaluates the registered routes in order and delivers item
// to the first match. An item matching nothing stays "in hand" — the
// dispatcher blocks until ctx is done, which in turn backpressures the
// output block exactly as the specification requires when no null sink
// has been installed.
func (c *InputOutputContainer[TIn, TOut]) dispatch(ctx context.Context, item TOut) {
	c.mu.Lock()
	routes := make([]route[TOut], len(c.routes))
	copy(routes, c.routes)
	c.mu.Unlock()

	for _, r := range routes {
		if r.predicate(item) {
			if err := r.deliver(ctx, item); err != nil {
				c.Fault(err)
			}
			return
		}
	}
	<-ctx.Done()
}

// LinkTo installs an unconditional edge from this container's output
// to other's input, bridged by the inter-container link protocol.
func (c *InputOutputContainer[TIn, TOut]) LinkTo(other *InputContainer[TOut]) {
	c.addRoute(route[TOut]{
		predicate: func(TOut) bool { return true },
		deliver:   func(ctx context.Context, item TOut) error { return other.input.Send(ctx, item) },
	})
	bridgeContainers(c.output.Completion(), c.Base, other)
}

// TransformAndLink appends predicate to the routing list, installs an
// intermediate transform block inside this container that applies
// transform, and links that transform block's output to other via the
// inter-container protocol. A nil predicate matches every item.
func TransformAndLink[TIn, TOut, TTarget any](
	ctx context.Context,
	c *InputOutputContainer[TIn, TOut],
	other *InputContainer[TTarget],
	transform block.TransformFunc[TOut, TTarget],
	predicate func(TOut) bool,
) error {
	if predicate == nil {
		predicate = func(TOut) bool { return true }
	}
	tb := block.NewTransformBlock(ctx, transform)
	if err := c.RegisterBlock(tb, nil); err != nil {
		return err
	}
	c.addRoute(route[TOut]{
		predicate: predicate,
		deliver:   func(ctx context.Context, item TOut) error { return tb.Send(ctx, item) },
	})
	c.onCleanFinish(tb.Complete)
	// pumped resolves once every transformed item has been handed to
	// other, so the bridge never completes other's input mid-delivery.
	pumped := core.NewFuture()
	go func() {
		for item := range tb.Output() {
			if err := other.input.Send(ctx, item); err != nil {
				c.Fault(err)
				break
			}
		}
		<-tb.Completion().Done()
		pumped.Resolve(tb.Completion().Result())
	}()
	bridgeContainers(pumped, c.Base, other)
	return nil
}

// DowncastLink links other whenever the output item's dynamic type is
// TTarget, applying the identity downcast. It is TransformAndLink
// specialized with a type-assertion predicate and transform.
func DowncastLink[TIn, TOut, TTarget any](
	ctx context.Context,
	c *InputOutputContainer[TIn, TOut],
	other *InputContainer[TTarget],
) error {
	predicate := func(item TOut) bool {
		_, ok := any(item).(TTarget)
		return ok
	}
	transform := func(_ context.Context, item TOut) (TTarget, error) {
		v, _ := any(item).(TTarget)
		return v, nil
	}
	return TransformAndLink[TIn, TOut, TTarget](ctx, c, other, transform, predicate)
}

// LinkLeftToNull installs a final catch-all edge from this container's
// output to a null sink. Because routes are evaluated in registration
// order and this one matches unconditionally, it only actually
// receives items no earlier route claimed — callers must therefore
// call LinkLeftToNull last. Every item it receives is recorded in the
// GarbageRecorder under its runtime type name.
func (c *InputOutputContainer[TIn, TOut]) LinkLeftToNull(ctx context.Context) error {
	nb := block.NewNullBlock[TOut](ctx)
	if err := c.RegisterBlock(nb, nil); err != nil {
		return err
	}
	c.addRoute(route[TOut]{
		predicate: func(TOut) bool { return true },
		deliver: func(ctx context.Context, item TOut) error {
			c.garbage.Record(fmt.Sprintf("%T", item))
			return nb.Send(ctx, item)
		},
	})
	c.onCleanFinish(nb.Complete)
	return nil
}
