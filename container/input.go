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

	"github.com/hangy/flowgraph/block"
)

// InputBlock is the capability a container's ingress block must have:
// it is a block.Block that also accepts typed sends.
type InputBlock[TIn any] interface {
	block.Block
	Send(ctx context.Context, item TIn) error
}

// OutputBlock is the capability an external source block must have to
// be linked into a container's input: a block.Block that also
// produces a readable output stream.
type OutputBlock[T any] interface {
	block.Block
	Output() <-chan T
}

// InputContainer is a container with a single typed ingress. It is
// the base every leaf processing container (including adapters)
// builds on.
type InputContainer[TIn any] struct {
	*Base
	input InputBlock[TIn]
}

// NewInputContainer registers input as the container's block child and
// returns the constructed InputContainer.
func NewInputContainer[TIn any](input InputBlock[TIn], opts ...Option) (*InputContainer[TIn], error) {
	base := NewBase("InputContainer", opts...)
	c := &InputContainer[TIn]{Base: base, input: input}
	if err := base.RegisterBlock(input, nil); err != nil {
		return nil, err
	}
	return c, nil
}

// InputBlock exposes the ingress block for advanced composition.
func (c *InputContainer[TIn]) InputBlock() InputBlock[TIn] { return c.input }

// completeInput satisfies InputLinkable for the inter-container link
// protocol (container/link.go).
func (c *InputContainer[TIn]) completeInput() { c.input.Complete() }

// PullFrom consumes a finite sequence, posting each item to the input
// block with a best-effort retry/wait on backpressure. It returns once
// the sequence is exhausted, the input block faults, or ctx is done.
// It does not complete the input block.
func (c *InputContainer[TIn]) PullFrom(ctx context.Context, items []TIn) error {
	for _, item := range items {
		if err := c.safePost(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (c *InputContainer[TIn]) safePost(ctx context.Context, item TIn) error {
	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := c.input.Completion().Done()
	go func() {
		select {
		case <-done:
			cancel()
		case <-sendCtx.Done():
		}
	}()
	if err := c.input.Send(sendCtx, item); err != nil {
		select {
		case <-done:
			return c.input.Completion().Result()
		default:
			return err
		}
	}
	return nil
}

// LinkFrom links an external source block to this container's input
// with completion propagation enabled, so that the source's
// completion closes this container's input block.
func (c *InputContainer[TIn]) LinkFrom(ctx context.Context, source OutputBlock[TIn]) <-chan error {
	return block.Link(ctx, source.Output(), c.input, block.LinkOptions[TIn]{
		PropagateCompletion: true,
	})
}
