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
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/core"
)

// Base is the abstract container lifecycle: default naming, child
// registration, aggregated completion, Fault, buffered-count
// aggregation, and an optional periodic monitor. InputContainer and
// InputOutputContainer embed Base and add their typed edges on top of
// it.
type Base struct {
	name   string
	id     uuid.UUID
	logger *slog.Logger
	opts   Options

	mu         sync.Mutex
	children   []Child
	registered map[block.Block]struct{}
	generation int

	completionOnce sync.Once
	completion     *core.Future
	cleanupOnce    sync.Once
	cleanUp        func()

	stopMonitor func()
}

// NewBase constructs a Base. typeName seeds the default friendly name
// when Options.Name is empty.
func NewBase(typeName string, opts ...Option) *Base {
	o := resolveOptions(opts)
	name := o.Name
	if name == "" {
		name = core.NextName(typeName)
	}
	b := &Base{
		name:       name,
		id:         uuid.New(),
		logger:     o.Logger,
		opts:       o,
		registered: make(map[block.Block]struct{}),
		completion: core.NewFuture(),
	}
	if o.ContainerMonitorEnabled || o.BlockMonitorEnabled {
		b.stopMonitor = startMonitor(b)
	}
	return b
}

// Name returns the container's friendly display name.
func (b *Base) Name() string { return b.name }

// ID returns the container's process-unique identifier.
func (b *Base) ID() uuid.UUID { return b.id }

// SetCleanUp installs the hook invoked exactly once when the
// aggregated completion resolves. Default is a no-op.
func (b *Base) SetCleanUp(fn func()) { b.cleanUp = fn }

// RegisterBlock validates and registers blk as a block child,
// optionally running onSuccess once blk completes successfully.
func (b *Base) RegisterBlock(blk block.Block, onSuccess func() error) error {
	if blk == nil {
		return &core.IllegalArgumentError{Container: b.name, Argument: "block", Reason: "nil"}
	}
	b.mu.Lock()
	if _, dup := b.registered[blk]; dup {
		b.mu.Unlock()
		return &core.IllegalArgumentError{Container: b.name, Argument: blk.Name(), Reason: "duplicate"}
	}
	b.registered[blk] = struct{}{}
	wrapped := wrapCompletion(blk.Completion(), blk.Name(), b, onSuccess)
	b.children = append(b.children, &blockChild{blk: blk, wrapped: wrapped})
	b.generation++
	b.mu.Unlock()
	return nil
}

// RegisterContainer registers child as a nested-container child,
// optionally running onSuccess once it completes successfully.
// Duplicate detection across nested containers is not required by the
// lifecycle contract and is not performed here.
func (b *Base) RegisterContainer(child Lifecycle, onSuccess func() error) error {
	if child == nil {
		return &core.IllegalArgumentError{Container: b.name, Argument: "container", Reason: "nil"}
	}
	wrapped := wrapCompletion(child.CompletionTask(), child.Name(), b, onSuccess)
	b.mu.Lock()
	b.children = append(b.children, &containerChild{child: child, wrapped: wrapped})
	b.generation++
	b.mu.Unlock()
	return nil
}

// Blocks returns a flat enumeration of every underlying block, in
// registration order, flattened through nested containers.
func (b *Base) Blocks() []block.Block {
	b.mu.Lock()
	snapshot := make([]Child, len(b.children))
	copy(snapshot, b.children)
	b.mu.Unlock()

	var out []block.Block
	for _, c := range snapshot {
		out = append(out, c.Blocks()...)
	}
	return out
}

// BufferedCount sums every child's BufferedCount.
func (b *Base) BufferedCount() int {
	b.mu.Lock()
	snapshot := make([]Child, len(b.children))
	copy(snapshot, b.children)
	b.mu.Unlock()

	total := 0
	for _, c := range snapshot {
		total += c.BufferedCount()
	}
	return total
}

// CompletionTask returns the aggregated completion future, computing
// it exactly once on first observation.
func (b *Base) CompletionTask() *core.Future {
	b.completionOnce.Do(func() {
		go b.runAggregation()
	})
	return b.completion
}

func (b *Base) runAggregation() {
	for {
		b.mu.Lock()
		if len(b.children) == 0 {
			b.mu.Unlock()
			b.completion.Resolve(&core.NoChildRegisteredError{Container: b.name})
			return
		}
		genBefore := b.generation
		snapshot := make([]Child, len(b.children))
		copy(snapshot, b.children)
		b.mu.Unlock()

		var errs []error
		for _, c := range snapshot {
			<-c.WrappedCompletion().Done()
			if err := c.WrappedCompletion().Result(); err != nil {
				errs = append(errs, err)
			}
		}

		b.mu.Lock()
		grown := b.generation != genBefore
		b.mu.Unlock()
		if grown {
			continue
		}

		b.cleanupOnce.Do(func() {
			if b.cleanUp != nil {
				b.cleanUp()
			}
		})
		if b.stopMonitor != nil {
			b.stopMonitor()
		}
		b.completion.Resolve(core.UnwrapWithPriority(errs))
		return
	}
}

// Fault transitions every not-yet-terminal underlying block to a
// faulted state, per the classification table: a PropagatedError
// passes through unchanged, a CanceledError becomes
// SiblingUnitCanceled, anything else becomes SiblingUnitFailed.
func (b *Base) Fault(err error) {
	if err == nil {
		return
	}
	b.logger.Error("container fault", slog.String("container", b.name), slog.Any("error", err))

	cause := faultCauseFor(err, b.name)
	for _, blk := range b.Blocks() {
		if blk.Completion().IsResolved() {
			continue
		}
		blk.Fault(cause)
	}
}

func faultCauseFor(err error, origin string) error {
	if core.IsPropagated(err) {
		return err
	}
	if _, canceled := err.(*core.CanceledError); canceled {
		return core.NewPropagatedError(core.SiblingUnitCanceled, origin)
	}
	return core.NewPropagatedError(core.SiblingUnitFailed, origin)
}
