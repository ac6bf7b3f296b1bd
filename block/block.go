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

// Package block implements the channel-backed asynchronous processing
// primitives that containers compose: bounded buffers, transforms,
// actions, a broadcast-by-latest block, and a discarding sink. Every
// block has a bounded input and a completion future that resolves once
// every worker has drained its input and exited; transforms and actions
// also have a configurable degree of parallelism.
package block

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hangy/flowgraph/core"
)

// Block is the minimal contract every processing primitive satisfies.
type Block interface {
	// Name returns the block's friendly display name.
	Name() string
	// Complete signals that no more input will arrive. Workers drain
	// whatever is already buffered and then exit.
	Complete()
	// Fault aborts the block immediately: buffered input is discarded
	// and the completion future resolves with err.
	Fault(err error)
	// Completion returns the future that resolves when every worker
	// has exited, successfully or otherwise.
	Completion() *core.Future
	// BufferedCount reports the number of items a worker has taken off
	// the input and not yet finished with. Items still waiting in the
	// block's input or output channels are not counted.
	BufferedCount() int
}

// Options configures a block's construction. Built with functional
// options, mirroring the container package's Options.
type Options struct {
	Name                 string
	BoundedCapacity      int
	DegreeOfParallelism  int
	Logger               *slog.Logger
}

// Option mutates Options during construction.
type Option func(*Options)

// WithName overrides the block's generated friendly name.
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithBoundedCapacity sets the input channel's capacity. A value <= 0
// falls back to the default capacity (defaultBoundedCapacity); channels
// are never unbounded, since Go channels require a fixed size.
func WithBoundedCapacity(n int) Option {
	return func(o *Options) { o.BoundedCapacity = n }
}

// WithDegreeOfParallelism sets how many goroutines drain the block's
// input concurrently. Values <= 0 are clamped to 1. TransformBlock and
// ActionBlock (and so NullBlock) honor it; BufferBlock and
// BroadcastBlock always run a single goroutine.
func WithDegreeOfParallelism(n int) Option {
	return func(o *Options) { o.DegreeOfParallelism = n }
}

// WithLogger attaches a structured logger. A nil logger is replaced
// with slog.Default() at construction time.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

const defaultBoundedCapacity = 256

func resolveOptions(namePrefix string, opts []Option) Options {
	o := Options{
		BoundedCapacity:     defaultBoundedCapacity,
		DegreeOfParallelism: 1,
	}
	for _, apply := range opts {
		apply(&o)
	}
	if o.Name == "" {
		o.Name = core.NextName(namePrefix)
	}
	if o.BoundedCapacity <= 0 {
		o.BoundedCapacity = defaultBoundedCapacity
	}
	if o.DegreeOfParallelism <= 0 {
		o.DegreeOfParallelism = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// baseBlock carries the bookkeeping every concrete block shares:
// naming, buffered-count tracking, completion, and the fault/complete
// lifecycle latch.
type baseBlock struct {
	name       string
	logger     *slog.Logger
	buffered   atomic.Int64
	completion *core.Future

	mu        sync.Mutex
	faultErr  error
	completed bool
	cancel    context.CancelFunc
}

func newBaseBlock(opts Options, cancel context.CancelFunc) *baseBlock {
	return &baseBlock{
		name:       opts.Name,
		logger:     opts.Logger,
		completion: core.NewFuture(),
		cancel:     cancel,
	}
}

func (b *baseBlock) Name() string { return b.name }

func (b *baseBlock) Completion() *core.Future { return b.completion }

func (b *baseBlock) BufferedCount() int { return int(b.buffered.Load()) }

func (b *baseBlock) Fault(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	already := b.faultErr != nil
	if !already {
		b.faultErr = err
		b.completed = true
	}
	b.mu.Unlock()
	if already {
		return
	}
	b.logger.Error("block faulted", slog.String("block", b.name), slog.Any("error", err))
	if b.cancel != nil {
		b.cancel()
	}
}

// markDone is called by the worker-drain loop once every worker has
// exited. faultErr (if any) takes precedence over a clean nil result.
func (b *baseBlock) markDone() {
	b.mu.Lock()
	err := b.faultErr
	b.mu.Unlock()
	b.completion.Resolve(err)
}
