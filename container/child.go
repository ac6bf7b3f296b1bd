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

// Package container implements the composition and lifecycle engine:
// child registration, aggregated completion, fault propagation,
// conditional output routing, inter-container linking, and the
// no-data-loss broadcaster. Everything here is built directly from the
// container model; no block in this package knows about adapters or
// any particular data type beyond its own type parameters.
package container

import (
	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/core"
)

// Lifecycle is the capability every container exposes to its parent
// and to the inter-container link protocol: a name, an aggregated
// completion future, a way to fault it, and a flattened view of its
// buffered state.
type Lifecycle interface {
	Name() string
	CompletionTask() *core.Future
	Fault(err error)
	BufferedCount() int
	Blocks() []block.Block
}

// Child is a uniformly-addressable handle over the two things a
// container can register: a single block, or a nested container.
type Child interface {
	Name() string
	BufferedCount() int
	Blocks() []block.Block
	WrappedCompletion() *core.Future
}

type blockChild struct {
	blk      block.Block
	wrapped  *core.Future
}

func (c *blockChild) Name() string               { return c.blk.Name() }
func (c *blockChild) BufferedCount() int         { return c.blk.BufferedCount() }
func (c *blockChild) Blocks() []block.Block      { return []block.Block{c.blk} }
func (c *blockChild) WrappedCompletion() *core.Future { return c.wrapped }

type containerChild struct {
	child   Lifecycle
	wrapped *core.Future
}

func (c *containerChild) Name() string               { return c.child.Name() }
func (c *containerChild) BufferedCount() int         { return c.child.BufferedCount() }
func (c *containerChild) Blocks() []block.Block      { return c.child.Blocks() }
func (c *containerChild) WrappedCompletion() *core.Future { return c.wrapped }
