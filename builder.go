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

package flow

import (
	"context"
	"fmt"

	"github.com/hangy/flowgraph/container"
	"github.com/hangy/flowgraph/core"
)

// GraphBuilder accumulates a chain of containers and the edges
// linking them, mirroring the fluent style of a linear record
// pipeline builder generalized to container composition. Go's
// generics cannot express "the output type of step N is the input
// type of step N+1" across a variable-length chain without repeating
// the type parameters at every step, so each edge is supplied as a
// closure that performs the actual typed link (container.LinkTo,
// container.TransformAndLink, a Broadcaster.GoTo, ...) — GraphBuilder
// itself only sequences those closures and remembers the terminal
// container whose CompletionTask the caller ultimately wants.
type GraphBuilder struct {
	source   container.Lifecycle
	terminal container.Lifecycle
	edges    []func() error
	built    bool
}

// NewGraph starts a new builder rooted at source.
func NewGraph(source container.Lifecycle) *GraphBuilder {
	return &GraphBuilder{source: source, terminal: source}
}

// Then appends an edge-installing closure and advances the terminal
// container to next. link is expected to call one of the container
// package's linking functions (LinkTo, TransformAndLink, DowncastLink)
// between the builder's current terminal and next; GraphBuilder does
// not call those itself because their type parameters vary per edge.
func (g *GraphBuilder) Then(link func() error, next container.Lifecycle) *GraphBuilder {
	g.edges = append(g.edges, link)
	g.terminal = next
	return g
}

// Sink is an alias for Then used when next is the last container in
// the chain, purely for readability at call sites.
func (g *GraphBuilder) Sink(link func() error, next container.Lifecycle) *GraphBuilder {
	return g.Then(link, next)
}

// Build finalizes the chain. It exists to mirror the teacher's
// fluent-builder convention (From/Transform/To/Build); GraphBuilder
// has no deferred validation to run, so Build just marks the builder
// ready and returns it for a subsequent Run.
func (g *GraphBuilder) Build() (*GraphBuilder, error) {
	if g.source == nil {
		return nil, fmt.Errorf("flow: graph has no source container")
	}
	g.built = true
	return g, nil
}

// Run installs every edge in registration order and returns the
// terminal container's aggregated completion future. Run does not
// itself wait for that future to resolve; callers that want to block
// until the whole graph finishes should call Wait on the result, or
// select on its Done channel directly. ctx is checked before any edge
// is installed, so a caller that cancels before Run gets a clean
// error instead of a half-wired graph.
func (g *GraphBuilder) Run(ctx context.Context) (*core.Future, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !g.built {
		if _, err := g.Build(); err != nil {
			return nil, err
		}
	}
	for i, link := range g.edges {
		if err := link(); err != nil {
			return nil, fmt.Errorf("flow: installing edge %d: %w", i, err)
		}
	}
	return g.terminal.CompletionTask(), nil
}
