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

import "sync"

// GarbageRecorder is a multiset of type names for outputs that matched
// no routing predicate and were sent to a null sink.
type GarbageRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewGarbageRecorder returns an empty recorder.
func NewGarbageRecorder() *GarbageRecorder {
	return &GarbageRecorder{counts: make(map[string]int)}
}

// Record increments the count for typeName.
func (g *GarbageRecorder) Record(typeName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[typeName]++
}

// Counts returns a snapshot of the recorded counts.
func (g *GarbageRecorder) Counts() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.counts))
	for k, v := range g.counts {
		out[k] = v
	}
	return out
}

// Count returns the count recorded for typeName.
func (g *GarbageRecorder) Count(typeName string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[typeName]
}
