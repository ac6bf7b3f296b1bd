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

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextNameNeverCollides(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		name := NextName("Buffer")
		_, dup := seen[name]
		assert.False(t, dup, "duplicate name %q", name)
		seen[name] = struct{}{}
	}
}

func TestNextNameCountsPerPrefix(t *testing.T) {
	prefix := "PerPrefixCounterTest"
	first := NextName(prefix)
	second := NextName(prefix)
	other := NextName(prefix + "Other")

	assert.Equal(t, prefix+"-1", first)
	assert.Equal(t, prefix+"-2", second)
	assert.Equal(t, prefix+"Other-1", other)
}
