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
	"fmt"
	"sync"
	"sync/atomic"
)

var nameCounters sync.Map // prefix string -> *atomic.Uint64

// NextName returns a friendly name built from prefix and a counter
// scoped to that prefix, used whenever a block or container is
// constructed without an explicit name. Two units with the same
// prefix never collide; units with different prefixes number
// independently (Transform-1, Buffer-1, Transform-2, ...).
func NextName(prefix string) string {
	v, _ := nameCounters.LoadOrStore(prefix, new(atomic.Uint64))
	n := v.(*atomic.Uint64).Add(1)
	return fmt.Sprintf("%s-%d", prefix, n)
}
