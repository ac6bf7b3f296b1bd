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

// NullBlock discards every item it receives. Containers route garbage
// (items no output predicate claimed) here so that no goroutine
// blocks waiting for a reader that will never show up.
type NullBlock[T any] struct {
	*ActionBlock[T]
}

// NewNullBlock constructs a block that accepts and discards T forever.
func NewNullBlock[T any](ctx context.Context, opts ...Option) *NullBlock[T] {
	discard := func(context.Context, T) error { return nil }
	return &NullBlock[T]{ActionBlock: NewActionBlock(ctx, discard, opts...)}
}
