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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/core"
)

func TestIsCanceledErrClassification(t *testing.T) {
	assert.True(t, isCanceledErr(&core.CanceledError{Unit: "A"}))
	assert.True(t, isCanceledErr(core.NewPropagatedError(core.OtherContainerCanceled, "A")))
	assert.False(t, isCanceledErr(core.NewPropagatedError(core.OtherContainerFailed, "A")))
	assert.False(t, isCanceledErr(errors.New("plain")))
	assert.False(t, isCanceledErr(nil))
}

func TestLinkFromCompletesContainerInputOnSourceClose(t *testing.T) {
	ctx := context.Background()
	src := block.NewBufferBlock[int](ctx, block.WithBoundedCapacity(4))

	ab := block.NewActionBlock[int](ctx, func(context.Context, int) error { return nil })
	target, err := NewInputContainer[int](ab)
	require.NoError(t, err)

	errCh := target.LinkFrom(ctx, src)

	require.NoError(t, src.Send(ctx, 1))
	require.NoError(t, src.Send(ctx, 2))
	src.Complete()

	require.NoError(t, <-errCh)
	assert.NoError(t, waitFuture(t, target.CompletionTask()))
}
