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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPropagated(t *testing.T) {
	require.True(t, IsPropagated(NewPropagatedError(SiblingUnitFailed, "A")))
	require.False(t, IsPropagated(&CanceledError{Unit: "A"}))
	require.False(t, IsPropagated(errors.New("plain")))
}

func TestPropagatedErrorCarriesNoCause(t *testing.T) {
	pe := NewPropagatedError(OtherContainerFailed, "Upstream")
	assert.Equal(t, OtherContainerFailed, pe.Kind)
	assert.Equal(t, "Upstream", pe.Origin)
	assert.NotContains(t, pe.Error(), "nil")
}

func TestUnwrapWithPriorityPrefersOriginating(t *testing.T) {
	originating := errors.New("boom")
	propagated := NewPropagatedError(SiblingUnitFailed, "SiblingA")

	got := UnwrapWithPriority([]error{propagated, originating})
	assert.Same(t, originating, got)

	got = UnwrapWithPriority([]error{originating, propagated})
	assert.Same(t, originating, got)
}

func TestUnwrapWithPriorityFirstPropagatedWins(t *testing.T) {
	first := NewPropagatedError(SiblingUnitFailed, "A")
	second := NewPropagatedError(SiblingUnitCanceled, "B")

	got := UnwrapWithPriority([]error{first, second})
	assert.Same(t, first, got)
}

func TestUnwrapWithPriorityEmpty(t *testing.T) {
	assert.Nil(t, UnwrapWithPriority(nil))
	assert.Nil(t, UnwrapWithPriority([]error{nil, nil}))
}

func TestIllegalArgumentErrorMessage(t *testing.T) {
	err := &IllegalArgumentError{Container: "C", Argument: "block", Reason: "nil"}
	assert.Contains(t, err.Error(), "nil")
	assert.Contains(t, err.Error(), "C")
}
