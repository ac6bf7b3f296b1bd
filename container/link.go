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
	"github.com/hangy/flowgraph/core"
)

// InputLinkable is the capability a target container must have to be
// on the receiving end of the inter-container link protocol: a
// lifecycle, plus a way to complete its own input block without the
// bridging code needing to know the input's element type.
type InputLinkable interface {
	Lifecycle
	completeInput()
}

func isCanceledErr(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*core.CanceledError); ok {
		return true
	}
	if pe, ok := err.(*core.PropagatedError); ok {
		return pe.Kind == core.SiblingUnitCanceled || pe.Kind == core.OtherContainerCanceled
	}
	return false
}

// bridgeContainers implements the inter-container link protocol
// (source block feeding A, A itself, and target container B): B's
// input is completed when allOf(srcCompletion, A.CompletionTask)
// resolves successfully; a failure or cancellation on that pair
// faults B instead, and a failure on B before A is done faults A.
// Both directions translate into OtherContainer... propagated kinds,
// which do not themselves re-trigger a fault when they land.
func bridgeContainers(srcCompletion *core.Future, a Lifecycle, b InputLinkable) {
	go func() {
		<-srcCompletion.Done()
		<-a.CompletionTask().Done()
		if b.CompletionTask().IsResolved() {
			return
		}
		srcErr := srcCompletion.Result()
		aErr := a.CompletionTask().Result()
		switch {
		case srcErr != nil || aErr != nil:
			if isCanceledErr(srcErr) || isCanceledErr(aErr) {
				b.Fault(core.NewPropagatedError(core.OtherContainerCanceled, a.Name()))
			} else {
				b.Fault(core.NewPropagatedError(core.OtherContainerFailed, a.Name()))
			}
		default:
			b.completeInput()
		}
	}()

	go func() {
		<-b.CompletionTask().Done()
		if a.CompletionTask().IsResolved() {
			return
		}
		err := b.CompletionTask().Result()
		if err == nil {
			return
		}
		if isCanceledErr(err) {
			a.Fault(core.NewPropagatedError(core.OtherContainerCanceled, b.Name()))
		} else {
			a.Fault(core.NewPropagatedError(core.OtherContainerFailed, b.Name()))
		}
	}()
}
