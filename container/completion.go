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
	"log/slog"

	"github.com/hangy/flowgraph/core"
)

// wrapCompletion observes raw and produces a new future that
// classifies the outcome, distinguishes originating from propagated
// failures, runs an optional success callback, and faults owner on an
// originating failure, a cancellation, or a callback error. owner may
// be nil for completion wrappers that should not fault anything (not
// currently used, but kept so this stays a pure function of its
// arguments rather than assuming a live container).
func wrapCompletion(raw *core.Future, unitName string, owner *Base, onSuccess func() error) *core.Future {
	wrapped := core.NewFuture()
	go func() {
		<-raw.Done()
		err := raw.Result()

		if err != nil {
			if _, canceled := err.(*core.CanceledError); canceled {
				wrapped.Resolve(err)
				if owner != nil {
					owner.Fault(err)
				}
				return
			}
			wrapped.Resolve(err)
			if owner != nil && !core.IsPropagated(err) {
				owner.Fault(err)
			}
			return
		}

		if onSuccess != nil {
			if cbErr := onSuccess(); cbErr != nil {
				if owner != nil {
					owner.logger.Error("success callback failed",
						slog.String("unit", unitName), slog.Any("error", cbErr))
					owner.Fault(cbErr)
				}
				wrapped.Resolve(cbErr)
				return
			}
		}
		wrapped.Resolve(nil)
	}()
	return wrapped
}
