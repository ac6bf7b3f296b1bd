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

// Package core holds the low-level types shared across the block and
// container packages: error kinds, the completion future, and the
// friendly-naming counter. Nothing in this package knows about
// containers or blocks.
package core

import (
	"errors"
	"fmt"
)

// NoChildRegisteredError is returned when a container is asked to
// aggregate completion before any child has registered.
type NoChildRegisteredError struct {
	Container string
}

func (e *NoChildRegisteredError) Error() string {
	return fmt.Sprintf("container %q: no child registered", e.Container)
}

// IllegalArgumentError covers the two argument-validation failure modes
// containers surface: a nil child and a duplicate registration.
type IllegalArgumentError struct {
	Container string
	Argument  string
	Reason    string // "nil" or "duplicate"
}

func (e *IllegalArgumentError) Error() string {
	return fmt.Sprintf("container %q: illegal argument %q: %s", e.Container, e.Argument, e.Reason)
}

// CanceledError marks a container or block as stopped through explicit
// cancellation rather than through a fault.
type CanceledError struct {
	Unit string
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("%s: canceled", e.Unit)
}

// PropagatedErrorKind distinguishes the four ways a fault or a
// cancellation in one unit of a graph shows up in a neighboring unit.
type PropagatedErrorKind int

const (
	// SiblingUnitFailed marks a fault raised by a sibling block inside
	// the same container.
	SiblingUnitFailed PropagatedErrorKind = iota
	// SiblingUnitCanceled marks a cancellation observed from a sibling
	// block inside the same container.
	SiblingUnitCanceled
	// OtherContainerFailed marks a fault observed across an
	// inter-container link.
	OtherContainerFailed
	// OtherContainerCanceled marks a cancellation observed across an
	// inter-container link.
	OtherContainerCanceled
)

func (k PropagatedErrorKind) String() string {
	switch k {
	case SiblingUnitFailed:
		return "sibling unit failed"
	case SiblingUnitCanceled:
		return "sibling unit canceled"
	case OtherContainerFailed:
		return "other container failed"
	case OtherContainerCanceled:
		return "other container canceled"
	default:
		return "unknown propagated kind"
	}
}

// PropagatedError is a signal, not a diagnosis: it tells a sibling unit
// or a linked container that a peer failed or was canceled, without
// carrying the original cause. This is deliberate — forwarding the
// original error to every sibling would let one root cause masquerade
// as N independent failures and defeats the priority-unwrap rule below.
type PropagatedError struct {
	Kind   PropagatedErrorKind
	Origin string // friendly name of the unit the error originated in
}

func (e *PropagatedError) Error() string {
	return fmt.Sprintf("%s (from %s)", e.Kind, e.Origin)
}

// NewPropagatedError constructs a PropagatedError of the given kind.
func NewPropagatedError(kind PropagatedErrorKind, origin string) *PropagatedError {
	return &PropagatedError{Kind: kind, Origin: origin}
}

// IsPropagated reports whether err is (or wraps) a PropagatedError.
func IsPropagated(err error) bool {
	var pe *PropagatedError
	return errors.As(err, &pe)
}

// UnwrapWithPriority picks the single error that best represents a set
// of faults observed on a container's children. An originating error
// (one that is not a PropagatedError) always outranks a propagated one,
// since it carries the actual root cause rather than a marker pointing
// at it. Ties among errors of the same rank resolve to the first seen.
// UnwrapWithPriority returns nil for an empty or all-nil slice.
func UnwrapWithPriority(errs []error) error {
	var bestPropagated error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if IsPropagated(err) {
			if bestPropagated == nil {
				bestPropagated = err
			}
			continue
		}
		return err
	}
	return bestPropagated
}
