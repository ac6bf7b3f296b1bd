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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PerformanceMonitorMode controls whether the periodic monitor skips
// zero-valued buffered-count entries.
type PerformanceMonitorMode int

const (
	// Succinct skips logging a buffered count of zero.
	Succinct PerformanceMonitorMode = iota
	// Verbose logs every entry, including zero counts.
	Verbose
)

// DefaultMonitorInterval is used when WithMonitorInterval is not
// supplied and monitoring is enabled.
const DefaultMonitorInterval = 10 * time.Second

// Options configures a container's construction. Built with functional
// options, mirroring the teacher's TaskOption pattern.
type Options struct {
	Name                   string
	ContainerMonitorEnabled bool
	BlockMonitorEnabled     bool
	MonitorInterval         time.Duration
	PerformanceMonitorMode  PerformanceMonitorMode
	Logger                  *slog.Logger
	MetricsRegistry         *prometheus.Registry
}

// Option mutates Options during construction.
type Option func(*Options)

// WithContainerName overrides the generated friendly name.
func WithContainerName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithContainerMonitor enables container-level buffered-count logging.
func WithContainerMonitor() Option {
	return func(o *Options) { o.ContainerMonitorEnabled = true }
}

// WithBlockMonitor enables per-block buffered-count logging.
func WithBlockMonitor() Option {
	return func(o *Options) { o.BlockMonitorEnabled = true }
}

// WithMonitorInterval sets the monitor's logging cadence.
func WithMonitorInterval(d time.Duration) Option {
	return func(o *Options) { o.MonitorInterval = d }
}

// WithPerformanceMonitorMode sets Succinct or Verbose logging.
func WithPerformanceMonitorMode(m PerformanceMonitorMode) Option {
	return func(o *Options) { o.PerformanceMonitorMode = m }
}

// WithContainerLogger attaches a structured logger.
func WithContainerLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetricsRegistry attaches a Prometheus registry the monitor loop
// publishes a buffered-items gauge vector to. Nil (the default) means
// metrics are not collected; logging always happens regardless.
func WithMetricsRegistry(r *prometheus.Registry) Option {
	return func(o *Options) { o.MetricsRegistry = r }
}

func resolveOptions(opts []Option) Options {
	o := Options{MonitorInterval: DefaultMonitorInterval}
	for _, apply := range opts {
		apply(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MonitorInterval <= 0 {
		o.MonitorInterval = DefaultMonitorInterval
	}
	return o
}
