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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	bufferedGaugeOnce sync.Once
	bufferedGauge     *prometheus.GaugeVec
)

func bufferedItemsGauge(reg *prometheus.Registry) *prometheus.GaugeVec {
	bufferedGaugeOnce.Do(func() {
		bufferedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "container_buffered_items",
			Help: "Items currently queued in a container or one of its blocks.",
		}, []string{"container", "block"})
	})
	if reg != nil {
		reg.Register(bufferedGauge) //nolint:errcheck // AlreadyRegisteredError is expected across containers sharing a registry
	}
	return bufferedGauge
}

// startMonitor launches the periodic buffered-count reporting loop and
// returns a function that stops it. The loop is bound to the
// container's completion future via select so an unbounded ticker
// never outlives the container, per the design note that the source's
// monitor loop needs an explicit exit.
func startMonitor(b *Base) func() {
	stopCh := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(stopCh) }) }

	go func() {
		ticker := time.NewTicker(b.opts.MonitorInterval)
		defer ticker.Stop()

		var gauge *prometheus.GaugeVec
		if b.opts.MetricsRegistry != nil {
			gauge = bufferedItemsGauge(b.opts.MetricsRegistry)
		}

		for {
			select {
			case <-b.completion.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				b.reportOnce(gauge)
			}
		}
	}()

	return stop
}

func (b *Base) reportOnce(gauge *prometheus.GaugeVec) {
	succinct := b.opts.PerformanceMonitorMode == Succinct

	if b.opts.ContainerMonitorEnabled {
		count := b.BufferedCount()
		if !succinct || count > 0 {
			b.logger.Debug("container buffered count",
				slog.String("container", b.name), slog.Int("buffered", count))
		}
		if gauge != nil {
			gauge.WithLabelValues(b.name, "").Set(float64(count))
		}
	}

	if b.opts.BlockMonitorEnabled {
		for _, blk := range b.Blocks() {
			count := blk.BufferedCount()
			if !succinct || count > 0 {
				b.logger.Debug("block buffered count",
					slog.String("container", b.name), slog.String("block", blk.Name()),
					slog.Int("buffered", count))
			}
			if gauge != nil {
				gauge.WithLabelValues(b.name, blk.Name()).Set(float64(count))
			}
		}
	}
}
