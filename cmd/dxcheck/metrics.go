// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dxcheck_cache_hits_total",
		Help: "Number of tool-cache hits, by tool.",
	}, []string{"tool"})

	cacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dxcheck_cache_misses_total",
		Help: "Number of tool-cache misses, by tool.",
	}, []string{"tool"})

	cacheEntriesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dxcheck_cache_entries",
		Help: "Number of entries currently in the tool cache, by tool.",
	}, []string{"tool"})
)

func init() {
	prometheus.MustRegister(cacheHitsTotal, cacheMissesTotal, cacheEntriesGauge)
}

// startMetricsServer exposes /metrics on addr in the background. A bind
// failure is logged, not fatal — metrics are an optional diagnostic aid,
// not load-bearing for a check run.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
}
