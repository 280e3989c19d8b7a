package summary

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// server.go exposes the population summary as Prometheus gauges so external
// dashboards can track streamization opportunity across project variants.

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rv-smx/utils/internal/smx"
)

const promMetricPrefix = "smxa_"

var summaryGauges = map[string]prometheus.Gauge{}

func newSummaryGauge(name string, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: promMetricPrefix + name,
		Help: help,
	})
	summaryGauges[name] = gauge
	return gauge
}

var (
	gaugeLoops                = newSummaryGauge("loops", "Number of analyzed loops")
	gaugePartial              = newSummaryGauge("partially_streamizable_loops", "Loops with some but not all memory streams supported")
	gaugeFull                 = newSummaryGauge("fully_streamizable_loops", "Loops with all memory streams supported")
	gaugeMaxIVs               = newSummaryGauge("max_supported_ivs", "Maximum supported induction variable streams in one loop")
	gaugeMaxChain             = newSummaryGauge("max_iv_chain_len", "Maximum induction variable chain length")
	gaugeMaxMSs               = newSummaryGauge("max_supported_mss", "Maximum supported memory streams in one loop")
	gaugeMaxWidth             = newSummaryGauge("max_access_width", "Maximum memory access width in bytes")
	gaugeSupportedMSs         = newSummaryGauge("supported_mss", "Total supported memory streams")
	gaugeIndirectMSs          = newSummaryGauge("indirect_mss", "Total indirect supported memory streams")
	gaugeLoads                = newSummaryGauge("loads", "Total load operations")
	gaugeStreamLoads          = newSummaryGauge("stream_loads", "Loads through a supported memory stream")
	gaugeIndirectStreamLoads  = newSummaryGauge("indirect_stream_loads", "Loads through an indirect memory stream")
	gaugeStores               = newSummaryGauge("stores", "Total store operations")
	gaugeStreamStores         = newSummaryGauge("stream_stores", "Stores through a supported memory stream")
	gaugeIndirectStreamStores = newSummaryGauge("indirect_stream_stores", "Stores through an indirect memory stream")
)

func updateSummaryGauges(s smx.Summary) {
	gaugeLoops.Set(float64(s.NumLoops))
	gaugePartial.Set(float64(s.NumPartiallyStreamizable))
	gaugeFull.Set(float64(s.NumFullyStreamizable))
	gaugeMaxIVs.Set(float64(s.MaxSupportedIVs))
	gaugeMaxChain.Set(float64(s.MaxIVChainLen))
	gaugeMaxMSs.Set(float64(s.MaxSupportedMSs))
	gaugeMaxWidth.Set(float64(s.MaxAccessWidth))
	gaugeSupportedMSs.Set(float64(s.NumSupportedMSs))
	gaugeIndirectMSs.Set(float64(s.NumIndirectMSs))
	gaugeLoads.Set(float64(s.NumLoads))
	gaugeStreamLoads.Set(float64(s.NumStreamLoads))
	gaugeIndirectStreamLoads.Set(float64(s.NumIndirectStreamLoads))
	gaugeStores.Set(float64(s.NumStores))
	gaugeStreamStores.Set(float64(s.NumStreamStores))
	gaugeIndirectStreamStores.Set(float64(s.NumIndirectStreamStores))
}

// serveSummary publishes the summary on a Prometheus scrape endpoint and
// blocks until interrupted.
func serveSummary(listenAddr string, s smx.Summary) error {
	for _, gauge := range summaryGauges {
		if err := prometheus.Register(gauge); err != nil {
			return fmt.Errorf("failed to register Prometheus gauge: %v", err)
		}
	}
	updateSummaryGauges(s)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	errChannel := make(chan error, 1)
	go func() {
		slog.Info("Starting Prometheus metrics server", slog.String("address", listenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChannel <- err
		}
	}()
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, syscall.SIGINT, syscall.SIGTERM)
	fmt.Printf("Serving summary metrics on %s, press Ctrl+C to stop.\n", listenAddr)
	select {
	case err := <-errChannel:
		return fmt.Errorf("Prometheus HTTP server error: %v", err)
	case sig := <-sigChannel:
		slog.Info("received signal", slog.String("signal", sig.String()))
	}
	return server.Close()
}
