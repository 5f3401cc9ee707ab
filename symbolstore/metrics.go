// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbolstore

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("codeindex.symbolstore")
	meter  = otel.Meter("codeindex.symbolstore")
)

var (
	insertLatency    metric.Float64Histogram
	insertTotal      metric.Int64Counter
	insertErrors     metric.Int64Counter
	definitionsBatch metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		insertLatency, err = meter.Float64Histogram(
			"symbolstore_insert_duration_seconds",
			metric.WithDescription("Duration of InsertDefinitions calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		insertTotal, err = meter.Int64Counter(
			"symbolstore_insert_total",
			metric.WithDescription("Total number of InsertDefinitions calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		insertErrors, err = meter.Int64Counter(
			"symbolstore_insert_errors_total",
			metric.WithDescription("Total number of failed InsertDefinitions calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		definitionsBatch, err = meter.Int64Histogram(
			"symbolstore_insert_batch_size",
			metric.WithDescription("Number of definitions written per InsertDefinitions call"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordInsertMetrics(ctx context.Context, duration time.Duration, defCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	insertLatency.Record(ctx, duration.Seconds(), attrs)
	insertTotal.Add(ctx, 1, attrs)
	definitionsBatch.Record(ctx, int64(defCount))
	if !success {
		insertErrors.Add(ctx, 1)
	}
}

func startInsertSpan(ctx context.Context, filePrefix string, defCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Store.InsertDefinitions",
		trace.WithAttributes(
			attribute.String("symbolstore.file_prefix", filePrefix),
			attribute.Int("symbolstore.definition_count", defCount),
		),
	)
}
