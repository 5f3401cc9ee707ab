// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resolve

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
	tracer = otel.Tracer("codeindex.resolve")
	meter  = otel.Meter("codeindex.resolve")
)

var (
	resolveLatency metric.Float64Histogram
	usagesResolved metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		resolveLatency, err = meter.Float64Histogram(
			"resolve_pass_duration_seconds",
			metric.WithDescription("Duration of one Resolve pass over accumulated files"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		usagesResolved, err = meter.Int64Histogram(
			"resolve_usages_per_pass",
			metric.WithDescription("Number of declarations that received at least one usage in a Resolve pass"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordResolveMetrics(ctx context.Context, duration time.Duration, declCount int) {
	if err := initMetrics(); err != nil {
		return
	}
	resolveLatency.Record(ctx, duration.Seconds())
	usagesResolved.Record(ctx, int64(declCount))
}

func startResolveSpan(ctx context.Context, fileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Resolver.Resolve", trace.WithAttributes(
		attribute.Int("resolve.file_count", fileCount),
	))
}
