// Copyright 2026 The Anzenboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/anzenboard/anzenboard/internal/observability/metrics"
)

// CallableMetrics tracks invocation counts and latency per callable.
type CallableMetrics struct {
	invocations metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewCallableMetrics creates the callable instruments
func NewCallableMetrics(meter *metrics.Meter) (*CallableMetrics, error) {
	invocations, err := meter.CreateCounter("callable_invocations_total", "Total callable invocations")
	if err != nil {
		return nil, err
	}
	failures, err := meter.CreateCounter("callable_failures_total", "Callable invocations that returned an error")
	if err != nil {
		return nil, err
	}
	duration, err := meter.CreateHistogram("callable_duration", "Callable handler duration", "s")
	if err != nil {
		return nil, err
	}
	return &CallableMetrics{
		invocations: invocations,
		failures:    failures,
		duration:    duration,
	}, nil
}

func (m *CallableMetrics) record(ctx context.Context, name, errorCode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("callable", name))
	m.invocations.Add(ctx, 1, attrs)
	if errorCode != "" {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("callable", name),
			attribute.String("error_code", errorCode),
		))
	}
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
