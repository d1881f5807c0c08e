package middleware

import (
	"context"
	"time"

	"github.com/absmach/flaudit/dashboard"
	"github.com/go-kit/kit/metrics"
)

var _ dashboard.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	rounds  metrics.Gauge
	svc     dashboard.Service
}

// Metrics counts and times every call. rounds tracks the number of rows in
// the last frame.
func Metrics(counter metrics.Counter, latency metrics.Histogram, rounds metrics.Gauge, svc dashboard.Service) dashboard.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		rounds:  rounds,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Frame(ctx context.Context) (dashboard.Frame, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "frame").Add(1)
		mm.latency.With("method", "frame").Observe(time.Since(begin).Seconds())
	}(time.Now())

	frame, err := mm.svc.Frame(ctx)
	if err == nil {
		mm.rounds.Set(float64(frame.Table.Len()))
	}

	return frame, err
}

func (mm *metricsMiddleware) Settings(ctx context.Context) (dashboard.Settings, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "settings").Add(1)
		mm.latency.With("method", "settings").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Settings(ctx)
}

func (mm *metricsMiddleware) UpdateSettings(ctx context.Context, patch dashboard.SettingsPatch) (dashboard.Settings, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "update-settings").Add(1)
		mm.latency.With("method", "update-settings").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpdateSettings(ctx, patch)
}

func (mm *metricsMiddleware) Refresh(ctx context.Context) (dashboard.Settings, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "refresh").Add(1)
		mm.latency.With("method", "refresh").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Refresh(ctx)
}
