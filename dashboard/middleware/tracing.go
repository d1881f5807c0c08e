package middleware

import (
	"context"

	"github.com/absmach/flaudit/dashboard"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ dashboard.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    dashboard.Service
}

func Tracing(tracer trace.Tracer, svc dashboard.Service) dashboard.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Frame(ctx context.Context) (dashboard.Frame, error) {
	ctx, span := tm.tracer.Start(ctx, "frame")
	defer span.End()

	frame, err := tm.svc.Frame(ctx)
	span.SetAttributes(
		attribute.Int("rows", frame.Table.Len()),
		attribute.Int("window", frame.Settings.Window),
	)
	if err != nil {
		span.RecordError(err)
	}

	return frame, err
}

func (tm *tracing) Settings(ctx context.Context) (dashboard.Settings, error) {
	ctx, span := tm.tracer.Start(ctx, "settings")
	defer span.End()

	return tm.svc.Settings(ctx)
}

func (tm *tracing) UpdateSettings(ctx context.Context, patch dashboard.SettingsPatch) (dashboard.Settings, error) {
	var attrs []attribute.KeyValue
	if patch.AutoRefresh != nil {
		attrs = append(attrs, attribute.Bool("auto_refresh", *patch.AutoRefresh))
	}
	if patch.Window != nil {
		attrs = append(attrs, attribute.Int("window", *patch.Window))
	}
	if patch.FocusRound != nil {
		attrs = append(attrs, attribute.Int("focus_round", *patch.FocusRound))
	}
	ctx, span := tm.tracer.Start(ctx, "update-settings", trace.WithAttributes(attrs...))
	defer span.End()

	return tm.svc.UpdateSettings(ctx, patch)
}

func (tm *tracing) Refresh(ctx context.Context) (dashboard.Settings, error) {
	ctx, span := tm.tracer.Start(ctx, "refresh")
	defer span.End()

	return tm.svc.Refresh(ctx)
}
