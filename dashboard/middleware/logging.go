package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/flaudit/dashboard"
)

var _ dashboard.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    dashboard.Service
}

func Logging(logger *slog.Logger, svc dashboard.Service) dashboard.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Frame(ctx context.Context) (resp dashboard.Frame, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("frame",
				slog.Int("rows", resp.Table.Len()),
				slog.Int("window", resp.Settings.Window),
				slog.Bool("empty", resp.View.Empty),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Build frame failed", args...)

			return
		}
		lm.logger.Debug("Build frame completed successfully", args...)
	}(time.Now())

	return lm.svc.Frame(ctx)
}

func (lm *loggingMiddleware) Settings(ctx context.Context) (resp dashboard.Settings, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get settings failed", args...)

			return
		}
		lm.logger.Info("Get settings completed successfully", args...)
	}(time.Now())

	return lm.svc.Settings(ctx)
}

func (lm *loggingMiddleware) UpdateSettings(ctx context.Context, patch dashboard.SettingsPatch) (resp dashboard.Settings, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("settings",
				slog.Bool("auto_refresh", resp.AutoRefresh),
				slog.Int("window", resp.Window),
				slog.Int("focus_round", resp.FocusRound),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Update settings failed", args...)

			return
		}
		lm.logger.Info("Update settings completed successfully", args...)
	}(time.Now())

	return lm.svc.UpdateSettings(ctx, patch)
}

func (lm *loggingMiddleware) Refresh(ctx context.Context) (resp dashboard.Settings, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Time("last_reset", resp.LastReset),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Refresh failed", args...)

			return
		}
		lm.logger.Info("Refresh completed successfully", args...)
	}(time.Now())

	return lm.svc.Refresh(ctx)
}
