package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/flaudit/pkg/view"
)

type service struct {
	tables           TableSource
	state            *State
	explorerTemplate string
	logger           *slog.Logger
	now              func() time.Time
}

func NewService(tables TableSource, state *State, explorerTemplate string, logger *slog.Logger) Service {
	return &service{
		tables:           tables,
		state:            state,
		explorerTemplate: explorerTemplate,
		logger:           logger,
		now:              time.Now,
	}
}

func (svc *service) Frame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	settings := svc.state.Get()
	table := svc.tables.Get(ctx).Tail(settings.Window)

	return Frame{
		Settings: settings,
		Table:    table,
		View: view.Build(table, view.Options{
			FocusRound:       settings.FocusRound,
			ExplorerTemplate: svc.explorerTemplate,
		}),
		GeneratedAt: svc.now().UTC(),
	}, nil
}

func (svc *service) Settings(_ context.Context) (Settings, error) {
	return svc.state.Get(), nil
}

func (svc *service) UpdateSettings(_ context.Context, patch SettingsPatch) (Settings, error) {
	return svc.state.Apply(patch)
}

func (svc *service) Refresh(_ context.Context) (Settings, error) {
	svc.tables.Invalidate()

	return svc.state.Reset(svc.now().UTC()), nil
}
