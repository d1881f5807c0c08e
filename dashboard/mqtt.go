package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/absmach/flaudit/pkg/mqtt"
)

const (
	FramesSuffix  = "/frames"
	ControlSuffix = "/control"
)

var errEmptyPatch = errors.New("control message carries no settings")

var _ Display = (*Publisher)(nil)

// Publisher is a Display that sends every frame to "<topic>/frames".
type Publisher struct {
	pubsub mqtt.PubSub
	topic  string
}

func NewPublisher(pubsub mqtt.PubSub, baseTopic string) *Publisher {
	return &Publisher{
		pubsub: pubsub,
		topic:  baseTopic + FramesSuffix,
	}
}

func (p *Publisher) Display(ctx context.Context, frame Frame) error {
	return p.pubsub.Publish(ctx, p.topic, frame)
}

// Subscribe applies settings patches received on "<topic>/control".
func Subscribe(ctx context.Context, baseTopic string, pubsub mqtt.PubSub, svc Service, logger *slog.Logger) error {
	return pubsub.Subscribe(ctx, baseTopic+ControlSuffix, HandleControl(ctx, svc, logger))
}

// HandleControl decodes a JSON settings patch. {"refresh": true} forces a
// refresh instead.
func HandleControl(ctx context.Context, svc Service, logger *slog.Logger) mqtt.Handler {
	return func(topic string, payload []byte) error {
		var msg struct {
			SettingsPatch
			Refresh bool `json:"refresh"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return err
		}

		if msg.Refresh {
			if _, err := svc.Refresh(ctx); err != nil {
				return err
			}
			logger.InfoContext(ctx, "Refresh requested over MQTT", slog.String("topic", topic))

			return nil
		}

		patch := msg.SettingsPatch
		if patch.AutoRefresh == nil && patch.Window == nil && patch.FocusRound == nil {
			return errEmptyPatch
		}

		settings, err := svc.UpdateSettings(ctx, patch)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Settings updated over MQTT",
			slog.String("topic", topic),
			slog.Bool("auto_refresh", settings.AutoRefresh),
			slog.Int("window", settings.Window),
			slog.Int("focus_round", settings.FocusRound),
		)

		return nil
	}
}
