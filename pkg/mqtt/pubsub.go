package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connTimeout    = 10
	reconnTimeout  = 1
	disconnTimeout = 250

	StatusSuffix = "/status"

	onlinePayload  = `{"status":"online"}`
	offlinePayload = `{"status":"offline"}`
)

var (
	errPublishTimeout     = errors.New("failed to publish due to timeout reached")
	errSubscribeTimeout   = errors.New("failed to subscribe due to timeout reached")
	errUnsubscribeTimeout = errors.New("failed to unsubscribe due to timeout reached")
	errConnect            = errors.New("failed to connect to MQTT broker")
	errConnectTimeout     = errors.New("timeout reached while connecting to MQTT broker")

	ErrEmptyTopic = errors.New("empty topic")
	ErrEmptyID    = errors.New("empty ID")
)

// Handler receives the raw payload of a message.
type Handler func(topic string, payload []byte) error

type PubSub interface {
	Publish(ctx context.Context, topic string, msg any) error
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Unsubscribe(ctx context.Context, topic string) error
	Disconnect(ctx context.Context) error
}

type Config struct {
	URL      string
	QoS      byte
	ClientID string
	Username string
	Password string
	// BaseTopic, when set, receives a retained online status on connect and
	// the offline last will.
	BaseTopic string
	Timeout   time.Duration
}

type pubsub struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
	logger  *slog.Logger
}

func NewPubSub(cfg Config, logger *slog.Logger) (PubSub, error) {
	if cfg.ClientID == "" {
		return nil, ErrEmptyID
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &pubsub{
		client:  client,
		qos:     cfg.QoS,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (ps *pubsub) Publish(ctx context.Context, topic string, msg any) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	token := ps.client.Publish(topic, ps.qos, false, data)

	return ps.wait(ctx, token, errPublishTimeout)
}

func (ps *pubsub) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	token := ps.client.Subscribe(topic, ps.qos, ps.mqttHandler(handler))

	return ps.wait(ctx, token, errSubscribeTimeout)
}

func (ps *pubsub) Unsubscribe(ctx context.Context, topic string) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	token := ps.client.Unsubscribe(topic)

	return ps.wait(ctx, token, errUnsubscribeTimeout)
}

func (ps *pubsub) Disconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		ps.client.Disconnect(disconnTimeout)

		return nil
	}
}

func (ps *pubsub) wait(ctx context.Context, token mqtt.Token, timeoutErr error) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(ps.timeout):
		return timeoutErr
	}
}

func newClient(cfg Config, logger *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connTimeout * time.Second).
		SetMaxReconnectInterval(reconnTimeout * time.Minute)

	if cfg.BaseTopic != "" {
		opts.SetWill(cfg.BaseTopic+StatusSuffix, offlinePayload, cfg.QoS, true)
	}

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT connection established", slog.String("broker", cfg.URL))
		if cfg.BaseTopic != "" {
			c.Publish(cfg.BaseTopic+StatusSuffix, cfg.QoS, true, onlinePayload)
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		args := []any{}
		if err != nil {
			args = append(args, slog.Any("error", err))
		}

		logger.Warn("MQTT connection lost", args...)
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, options *mqtt.ClientOptions) {
		args := []any{}
		if options != nil {
			args = append(args,
				slog.String("client_id", options.ClientID),
				slog.String("username", options.Username),
			)
		}

		logger.Info("MQTT reconnecting", args...)
	})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if ok := token.WaitTimeout(cfg.Timeout); !ok {
		return nil, errConnectTimeout
	}
	if err := token.Error(); err != nil {
		return nil, errors.Join(errConnect, err)
	}

	return client, nil
}

func (ps *pubsub) mqttHandler(h Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		if err := h(m.Topic(), m.Payload()); err != nil {
			ps.logger.Warn("Failed to handle MQTT message",
				slog.String("topic", m.Topic()),
				slog.Any("error", err),
			)
		}

		m.Ack()
	}
}
