package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/flaudit/dashboard/api"
	"github.com/absmach/flaudit/dashboard/middleware"
	"github.com/absmach/flaudit/pkg/ledger"
	"github.com/absmach/flaudit/pkg/mqtt"
	"github.com/absmach/flaudit/pkg/prometheus"
	"github.com/absmach/flaudit/pkg/render/pretty"
	"github.com/absmach/flaudit/pkg/render/terminal"
	"github.com/absmach/flaudit/pkg/tracing"
	kitmetrics "github.com/go-kit/kit/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	SvcName = "flaudit"

	FormatTerminal = "terminal"
	FormatJSON     = "json"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	logFilePermission = 0o644
)

var ErrUnknownFormat = errors.New("unknown output format")

type Config struct {
	LogLevel         string        `env:"FLAUDIT_LOG_LEVEL"         envDefault:"info"`
	LogFile          string        `env:"FLAUDIT_LOG_FILE"`
	InstanceID       string        `env:"FLAUDIT_INSTANCE_ID"`
	Name             string        `env:"FLAUDIT_NAME"`
	ConfigPath       string        `env:"FLAUDIT_CONFIG"            envDefault:"config.toml"`
	LedgerPath       string        `env:"FLAUDIT_LEDGER_PATH"       envDefault:"data/ledger.json"`
	RetryDelay       time.Duration `env:"FLAUDIT_RETRY_DELAY"       envDefault:"100ms"`
	CacheTTL         time.Duration `env:"FLAUDIT_CACHE_TTL"         envDefault:"1s"`
	RefreshInterval  time.Duration `env:"FLAUDIT_REFRESH_INTERVAL"  envDefault:"5s"`
	AutoRefresh      bool          `env:"FLAUDIT_AUTO_REFRESH"      envDefault:"true"`
	Window           int           `env:"FLAUDIT_WINDOW"            envDefault:"50"`
	FocusRound       int           `env:"FLAUDIT_FOCUS_ROUND"       envDefault:"10"`
	ExplorerTemplate string        `env:"FLAUDIT_EXPLORER_TEMPLATE"`
	Terminal         bool          `env:"FLAUDIT_TERMINAL"          envDefault:"true"`
	HTTPHost         string        `env:"FLAUDIT_HTTP_HOST"`
	HTTPPort         string        `env:"FLAUDIT_HTTP_PORT"         envDefault:"9099"`
	MQTTAddress      string        `env:"FLAUDIT_MQTT_ADDRESS"`
	MQTTClientID     string        `env:"FLAUDIT_MQTT_CLIENT_ID"`
	MQTTClientKey    string        `env:"FLAUDIT_MQTT_CLIENT_KEY"`
	MQTTQoS          uint8         `env:"FLAUDIT_MQTT_QOS"          envDefault:"1"`
	MQTTTimeout      time.Duration `env:"FLAUDIT_MQTT_TIMEOUT"      envDefault:"30s"`
	MQTTTopic        string        `env:"FLAUDIT_MQTT_TOPIC"        envDefault:"flaudit"`
	OTELURL          url.URL       `env:"FLAUDIT_OTEL_URL"`
	TraceRatio       float64       `env:"FLAUDIT_TRACE_RATIO"       envDefault:"0"`
}

func (c Config) Settings() dashboard.Settings {
	return dashboard.Settings{
		AutoRefresh: c.AutoRefresh,
		Window:      c.Window,
		FocusRound:  c.FocusRound,
	}
}

// NewLogger writes JSON logs to stderr and, when configured, to a log file.
func NewLogger(cfg Config) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("failed to parse log level: %s", err.Error())
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	logHandler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(logHandler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var (
	metricsOnce sync.Once
	counter     kitmetrics.Counter
	latency     kitmetrics.Histogram
	rounds      kitmetrics.Gauge
)

// serviceMetrics registers the collectors once per process.
func serviceMetrics() (kitmetrics.Counter, kitmetrics.Histogram, kitmetrics.Gauge) {
	metricsOnce.Do(func() {
		counter, latency = prometheus.MakeMetrics(SvcName, "api")
		rounds = prometheus.MakeGauge(SvcName, "ledger", "rounds", "Number of rounds in the last frame.")
	})

	return counter, latency, rounds
}

func newPipeline(cfg Config, state *dashboard.State, logger *slog.Logger) (dashboard.Service, error) {
	reader, err := ledger.NewReader(cfg.LedgerPath, cfg.RetryDelay, logger)
	if err != nil {
		return nil, err
	}

	return dashboard.NewService(ledger.NewCache(reader, cfg.CacheTTL), state, cfg.ExplorerTemplate, logger), nil
}

// Start runs the poll loop, the HTTP API and the optional displays until ctx
// is cancelled.
func Start(ctx context.Context, cfg Config, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	tp, shutdown, err := tracing.Setup(ctx, SvcName, cfg.InstanceID, cfg.OTELURL, cfg.TraceRatio)
	if err != nil {
		return fmt.Errorf("failed to initialize opentelemetry: %s", err.Error())
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", slog.Any("error", err))
		}
	}()
	tracer := tp.Tracer(SvcName)

	state := dashboard.NewState(cfg.Settings())
	svc, err := newPipeline(cfg, state, logger)
	if err != nil {
		return err
	}
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency, rounds := serviceMetrics()
	svc = middleware.Metrics(counter, latency, rounds, svc)

	stream := api.NewStream(logger)
	displays := []dashboard.Display{stream}

	if cfg.Terminal {
		term := terminal.New()
		defer func() {
			if err := term.Stop(); err != nil {
				logger.Warn("failed to stop terminal display", slog.Any("error", err))
			}
		}()
		displays = append(displays, term)
	}

	if cfg.MQTTAddress != "" {
		ps, err := mqtt.NewPubSub(mqtt.Config{
			URL:       cfg.MQTTAddress,
			QoS:       cfg.MQTTQoS,
			ClientID:  cfg.MQTTClientID,
			Username:  cfg.MQTTClientID,
			Password:  cfg.MQTTClientKey,
			BaseTopic: cfg.MQTTTopic,
			Timeout:   cfg.MQTTTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mqtt pubsub: %s", err.Error())
		}
		defer func() {
			if err := ps.Disconnect(context.Background()); err != nil {
				logger.Warn("failed to disconnect from mqtt broker", slog.Any("error", err))
			}
		}()

		if err := dashboard.Subscribe(ctx, cfg.MQTTTopic, ps, svc, logger); err != nil {
			return fmt.Errorf("failed to subscribe to control topic: %s", err.Error())
		}
		displays = append(displays, dashboard.NewPublisher(ps, cfg.MQTTTopic))
	}

	poller, err := dashboard.NewPoller(svc, state, cfg.RefreshInterval, logger, displays...)
	if err != nil {
		return err
	}

	hs := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort),
		Handler:           api.MakeHandler(svc, stream, logger, SvcName, cfg.InstanceID),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	listener, err := net.Listen("tcp", hs.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", hs.Addr, err)
	}

	logger.Info(fmt.Sprintf("%s service started", SvcName),
		slog.String("name", cfg.Name),
		slog.String("instance_id", cfg.InstanceID),
		slog.String("ledger", cfg.LedgerPath),
		slog.String("http", listener.Addr().String()),
	)

	g.Go(func() error {
		for {
			if err := poller.Run(ctx); err != nil {
				return err
			}
			if err := poller.AwaitActive(ctx); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		if err := hs.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return hs.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s service exited with error: %w", SvcName, err)
	}
	logger.Info(fmt.Sprintf("%s service stopped", SvcName))

	return nil
}

// Snapshot renders a single frame with auto refresh disabled.
func Snapshot(ctx context.Context, cfg Config, format string, out io.Writer, logger *slog.Logger) error {
	var display dashboard.Display
	switch format {
	case FormatTerminal:
		display = terminal.NewStatic(out)
	case FormatJSON:
		display = pretty.NewWriter(out, false)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	settings := cfg.Settings()
	settings.AutoRefresh = false
	state := dashboard.NewState(settings)

	svc, err := newPipeline(cfg, state, logger)
	if err != nil {
		return err
	}

	poller, err := dashboard.NewPoller(svc, state, cfg.RefreshInterval, logger, display)
	if err != nil {
		return err
	}

	return poller.Run(ctx)
}
