package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/flaudit/pkg/api"
	pkgerrors "github.com/absmach/flaudit/pkg/errors"
	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodySize = 1 << 16

// MakeHandler returns the dashboard HTTP API. stream serves /ws and may be nil.
func MakeHandler(svc dashboard.Service, stream http.Handler, logger *slog.Logger, svcName, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Get("/frame", otelhttp.NewHandler(kithttp.NewServer(
		frameEndpoint(svc),
		decodeFrameReq,
		api.EncodeResponse,
		opts...,
	), "get-frame").ServeHTTP)

	mux.Route("/settings", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			getSettingsEndpoint(svc),
			kithttp.NopRequestDecoder,
			api.EncodeResponse,
			opts...,
		), "get-settings").ServeHTTP)
		r.Patch("/", otelhttp.NewHandler(kithttp.NewServer(
			updateSettingsEndpoint(svc),
			decodeUpdateSettingsReq,
			api.EncodeResponse,
			opts...,
		), "update-settings").ServeHTTP)
	})

	mux.Post("/refresh", otelhttp.NewHandler(kithttp.NewServer(
		refreshEndpoint(svc),
		kithttp.NopRequestDecoder,
		api.EncodeResponse,
		opts...,
	), "refresh").ServeHTTP)

	if stream != nil {
		mux.Get("/ws", stream.ServeHTTP)
	}

	mux.Get("/health", supermq.Health(svcName, instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeFrameReq(_ context.Context, _ *http.Request) (any, error) {
	return frameReq{}, nil
}

func decodeUpdateSettingsReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req updateSettingsReq
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, errors.Join(pkgerrors.ErrMalformedBody, err)
	}

	return req, nil
}
