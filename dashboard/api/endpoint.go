package api

import (
	"context"
	"errors"

	"github.com/absmach/flaudit/dashboard"
	pkgerrors "github.com/absmach/flaudit/pkg/errors"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"
)

func frameEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(frameReq)
		if !ok {
			return frameResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return frameResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		frame, err := svc.Frame(ctx)
		if err != nil {
			return frameResponse{}, err
		}

		return frameResponse{Frame: frame}, nil
	}
}

func getSettingsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		settings, err := svc.Settings(ctx)
		if err != nil {
			return settingsResponse{}, err
		}

		return settingsResponse{Settings: settings}, nil
	}
}

func updateSettingsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(updateSettingsReq)
		if !ok {
			return settingsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return settingsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		settings, err := svc.UpdateSettings(ctx, req.SettingsPatch)
		if err != nil {
			return settingsResponse{}, err
		}

		return settingsResponse{Settings: settings}, nil
	}
}

func refreshEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		settings, err := svc.Refresh(ctx)
		if err != nil {
			return settingsResponse{}, err
		}

		return settingsResponse{Settings: settings, refreshed: true}, nil
	}
}
