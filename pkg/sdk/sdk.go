package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/flaudit/pkg/view"
)

const (
	CTJSON string = "application/json"

	frameEndpoint    = "/frame"
	settingsEndpoint = "/settings"
	refreshEndpoint  = "/refresh"
	healthEndpoint   = "/health"
)

// Frame is a frame as served over HTTP. Table rows are keyed by column name
// with nil for empty node cells.
type Frame struct {
	Settings    dashboard.Settings `json:"settings"`
	Table       []map[string]any   `json:"table"`
	View        view.View          `json:"view"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type Health struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	InstanceID string `json:"instance_id"`
}

type SDK interface {
	// Frame fetches the current dashboard frame.
	//
	// example:
	//  frame, _ := sdk.Frame(ctx)
	//  fmt.Println(frame.View.KPIs.Accuracy)
	Frame(ctx context.Context) (Frame, error)

	// Settings fetches the operator settings.
	//
	// example:
	//  settings, _ := sdk.Settings(ctx)
	//  fmt.Println(settings.Window)
	Settings(ctx context.Context) (dashboard.Settings, error)

	// UpdateSettings applies a partial settings update.
	//
	// example:
	//  off := false
	//  settings, _ := sdk.UpdateSettings(ctx, dashboard.SettingsPatch{AutoRefresh: &off})
	//  fmt.Println(settings.AutoRefresh)
	UpdateSettings(ctx context.Context, patch dashboard.SettingsPatch) (dashboard.Settings, error)

	// Refresh drops the cached ledger and triggers a new frame.
	//
	// example:
	//  settings, _ := sdk.Refresh(ctx)
	//  fmt.Println(settings.LastReset)
	Refresh(ctx context.Context) (dashboard.Settings, error)

	// Health reports the service health.
	Health(ctx context.Context) (Health, error)
}

type flauditSDK struct {
	dashboardURL string
	client       *http.Client
}

type Config struct {
	DashboardURL    string
	TLSVerification bool
	Timeout         time.Duration
}

func NewSDK(cfg Config) SDK {
	return &flauditSDK{
		dashboardURL: cfg.DashboardURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *flauditSDK) Frame(ctx context.Context) (Frame, error) {
	var f Frame
	if err := sdk.do(ctx, http.MethodGet, frameEndpoint, nil, http.StatusOK, &f); err != nil {
		return Frame{}, err
	}

	return f, nil
}

func (sdk *flauditSDK) Settings(ctx context.Context) (dashboard.Settings, error) {
	var s dashboard.Settings
	if err := sdk.do(ctx, http.MethodGet, settingsEndpoint, nil, http.StatusOK, &s); err != nil {
		return dashboard.Settings{}, err
	}

	return s, nil
}

func (sdk *flauditSDK) UpdateSettings(ctx context.Context, patch dashboard.SettingsPatch) (dashboard.Settings, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return dashboard.Settings{}, err
	}

	var s dashboard.Settings
	if err := sdk.do(ctx, http.MethodPatch, settingsEndpoint, data, http.StatusOK, &s); err != nil {
		return dashboard.Settings{}, err
	}

	return s, nil
}

func (sdk *flauditSDK) Refresh(ctx context.Context) (dashboard.Settings, error) {
	var s dashboard.Settings
	if err := sdk.do(ctx, http.MethodPost, refreshEndpoint, nil, http.StatusAccepted, &s); err != nil {
		return dashboard.Settings{}, err
	}

	return s, nil
}

func (sdk *flauditSDK) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := sdk.do(ctx, http.MethodGet, healthEndpoint, nil, http.StatusOK, &h); err != nil {
		return Health{}, err
	}

	return h, nil
}

func (sdk *flauditSDK) do(ctx context.Context, method, endpoint string, data []byte, expectedRespCode int, out any) error {
	body, err := sdk.processRequest(ctx, method, sdk.dashboardURL+endpoint, data, expectedRespCode)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}

func (sdk *flauditSDK) processRequest(ctx context.Context, method, reqURL string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return []byte{}, fmt.Errorf("unexpected response code: %d: %s", resp.StatusCode, apiErr.Error)
		}

		return []byte{}, fmt.Errorf("unexpected response code: %d", resp.StatusCode)
	}

	return body, nil
}
