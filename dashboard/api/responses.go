package api

import (
	"net/http"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/supermq"
)

var (
	_ supermq.Response = (*frameResponse)(nil)
	_ supermq.Response = (*settingsResponse)(nil)
)

type frameResponse struct {
	dashboard.Frame
}

func (f frameResponse) Code() int {
	return http.StatusOK
}

func (f frameResponse) Headers() map[string]string {
	return map[string]string{}
}

func (f frameResponse) Empty() bool {
	return false
}

type settingsResponse struct {
	dashboard.Settings
	refreshed bool
}

func (s settingsResponse) Code() int {
	if s.refreshed {
		return http.StatusAccepted
	}

	return http.StatusOK
}

func (s settingsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (s settingsResponse) Empty() bool {
	return false
}
