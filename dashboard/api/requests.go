package api

import (
	"github.com/absmach/flaudit/dashboard"
	pkgerrors "github.com/absmach/flaudit/pkg/errors"
)

type frameReq struct{}

func (r frameReq) validate() error {
	return nil
}

type updateSettingsReq struct {
	dashboard.SettingsPatch `json:",inline"`
}

func (r updateSettingsReq) validate() error {
	if r.AutoRefresh == nil && r.Window == nil && r.FocusRound == nil {
		return pkgerrors.ErrMalformedBody
	}

	return r.SettingsPatch.Validate()
}
