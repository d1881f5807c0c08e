package mqtt_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/absmach/flaudit/pkg/mqtt"
	"github.com/stretchr/testify/assert"
)

func TestNewPubSub(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		desc string
		cfg  mqtt.Config
		err  error
	}{
		{
			desc: "empty client id",
			cfg:  mqtt.Config{URL: "tcp://127.0.0.1:1", Timeout: time.Second},
			err:  mqtt.ErrEmptyID,
		},
		{
			desc: "unreachable broker",
			cfg:  mqtt.Config{URL: "tcp://127.0.0.1:1", ClientID: "flaudit-test", BaseTopic: "flaudit", Timeout: 2 * time.Second},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			ps, err := mqtt.NewPubSub(tc.cfg, logger)
			assert.Nil(t, ps)
			assert.Error(t, err)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}
