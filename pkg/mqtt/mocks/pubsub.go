package mocks

import (
	"context"
	"testing"

	"github.com/absmach/flaudit/pkg/mqtt"
	"github.com/stretchr/testify/mock"
)

var _ mqtt.PubSub = (*PubSub)(nil)

// PubSub is a mock implementation of the mqtt.PubSub interface
type PubSub struct {
	mock.Mock
}

// NewPubSub creates a mock pubsub whose expectations are asserted on cleanup
func NewPubSub(t *testing.T) *PubSub {
	m := &PubSub{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *PubSub) Publish(ctx context.Context, topic string, msg any) error {
	args := m.Called(ctx, topic, msg)
	return args.Error(0)
}

func (m *PubSub) Subscribe(ctx context.Context, topic string, handler mqtt.Handler) error {
	args := m.Called(ctx, topic, handler)
	return args.Error(0)
}

func (m *PubSub) Unsubscribe(ctx context.Context, topic string) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *PubSub) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
