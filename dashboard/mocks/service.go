package mocks

import (
	"context"
	"testing"

	"github.com/absmach/flaudit/dashboard"
	"github.com/stretchr/testify/mock"
)

var _ dashboard.Service = (*Service)(nil)

// Service is a mock implementation of the dashboard.Service interface
type Service struct {
	mock.Mock
}

// NewService creates a mock service whose expectations are asserted on cleanup
func NewService(t *testing.T) *Service {
	m := &Service{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Frame returns the current dashboard frame
func (m *Service) Frame(ctx context.Context) (dashboard.Frame, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.Frame), args.Error(1)
}

// Settings returns the current settings
func (m *Service) Settings(ctx context.Context) (dashboard.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.Settings), args.Error(1)
}

// UpdateSettings applies a settings patch
func (m *Service) UpdateSettings(ctx context.Context, patch dashboard.SettingsPatch) (dashboard.Settings, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(dashboard.Settings), args.Error(1)
}

// Refresh forces a new frame
func (m *Service) Refresh(ctx context.Context) (dashboard.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.Settings), args.Error(1)
}

var _ dashboard.Display = (*Display)(nil)

// Display is a mock implementation of the dashboard.Display interface
type Display struct {
	mock.Mock
}

// NewDisplay creates a mock display whose expectations are asserted on cleanup
func NewDisplay(t *testing.T) *Display {
	m := &Display{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Display renders a frame
func (m *Display) Display(ctx context.Context, frame dashboard.Frame) error {
	args := m.Called(ctx, frame)
	return args.Error(0)
}
