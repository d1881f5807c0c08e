package mocks

import (
	"context"
	"testing"

	"github.com/absmach/flaudit/pkg/ledger"
	"github.com/stretchr/testify/mock"
)

var _ ledger.Loader = (*Loader)(nil)

// Loader is a mock implementation of the ledger.Loader interface
type Loader struct {
	mock.Mock
}

// NewLoader creates a mock loader whose expectations are asserted on cleanup
func NewLoader(t *testing.T) *Loader {
	m := &Loader{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Load returns the ledger records
func (m *Loader) Load(ctx context.Context) []ledger.RoundRecord {
	args := m.Called(ctx)
	return args.Get(0).([]ledger.RoundRecord)
}
