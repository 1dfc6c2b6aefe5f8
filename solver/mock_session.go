package solver

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSession is a testify mock of Session, grounded in the pack's
// mock.Mock test doubles, used by prover package tests to script solver
// responses without a real subprocess.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Write(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func (m *MockSession) CheckSat(ctx context.Context) (SatResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(SatResult), args.Error(1)
}

func (m *MockSession) Push(ctx context.Context, n int) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockSession) Pop(ctx context.Context, n int) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockSession) Get(ctx context.Context, expr string) (string, error) {
	args := m.Called(ctx, expr)
	return args.String(0), args.Error(1)
}

func (m *MockSession) GetList(ctx context.Context, exprs []string) ([]string, error) {
	args := m.Called(ctx, exprs)
	vals, _ := args.Get(0).([]string)
	return vals, args.Error(1)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}
