package modelinfo

import "github.com/stretchr/testify/mock"

// MockAccessor is a testify mock of Accessor, grounded on the pack's
// mock.Mock-based test doubles, for driver tests that need to assert on
// exactly which frame/cell expressions the prover requested.
type MockAccessor struct {
	mock.Mock
}

func (m *MockAccessor) Module(name string) (*ModuleInfo, error) {
	args := m.Called(name)
	mi, _ := args.Get(0).(*ModuleInfo)
	return mi, args.Error(1)
}

func (m *MockAccessor) WellFormed(module, frameExpr string) string {
	return m.Called(module, frameExpr).String(0)
}

func (m *MockAccessor) Hier(module, frameExpr string) string {
	return m.Called(module, frameExpr).String(0)
}

func (m *MockAccessor) Initial(module, frameExpr string) string {
	return m.Called(module, frameExpr).String(0)
}

func (m *MockAccessor) IsInitialTag(module, frameExpr string) string {
	return m.Called(module, frameExpr).String(0)
}

func (m *MockAccessor) Transition(module, prevExpr, nextExpr string) string {
	return m.Called(module, prevExpr, nextExpr).String(0)
}

func (m *MockAccessor) AssertAll(module, frameExpr string) string {
	return m.Called(module, frameExpr).String(0)
}

func (m *MockAccessor) CellFrameExpr(module, parentFrameExpr, cellName string) string {
	return m.Called(module, parentFrameExpr, cellName).String(0)
}

func (m *MockAccessor) NetExpr(module, frameExpr string, path []string) (string, error) {
	args := m.Called(module, frameExpr, path)
	return args.String(0), args.Error(1)
}

func (m *MockAccessor) MemExpr(module, frameExpr string, memPath []string, port int, addrExpr string) (string, error) {
	args := m.Called(module, frameExpr, memPath, port, addrExpr)
	return args.String(0), args.Error(1)
}
