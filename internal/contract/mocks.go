package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExecutor is a mock implementation of Executor for testing.
type MockExecutor struct {
	mock.Mock
}

var _ Executor = &MockExecutor{} // Compile-time check

// Execute mocks the Execute method.
// The variadic args are flattened so expectations read like the command line.
func (m *MockExecutor) Execute(ctx context.Context, dir string, subcommand string, args ...string) (string, error) {
	callArgs := []any{ctx, dir, subcommand}
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}
	ret := m.Called(callArgs...)
	return ret.String(0), ret.Error(1)
}

// MockFileSystem is a mock implementation of FileSystem for testing.
type MockFileSystem struct {
	mock.Mock
}

var _ FileSystem = &MockFileSystem{} // Compile-time check

// Exists mocks the Exists method.
func (m *MockFileSystem) Exists(path string) bool {
	return m.Called(path).Bool(0)
}

// ReadFile mocks the ReadFile method.
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	ret := m.Called(path)
	var data []byte
	if v := ret.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, ret.Error(1)
}
