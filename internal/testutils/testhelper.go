package testutils

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/fake"
)

type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
}

// NewTestHelper creates a test helper with a debug-level logger.
func NewTestHelper(t *testing.T) *TestHelper {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel) // enable debug logs to track execution flow
	return &TestHelper{
		T:      t,
		Logger: logger,
	}
}

// NewAdapter creates a fake adapter sharing the helper's logger.
func (h *TestHelper) NewAdapter() *fake.Adapter {
	return fake.NewAdapter(h.Logger)
}

func CreateMockPeripheral() *PeripheralBuilder {
	return NewPeripheralBuilder()
}

func CreateMockPeripheralFromJSON(jsonStrFmt string, args ...interface{}) *PeripheralBuilder {
	return NewPeripheralBuilder().FromJSON(jsonStrFmt, args...)
}
