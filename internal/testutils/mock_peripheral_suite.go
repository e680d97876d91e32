package testutils

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/fake"
	"github.com/stretchr/testify/suite"
)

// MockPeripheralSuite provides a testify suite with a fresh fake adapter and
// one simulated peripheral per test.
//
// Basic usage (default Health Thermometer peripheral):
//
//	type SimpleSuite struct {
//	    testutils.MockPeripheralSuite
//	}
//
//	func TestSimpleSuite(t *testing.T) {
//	    suite.Run(t, new(SimpleSuite))
//	}
//
// Custom profile usage:
//
//	func (s *ReadSuite) SetupTest() {
//	    s.WithPeripheral().
//	        WithService("180F").
//	        WithCharacteristic("2A19", "read,notify", []byte{50})
//
//	    s.MockPeripheralSuite.SetupTest() // Call parent last to apply configuration
//	}
type MockPeripheralSuite struct {
	suite.Suite

	Helper *TestHelper
	Logger *logrus.Logger

	TestTimeout time.Duration

	Adapter           *fake.Adapter
	Peripheral        *fake.Peripheral
	PeripheralBuilder *PeripheralBuilder
}

// SetupSuite is called once before all tests in the suite.
func (s *MockPeripheralSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.TestTimeout = 5 * time.Second
	s.Logger.Debug("Suite setup completed")
}

// SetupTest builds the configured peripheral on a new adapter.
func (s *MockPeripheralSuite) SetupTest() {
	if s.PeripheralBuilder == nil {
		s.PeripheralBuilder = createDefaultPeripheralBuilder()
	}

	s.Adapter = fake.NewAdapter(s.Logger)
	p, err := s.PeripheralBuilder.Build(s.Adapter)
	s.Require().NoError(err, "simulated peripheral MUST build")
	s.Peripheral = p

	s.Logger.Debug("Test setup completed - ready for execution")
}

// TearDownTest removes the peripheral and resets the builder.
func (s *MockPeripheralSuite) TearDownTest() {
	if s.Adapter != nil && s.Peripheral != nil {
		s.Adapter.RemovePeripheral(s.Peripheral.Address())
	}
	s.Peripheral = nil
	s.PeripheralBuilder = nil
}

// WithPeripheral returns the peripheral builder for fluent configuration.
// Call it before SetupTest of the embedded suite.
func (s *MockPeripheralSuite) WithPeripheral() *PeripheralBuilder {
	if s.PeripheralBuilder == nil {
		s.PeripheralBuilder = NewPeripheralBuilder()
	}
	return s.PeripheralBuilder
}

// FakeCharacteristic returns the simulated characteristic on the current peripheral.
func (s *MockPeripheralSuite) FakeCharacteristic(service, uuid string) *fake.Characteristic {
	char, err := s.Peripheral.Characteristic(service, uuid)
	s.Require().NoError(err, "simulated characteristic %s/%s MUST exist", service, uuid)
	return char
}

// createDefaultPeripheralBuilder creates a Health Thermometer peripheral with a
// secure Measurement Interval characteristic and a plain Battery Level.
func createDefaultPeripheralBuilder() *PeripheralBuilder {
	return NewPeripheralBuilder().
		FromJSON(`
		{
			"address": "%s",
			"name": "Thermometer",
			"pin": "123456",
			"services": [
				{
					"uuid": "1809",
					"characteristics": [
						{ "uuid": "2A21", "properties": "read,write,indicate", "secure": true }
					]
				},
				{
					"uuid": "180F",
					"characteristics": [
						{ "uuid": "2A19", "properties": "read,notify", "value": [50] }
					]
				}
			]
		}`, DefaultPeripheralAddress)
}
