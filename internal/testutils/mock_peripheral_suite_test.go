package testutils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DefaultPeripheralSuite struct {
	MockPeripheralSuite
}

func (s *DefaultPeripheralSuite) TestDefaultProfile() {
	s.Assert().Equal(DefaultPeripheralAddress, s.Peripheral.Address())
	s.Assert().True(s.FakeCharacteristic("1809", "2a21").SecureRead())
	s.Assert().True(s.FakeCharacteristic("180f", "2a19").PendingReadResponse())
	s.Assert().Len(s.Adapter.Peripherals(), 1)
}

func TestDefaultPeripheralSuite(t *testing.T) {
	suite.Run(t, new(DefaultPeripheralSuite))
}

type CustomPeripheralSuite struct {
	MockPeripheralSuite
}

func (s *CustomPeripheralSuite) SetupTest() {
	s.WithPeripheral().
		WithAddress("01:02:03:04:05:06").
		WithService("180D").
		WithCharacteristic("2A37", "read,notify", []byte{80})

	s.MockPeripheralSuite.SetupTest() // Call parent last to apply configuration
}

func (s *CustomPeripheralSuite) TestCustomProfile() {
	// GOAL: Verify WithPeripheral replaces the default profile
	//
	// TEST SCENARIO: Configure heart rate profile → only it is simulated

	s.Assert().Equal("01:02:03:04:05:06", s.Peripheral.Address())
	_, err := s.Peripheral.Service("1809")
	s.Assert().Error(err, "default profile MUST NOT be applied")
	s.Assert().True(s.FakeCharacteristic("180d", "2a37").PendingReadResponse())
}

func TestCustomPeripheralSuite(t *testing.T) {
	suite.Run(t, new(CustomPeripheralSuite))
}
