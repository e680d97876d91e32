package simulated

import (
	"context"

	"github.com/srg/bleconform/internal/device"
	"github.com/srg/bleconform/internal/testutils"
)

// SimulatedTestSuite connects a live Connection to the default simulated peripheral.
type SimulatedTestSuite struct {
	testutils.MockPeripheralSuite
	conn *Connection
}

func (s *SimulatedTestSuite) SetupTest() {
	s.MockPeripheralSuite.SetupTest()

	s.conn = NewConnection(s.Adapter, s.Logger)
	err := s.conn.Connect(context.Background(), testutils.DefaultPeripheralAddress, &device.ConnectOptions{
		ConnectTimeout: s.TestTimeout,
	})
	s.Require().NoError(err, "connection to simulated peripheral MUST succeed")
}

func (s *SimulatedTestSuite) TearDownTest() {
	if s.conn != nil && s.conn.IsConnected() {
		_ = s.conn.Disconnect()
	}
	s.MockPeripheralSuite.TearDownTest()
}

func (s *SimulatedTestSuite) characteristic(service, uuid string) device.Characteristic {
	char, err := s.conn.GetCharacteristic(service, uuid)
	s.Require().NoError(err, "characteristic %s/%s MUST be discovered", service, uuid)
	return char
}
