// Package device defines the client-side view of a GATT peripheral used by
// conformance tests: connections, services, characteristics and the errors
// they report.
//
// Implementations live in subpackages; internal/device/simulated backs the
// interfaces with the in-process fake peripheral from internal/fake.
package device
