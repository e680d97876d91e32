// Package fake simulates Bluetooth Low Energy peripherals in-process.
//
// A simulated peripheral owns GATT services and characteristics modelled with
// the go-ble types. Tests script characteristic behaviour through
// Characteristic.SetNextReadResponse and observe it through a client
// connection (see internal/device/simulated).
//
// Secure characteristics require a paired link. The first secure read on an
// unpaired peripheral runs the simulated pairing flow: the PINs configured on
// the pending read response play the role of the PINs a user types into the
// pairing prompt, and pairing succeeds only if one of them equals the
// peripheral PIN.
package fake
