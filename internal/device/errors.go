package device

import (
	"errors"
	"fmt"
)

// ErrDeviceUnreachable matches every *DeviceError via errors.Is.
var ErrDeviceUnreachable = errors.New("fan controller unreachable")

// DeviceError reports a command the controller did not accept, either
// because the request failed in transit or because it answered non-2xx.
type DeviceError struct {
	Address    string
	Command    Command
	StatusCode int
	Err        error
}

func (e *DeviceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fan controller at %s rejected %s: status %d", e.Address, e.Command, e.StatusCode)
	}
	return fmt.Sprintf("fan controller at %s unreachable sending %s: %v", e.Address, e.Command, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func (e *DeviceError) Is(target error) bool { return target == ErrDeviceUnreachable }

// Advisory is the message shown to the user in the panel's error banner.
func (e *DeviceError) Advisory() string {
	return Advisory(e.Address)
}

// Advisory builds the user-facing message for an unreachable controller.
func Advisory(address string) string {
	return fmt.Sprintf("Cannot connect to fan controller at %s. Make sure the device is powered on and connected to your network.", address)
}
