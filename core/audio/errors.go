package audio

import "errors"

// Device acquisition failures. These are fatal to a session: the engine will
// not retry them automatically, the caller has to resolve the condition and
// restart explicitly.
var (
	// ErrDeviceDenied reports that microphone access was refused by the
	// platform permission layer.
	ErrDeviceDenied = errors.New("audio device access denied")
	// ErrDeviceNotFound reports that no usable input device exists.
	ErrDeviceNotFound = errors.New("audio device not found")
	// ErrDeviceBusy reports that the device is held by another application.
	ErrDeviceBusy = errors.New("audio device busy")
)

// IsDeviceError reports whether err belongs to the device acquisition
// failure class.
func IsDeviceError(err error) bool {
	return errors.Is(err, ErrDeviceDenied) ||
		errors.Is(err, ErrDeviceNotFound) ||
		errors.Is(err, ErrDeviceBusy)
}
