package engine

import "fmt"

// State is a step of the session lifecycle.
//
//	Uninitialized -> AdapterAcquired -> DeviceAcquired -> SurfaceConfigured -> Ready
//	Ready -> Resizing -> SurfaceConfigured -> Ready
//	any -> Terminated
type State int

const (
	StateUninitialized State = iota
	StateAdapterAcquired
	StateDeviceAcquired
	StateSurfaceConfigured
	StateReady
	StateResizing
	StateTerminated
)

var stateNames = [...]string{
	StateUninitialized:     "Uninitialized",
	StateAdapterAcquired:   "AdapterAcquired",
	StateDeviceAcquired:    "DeviceAcquired",
	StateSurfaceConfigured: "SurfaceConfigured",
	StateReady:             "Ready",
	StateResizing:          "Resizing",
	StateTerminated:        "Terminated",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// hasDevice reports whether the device has been acquired and not yet released.
func (s State) hasDevice() bool {
	return s >= StateDeviceAcquired && s != StateTerminated
}
