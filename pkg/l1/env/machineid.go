package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const (
	appID        = "strip.go"
	fallbackID   = "strip"
	machineIDLen = 12
)

// MachineID derives a stable strip ID from the machine ID. The raw machine
// ID is never exposed; it is hashed with the application name.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable, using %q: %v", fallbackID, err)
		return fallbackID
	}
	if len(id) > machineIDLen {
		id = id[:machineIDLen]
	}
	return id
}
