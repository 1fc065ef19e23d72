// Package env provides facts about the host.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so the raw ID never leaves the host.
const AppID = "ecu.go"

// MachineID returns an ID unique to the host, falling back to the
// hostname when the machine ID can't be read.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:12]
	}
	glog.Warningf("machine id: %v", err)
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "ecu"
}
