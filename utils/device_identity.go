package utils

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	deviceIDOnce sync.Once
	deviceID     string
)

// DeviceID returns the stable, process-lifetime identifier used as the
// actor id for all operations. It is resolved once: from DEVICE_ID when
// set, otherwise a generated id that stays fixed for this process.
func DeviceID() string {
	deviceIDOnce.Do(func() {
		if id := os.Getenv("DEVICE_ID"); id != "" {
			deviceID = id
			return
		}
		deviceID = fmt.Sprintf("device:%s", uuid.NewString())
	})
	return deviceID
}

// SetDeviceIDForTest overrides the resolved identity. Tests use this
// instead of racing the sync.Once.
func SetDeviceIDForTest(id string) {
	deviceIDOnce.Do(func() {})
	deviceID = id
}
