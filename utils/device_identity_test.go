package utils

import (
	"strings"
	"testing"
)

func TestDeviceIDIsStableForProcessLifetime(t *testing.T) {
	first := DeviceID()
	if first == "" {
		t.Fatal("device id must be non-empty")
	}
	for i := 0; i < 5; i++ {
		if DeviceID() != first {
			t.Fatal("device id changed between calls")
		}
	}
}

func TestSetDeviceIDForTest(t *testing.T) {
	SetDeviceIDForTest("device:test-override")
	if got := DeviceID(); got != "device:test-override" {
		t.Errorf("override not applied, got %q", got)
	}
	if !strings.HasPrefix(DeviceID(), "device:") {
		t.Errorf("unexpected id shape %q", DeviceID())
	}
}
