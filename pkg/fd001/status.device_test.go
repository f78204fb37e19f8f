package fd001

import (
	"testing"
	"time"

	"github.com/terralab/frp/pkg"
)

func registerTestDevice(t *testing.T, serial string) Device {
	t.Helper()

	device, err := RegisterDevice("127.0.0.1", "test", pkg.FRPDev{FRPDevSerial: serial})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}
	return device
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{
		STATUS_ACTIVE, STATUS_MAINTENANCE, STATUS_INACTIVE, STATUS_LOST, STATUS_CALIBRATION,
	} {
		if !ValidStatus(status) {
			t.Errorf("%q should be a valid status", status)
		}
	}
	for _, status := range []string{"", "ACTIVE", "retired", "unknown"} {
		if ValidStatus(status) {
			t.Errorf("%q should not be a valid status", status)
		}
	}
}

func TestValidateSerialNumber(t *testing.T) {
	if err := ValidateSerialNumber("WX-100"); err != nil {
		t.Errorf("WX-100 should be a valid serial: %v", err)
	}
	for _, serial := range []string{"", "WX 100", "WAYTOOLONGSERIAL"} {
		if err := ValidateSerialNumber(serial); err == nil {
			t.Errorf("%q should not be a valid serial", serial)
		}
	}
}

func TestRegisterDeviceRejectsDuplicates(t *testing.T) {
	setupTestDB(t)

	registerTestDevice(t, "WX-600")

	/* SERIALS ARE CASE-INSENSITIVE; wx-600 IS THE SAME DEVICE */
	if _, err := RegisterDevice("127.0.0.1", "test", pkg.FRPDev{FRPDevSerial: "wx-600"}); err == nil {
		t.Error("duplicate registration should fail")
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	setupTestDB(t)

	device := registerTestDevice(t, "WX-610")
	if err := device.SetStatus("retired", STATUS_SOURCE_ADMIN); err == nil {
		t.Error("unknown status should be rejected")
	}
	if err := device.SetStatus(STATUS_CALIBRATION, STATUS_SOURCE_ADMIN); err != nil {
		t.Errorf("calibration should be accepted: %v", err)
	}

	reg, _ := pkg.GetFRPDevBySerial("WX-610")
	if reg.FRPDevStatus != STATUS_CALIBRATION {
		t.Errorf("expected persisted status %q, got %q", STATUS_CALIBRATION, reg.FRPDevStatus)
	}
	if !reg.FRPDevCalDue {
		t.Error("calibration status should flag the device cal due")
	}
}

func TestWatchdogAgesSilentDevices(t *testing.T) {
	setupTestDB(t)

	now := time.Now().UTC().UnixMilli()

	/* SILENT LONGER THAN THE INACTIVE WINDOW ( DEFAULT 60 MIN ) */
	inactive := registerTestDevice(t, "WX-620")
	inactive.FRPDevStatus = STATUS_ACTIVE
	inactive.FRPDevLastSeen = now - (2 * time.Hour).Milliseconds()
	if err := pkg.UpdateFRPDevState(&inactive.FRPDev); err != nil {
		t.Fatal(err)
	}
	DevicesMapWrite(inactive)

	/* SILENT LONGER THAN THE LOST WINDOW ( DEFAULT 24 H ) */
	lost := registerTestDevice(t, "WX-630")
	lost.FRPDevStatus = STATUS_ACTIVE
	lost.FRPDevLastSeen = now - (25 * time.Hour).Milliseconds()
	if err := pkg.UpdateFRPDevState(&lost.FRPDev); err != nil {
		t.Fatal(err)
	}
	DevicesMapWrite(lost)

	/* STILL IN CONTACT */
	fresh := registerTestDevice(t, "WX-640")
	fresh.FRPDevStatus = STATUS_ACTIVE
	fresh.FRPDevLastSeen = now - time.Minute.Milliseconds()
	DevicesMapWrite(fresh)

	aged := WatchdogSweep(now)
	if aged != 2 {
		t.Errorf("expected 2 devices aged, got %d", aged)
	}

	reg, _ := pkg.GetFRPDevBySerial("WX-620")
	if reg.FRPDevStatus != STATUS_INACTIVE {
		t.Errorf("expected %q, got %q", STATUS_INACTIVE, reg.FRPDevStatus)
	}

	reg, _ = pkg.GetFRPDevBySerial("WX-630")
	if reg.FRPDevStatus != STATUS_LOST {
		t.Errorf("expected %q, got %q", STATUS_LOST, reg.FRPDevStatus)
	}

	/* A LOST DEVICE RAISES A device_lost ALERT, ONCE */
	alts, _ := GetAlerts(reg.FRPDevID, true)
	if len(alts) != 1 || alts[0].AltType != ALERT_DEVICE_LOST {
		t.Fatalf("expected a single %s alert, got %+v", ALERT_DEVICE_LOST, alts)
	}

	WatchdogSweep(now)
	alts, _ = GetAlerts(reg.FRPDevID, false)
	if len(alts) != 1 {
		t.Errorf("repeat sweep must not duplicate the alert; got %d", len(alts))
	}

	reg, _ = pkg.GetFRPDevBySerial("WX-640")
	if reg.FRPDevStatus != STATUS_ACTIVE {
		t.Errorf("fresh device should stay %q, got %q", STATUS_ACTIVE, reg.FRPDevStatus)
	}
}

func TestDevicePingsMapRecordsAnsweredPings(t *testing.T) {
	setupTestDB(t)

	device := registerTestDevice(t, "WX-660")

	if _, ok := DevicePingsMapRead("WX-660"); ok {
		t.Fatal("no ping should be recorded before the device answers one")
	}

	before := time.Now().UTC().UnixMilli()
	device.MQTTPublication_DeviceClient_SIGDevicePing()

	ping, ok := DevicePingsMapRead("WX-660")
	if !ok {
		t.Fatal("answered ping was not recorded")
	}
	if !ping.OK || ping.Time < before {
		t.Errorf("expected a fresh OK ping, got %+v", ping)
	}
}

func TestWatchdogLeavesForcedStatesAlone(t *testing.T) {
	setupTestDB(t)

	now := time.Now().UTC().UnixMilli()

	device := registerTestDevice(t, "WX-650")
	device.FRPDevStatus = STATUS_MAINTENANCE
	device.FRPDevLastSeen = now - (48 * time.Hour).Milliseconds()
	if err := pkg.UpdateFRPDevState(&device.FRPDev); err != nil {
		t.Fatal(err)
	}
	DevicesMapWrite(device)

	if aged := WatchdogSweep(now); aged != 0 {
		t.Errorf("expected 0 devices aged, got %d", aged)
	}

	reg, _ := pkg.GetFRPDevBySerial("WX-650")
	if reg.FRPDevStatus != STATUS_MAINTENANCE {
		t.Errorf("maintenance device should not be aged; got %q", reg.FRPDevStatus)
	}
}
