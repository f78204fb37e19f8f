package fd001

import (
	"context"
	"fmt"
	"time"

	"github.com/terralab/frp/pkg"
)

/* STATUS CHANGE SOURCES ( StatusChange.Source ) */
const STATUS_SOURCE_INGEST = "ingest"
const STATUS_SOURCE_ADMIN = "admin"
const STATUS_SOURCE_WATCHDOG = "watchdog"

/*
STATUS CHANGE - BROADCAST ON THE STATUS SIGNAL TOPIC AND CACHED AS THE
DEVICE'S LIVE STATE
*/
type StatusChange struct {
	Serial   string  `json:"serial"`
	Status   string  `json:"status"`
	Source   string  `json:"source"`
	Battery  float32 `json:"battery"`
	Signal   float32 `json:"signal"`
	LastSeen int64   `json:"last_seen"`
	Time     int64   `json:"time"`
}

func (device *Device) StatusChange(source string) StatusChange {
	return StatusChange{
		Serial:   device.FRPDevSerial,
		Status:   device.FRPDevStatus,
		Source:   source,
		Battery:  device.FRPDevBattery,
		Signal:   device.FRPDevSignal,
		LastSeen: device.FRPDevLastSeen,
		Time:     time.Now().UTC().UnixMilli(),
	}
}

/*
PERSIST, MAP, CACHE AND BROADCAST THIS DEVICE'S CURRENT OPERATIONAL STATE

ALL STATE WRITES GO THROUGH HERE SO THE REGISTRY ROW, THE DEVICES MAP, THE
LIVE STATE CACHE AND SUBSCRIBED USER CLIENTS NEVER DISAGREE FOR LONG
*/
func (device *Device) CommitState(source string) (err error) {

	if err = pkg.UpdateFRPDevState(&device.FRPDev); err != nil {
		return pkg.LogErr(err)
	}
	DevicesMapWrite(*device)

	sta := device.StatusChange(source)
	pkg.CacheSetDeviceState(context.Background(), device.FRPDevSerial, pkg.MakeMQTTMessage(sta))
	device.MQTTPublication_DeviceClient_SIGStatus(sta)
	return
}

/* FORCE A STATUS; USED BY ADMINISTRATORS AND BY COMMANDS ON THE STATUS CMD TOPIC */
func (device *Device) SetStatus(status, source string) (err error) {

	if !ValidStatus(status) {
		return fmt.Errorf(
			"invalid status %q; must be one of: %s, %s, %s, %s, %s",
			status, STATUS_ACTIVE, STATUS_MAINTENANCE, STATUS_INACTIVE, STATUS_LOST, STATUS_CALIBRATION,
		)
	}

	device.FRPDevStatus = status
	device.FRPDevCalDue = status == STATUS_CALIBRATION
	return device.CommitState(source)
}

/*
RECOMPUTE STATUS AFTER A READING

A REPORTING DEVICE IS NO LONGER INACTIVE OR LOST. CALIBRATION HOLDS UNTIL
AN ADMINISTRATOR CLEARS IT; A LOW BATTERY PARKS THE DEVICE IN MAINTENANCE.
A REGISTRY ZERO MEANS THE BATTERY HAS NEVER BEEN REPORTED; A REPORTED
ZERO IS A DEAD BATTERY
*/
func (device *Device) UpdateStateFromSample(smp Sample, metrics map[string]float32) (err error) {

	device.FRPDevLastSeen = smp.SmpTime
	bat, batReported := metrics[METRIC_BATTERY]
	if batReported {
		device.FRPDevBattery = bat
	}
	if sig, ok := metrics[METRIC_SIGNAL]; ok {
		device.FRPDevSignal = sig
	}

	switch {
	case device.FRPDevCalDue:
		device.FRPDevStatus = STATUS_CALIBRATION

	case device.FRPDevBattery < device.DTY.BatteryMin && (batReported || device.FRPDevBattery > 0):
		device.FRPDevStatus = STATUS_MAINTENANCE

	default:
		device.FRPDevStatus = STATUS_ACTIVE
	}

	return device.CommitState(STATUS_SOURCE_INGEST)
}

/*
AGE A SILENT DEVICE; CALLED BY THE WATCHDOG

inactive WHEN NO CONTACT WITHIN DEVICE_INACTIVE_AFTER
lost     WHEN NO CONTACT WITHIN DEVICE_LOST_AFTER
*/
func (device *Device) UpdateStateFromSilence(now int64) (changed bool, err error) {

	if device.FRPDevLastSeen == 0 {
		return
	}
	silent := now - device.FRPDevLastSeen

	status := device.FRPDevStatus
	switch {
	case silent > pkg.DEVICE_LOST_AFTER.Milliseconds():
		status = STATUS_LOST

	case silent > pkg.DEVICE_INACTIVE_AFTER.Milliseconds():
		if device.FRPDevStatus != STATUS_LOST {
			status = STATUS_INACTIVE
		}
	}

	if status == device.FRPDevStatus {
		return
	}

	device.FRPDevStatus = status
	if err = device.CommitState(STATUS_SOURCE_WATCHDOG); err != nil {
		return
	}
	changed = true

	if status == STATUS_LOST {
		if alt, raised := device.RaiseAlert(0, ALERT_DEVICE_LOST, SEVERITY_CRITICAL,
			fmt.Sprintf("no contact from device %s since %d", device.FRPDevSerial, device.FRPDevLastSeen),
		); raised {
			device.MQTTPublication_DeviceClient_SIGAlert(alt)
		}
	}
	return
}
