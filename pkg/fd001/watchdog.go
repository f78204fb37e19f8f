package fd001

import (
	"context"
	"time"

	"github.com/terralab/frp/pkg"
)

/*
	DEVICE WATCHDOG

AGES SILENT DEVICES TO inactive, THEN lost, ON A FIXED PERIOD.
RUNS FOR THE LIFE OF THE SERVER; CANCEL THE CONTEXT TO STOP IT
*/
func RunWatchdog(ctx context.Context) {

	tick := time.NewTicker(pkg.WATCHDOG_PERIOD)
	defer tick.Stop()

	pkg.LogChk("device watchdog started")

	for {
		select {

		case <-ctx.Done():
			pkg.LogChk("device watchdog stopped")
			return

		case <-tick.C:
			WatchdogSweep(time.Now().UTC().UnixMilli())
		}
	}
}

/* ONE PASS OVER EVERY MAPPED DEVICE */
func WatchdogSweep(now int64) (aged int) {

	for _, device := range DevicesMapCopy() {

		/* FORCED STATES ARE NOT THE WATCHDOG'S TO AGE */
		if device.FRPDevStatus == STATUS_MAINTENANCE || device.FRPDevStatus == STATUS_CALIBRATION {
			continue
		}

		changed, err := device.UpdateStateFromSilence(now)
		if err != nil {
			pkg.LogErr(err)
			continue
		}
		if changed {
			aged++
		}
	}
	return
}
