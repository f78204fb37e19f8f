package fd001

import (
	"fmt"
	"time"

	"github.com/terralab/frp/pkg"
	"github.com/terralab/frp/pkg/portal"
)

/* ALERT TYPES ( Alert.AltType ) */
const ALERT_TEMP_HIGH = "temperature_high"
const ALERT_TEMP_LOW = "temperature_low"
const ALERT_HUMID_HIGH = "humidity_high"
const ALERT_PRESS_HIGH = "pressure_high"
const ALERT_BATTERY_LOW = "battery_low"
const ALERT_SIGNAL_WEAK = "signal_weak"
const ALERT_DEVICE_INACTIVE = "device_inactive"
const ALERT_DEVICE_LOST = "device_lost"

/* ALERT SEVERITIES ( Alert.AltSeverity ) */
const SEVERITY_INFO = "info"
const SEVERITY_WARNING = "warning"
const SEVERITY_CRITICAL = "critical"

/*
ALERT - ONE ROW PER THRESHOLD CROSSING

A SECOND READING CROSSING THE SAME BOUND WHILE THE FIRST ALERT IS STILL
UNRESOLVED DOES NOT CREATE ANOTHER ROW
*/
type Alert struct {
	AltID int64 `gorm:"unique; primaryKey" json:"alt_id"`

	AltDevID int64  `gorm:"not null; index" json:"alt_dev_id"`
	AltSmpID int64  `json:"alt_smp_id"`
	AltType  string `gorm:"not null; varchar(20)" json:"alt_type"`

	AltSeverity string `gorm:"not null; varchar(10)" json:"alt_severity"`
	AltMsg      string `gorm:"varchar(512)" json:"alt_msg"`

	AltTime         int64 `gorm:"not null" json:"alt_time"`
	AltResolved     bool  `gorm:"default:false" json:"alt_resolved"`
	AltResolvedTime int64 `json:"alt_resolved_time"`
}

func WriteAlert(alt *Alert) (err error) {
	alt.AltID = 0
	res := pkg.FRP.DB.Create(alt)
	return res.Error
}

func GetAlerts(devID int64, activeOnly bool) (alts []Alert, err error) {
	qry := pkg.FRP.DB.Where("alt_dev_id = ?", devID)
	if activeOnly {
		qry = qry.Where("alt_resolved = ?", false)
	}
	res := qry.Order("alt_time DESC").Find(&alts)
	err = res.Error
	return
}

func ActiveAlertExists(devID int64, altType string) (exists bool) {
	var count int64
	pkg.FRP.DB.Model(&Alert{}).
		Where("alt_dev_id = ? AND alt_type = ? AND alt_resolved = ?", devID, altType, false).
		Count(&count)
	return count > 0
}

func ResolveAlert(altID int64) (err error) {
	res := pkg.FRP.DB.Model(&Alert{}).
		Where("alt_id = ?", altID).
		Updates(map[string]interface{}{
			"alt_resolved":      true,
			"alt_resolved_time": time.Now().UTC().UnixMilli(),
		})
	return res.Error
}

/*
RAISE AN ALERT FOR A DEVICE UNLESS AN UNRESOLVED ALERT OF THE SAME TYPE
ALREADY EXISTS; A PORTAL NOTIFICATION IS CREATED ALONGSIDE EACH NEW ROW
*/
func (device *Device) RaiseAlert(smpID int64, altType, severity, msg string) (alt Alert, raised bool) {

	if ActiveAlertExists(device.FRPDevID, altType) {
		return
	}

	alt = Alert{
		AltDevID:    device.FRPDevID,
		AltSmpID:    smpID,
		AltType:     altType,
		AltSeverity: severity,
		AltMsg:      msg,
		AltTime:     time.Now().UTC().UnixMilli(),
	}
	if err := WriteAlert(&alt); err != nil {
		pkg.LogErr(err)
		return
	}
	raised = true

	portal.CreateNotification(
		portal.NOTIFY_SCOPE_ADMIN,
		fmt.Sprintf("Device %s: %s", device.FRPDevSerial, altType),
		msg,
	)

	return
}

/*
THRESHOLD CHECKS FOR ONE PERSISTED SAMPLE

metrics HOLDS ONLY THE FIELDS THE DEVICE ACTUALLY REPORTED, SO AN ABSENT
READING NEVER TRIPS A BOUND
*/
func (device *Device) EvaluateSample(smp Sample, metrics map[string]float32) (alts []Alert) {

	dty := device.DTY

	check := func(altType, severity, msg string, raisedFor bool) {
		if !raisedFor {
			return
		}
		if alt, raised := device.RaiseAlert(smp.SmpID, altType, severity, msg); raised {
			alts = append(alts, alt)
		}
	}

	if temp, ok := metrics[METRIC_TEMPERATURE]; ok && dty.HasTemperature {
		check(ALERT_TEMP_HIGH, SEVERITY_CRITICAL,
			fmt.Sprintf("temperature %.1f exceeds maximum %.1f", temp, dty.TempMax),
			temp > dty.TempMax)
		check(ALERT_TEMP_LOW, SEVERITY_WARNING,
			fmt.Sprintf("temperature %.1f is below minimum %.1f", temp, dty.TempMin),
			temp < dty.TempMin)
	}

	if humid, ok := metrics[METRIC_HUMIDITY]; ok && dty.HasHumidity {
		check(ALERT_HUMID_HIGH, SEVERITY_WARNING,
			fmt.Sprintf("humidity %.1f exceeds maximum %.1f", humid, dty.HumidMax),
			humid > dty.HumidMax)
	}

	if press, ok := metrics[METRIC_PRESSURE]; ok && dty.HasPressure {
		check(ALERT_PRESS_HIGH, SEVERITY_WARNING,
			fmt.Sprintf("pressure %.1f exceeds maximum %.1f", press, dty.PressMax),
			press > dty.PressMax)
	}

	if bat, ok := metrics[METRIC_BATTERY]; ok {
		check(ALERT_BATTERY_LOW, SEVERITY_WARNING,
			fmt.Sprintf("battery %.1f%% is below minimum %.1f%%", bat, dty.BatteryMin),
			bat < dty.BatteryMin)
	}

	if sig, ok := metrics[METRIC_SIGNAL]; ok {
		check(ALERT_SIGNAL_WEAK, SEVERITY_INFO,
			fmt.Sprintf("signal %.1f dBm is below minimum %.1f dBm", sig, dty.SignalMin),
			sig < dty.SignalMin)
	}

	return
}
