package fd001

import (
	"github.com/terralab/frp/pkg"
)

const DEVICE_TYPE_DEFAULT = "FD-GEN"

/*
DEVICE TYPE

CAPABILITY FLAGS DESCRIBE WHICH SENSOR FIELDS A CLASS OF DEVICE REPORTS;
THRESHOLDS ARE THE ALERT BOUNDS APPLIED TO EVERY DEVICE OF THE TYPE
*/
type DeviceType struct {
	DevTypeID   int64  `gorm:"unique; primaryKey" json:"-"`
	DevTypeCode string `gorm:"not null; uniqueIndex; varchar(10)" json:"dev_type_code"`
	DevTypeDesc string `gorm:"varchar(100)" json:"dev_type_desc"`

	HasTemperature bool `json:"has_temperature"`
	HasHumidity    bool `json:"has_humidity"`
	HasPressure    bool `json:"has_pressure"`
	HasGPS         bool `json:"has_gps"`

	TempMin    float32 `json:"temp_min"`
	TempMax    float32 `json:"temp_max"`
	HumidMax   float32 `json:"humid_max"`
	PressMax   float32 `json:"press_max"`
	BatteryMin float32 `json:"battery_min"`
	SignalMin  float32 `json:"signal_min"`
}

func DefaultDeviceType() DeviceType {
	return DeviceType{
		DevTypeCode: DEVICE_TYPE_DEFAULT,
		DevTypeDesc: "General purpose field sensor node",

		HasTemperature: true,
		HasHumidity:    true,
		HasPressure:    true,
		HasGPS:         true,

		TempMin:    -40,
		TempMax:    60,
		HumidMax:   100,
		PressMax:   1100,
		BatteryMin: 20,
		SignalMin:  -110,
	}
}

func WriteDeviceType(dty *DeviceType) (err error) {
	dty.DevTypeID = 0
	res := pkg.FRP.DB.Create(dty)
	return res.Error
}

func GetDeviceTypeByCode(code string) (dty DeviceType, err error) {
	res := pkg.FRP.DB.First(&dty, "dev_type_code = ?", code)
	err = res.Error
	return
}

func GetDeviceTypeList() (dtys []DeviceType, err error) {
	res := pkg.FRP.DB.Order("dev_type_code ASC").Find(&dtys)
	err = res.Error
	return
}

/* SEED THE DEFAULT TYPE; CALLED ON SERVER STARTUP AFTER MIGRATION */
func EnsureDefaultDeviceType() (err error) {

	if _, err = GetDeviceTypeByCode(DEVICE_TYPE_DEFAULT); err == nil {
		return
	}

	dty := DefaultDeviceType()
	return WriteDeviceType(&dty)
}

/* UPDATE THE ALERT THRESHOLDS FOR AN EXISTING TYPE */
func UpdateDeviceTypeThresholds(dty DeviceType) (err error) {
	res := pkg.FRP.DB.Model(&DeviceType{}).
		Where("dev_type_code = ?", dty.DevTypeCode).
		Updates(map[string]interface{}{
			"temp_min":    dty.TempMin,
			"temp_max":    dty.TempMax,
			"humid_max":   dty.HumidMax,
			"press_max":   dty.PressMax,
			"battery_min": dty.BatteryMin,
			"signal_min":  dty.SignalMin,
		})
	return res.Error
}
