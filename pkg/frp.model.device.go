/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

/*
FIELD DEVICE REGISTRY RECORD

ONE ROW PER DEVICE KNOWN TO THIS FRP; CREATED BY AN ADMINISTRATOR OR
AUTOMATICALLY ON FIRST CONTACT. CURRENT OPERATIONAL STATE IS KEPT HERE;
MOST RECENT WRITE WINS.
*/
type FRPDev struct {
	FRPDevID int64 `gorm:"unique; primaryKey" json:"frp_dev_id"`

	FRPDevRegTime   int64  `gorm:"not null" json:"frp_dev_reg_time"`
	FRPDevRegAddr   string `json:"frp_dev_reg_addr"`
	FRPDevRegUserID string `gorm:"varchar(36)" json:"frp_dev_reg_user_id"`

	FRPDevSerial   string `gorm:"not null; uniqueIndex; varchar(10)" json:"frp_dev_serial"`
	FRPDevClass    string `gorm:"not null; varchar(3)" json:"frp_dev_class"`
	FRPDevVersion  string `gorm:"not null; varchar(3)" json:"frp_dev_version"`
	FRPDevTypeCode string `gorm:"varchar(10)" json:"frp_dev_type_code"`

	FRPDevStatus   string  `gorm:"varchar(20)" json:"frp_dev_status"`
	FRPDevBattery  float32 `json:"frp_dev_battery"`
	FRPDevSignal   float32 `json:"frp_dev_signal"`
	FRPDevLastSeen int64   `json:"frp_dev_last_seen"`
	FRPDevCalDue   bool    `json:"frp_dev_cal_due"`
}

func WriteFRPDev(device *FRPDev) (err error) {
	device.FRPDevID = 0
	res := FRP.DB.Create(device)
	return res.Error
}

func GetFRPDevBySerial(serial string) (device FRPDev, err error) {
	res := FRP.DB.First(&device, "frp_dev_serial = ?", serial)
	err = res.Error
	return
}

func GetFRPDevList() (devices []FRPDev, err error) {
	res := FRP.DB.Order("frp_dev_serial ASC").Find(&devices)
	err = res.Error
	return
}

/* PERSIST THE CURRENT OPERATIONAL STATE FOR AN EXISTING REGISTRY ROW */
func UpdateFRPDevState(device *FRPDev) (err error) {
	res := FRP.DB.Model(&FRPDev{}).
		Where("frp_dev_id = ?", device.FRPDevID).
		Updates(map[string]interface{}{
			"frp_dev_status":    device.FRPDevStatus,
			"frp_dev_battery":   device.FRPDevBattery,
			"frp_dev_signal":    device.FRPDevSignal,
			"frp_dev_last_seen": device.FRPDevLastSeen,
			"frp_dev_cal_due":   device.FRPDevCalDue,
		})
	return res.Error
}
