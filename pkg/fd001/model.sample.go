package fd001

import (
	"encoding/json"

	"github.com/terralab/frp/pkg"
)

/* SENSOR PAYLOAD KEYS RECOGNISED FOR THRESHOLD CHECKS; ANYTHING ELSE IS
STORED VERBATIM IN THE RAW PAYLOAD */
const METRIC_TEMPERATURE = "temperature"
const METRIC_HUMIDITY = "humidity"
const METRIC_PRESSURE = "pressure"
const METRIC_BATTERY = "battery_level"
const METRIC_SIGNAL = "signal_strength"

/*
SAMPLE - ONE SENSOR READING AS WRITTEN TO THE FRP DATABASE
*/
type Sample struct {
	SmpID int64 `gorm:"unique; primaryKey" json:"-"`

	SmpUploadID string `gorm:"varchar(36); index" json:"smp_upload_id"`
	SmpDevID    int64  `gorm:"not null; index" json:"smp_dev_id"`

	SmpTime int64   `gorm:"not null" json:"smp_time"`
	SmpLat  float64 `json:"smp_lat"`
	SmpLng  float64 `json:"smp_lng"`

	SmpTemp  float32 `json:"smp_temp"`
	SmpHumid float32 `json:"smp_humid"`
	SmpPress float32 `json:"smp_press"`
	SmpBat   float32 `json:"smp_bat"`
	SmpSig   float32 `json:"smp_sig"`

	SmpData string `gorm:"type:text" json:"smp_data"` // FULL SENSOR PAYLOAD AS POSTED
}

func WriteSMP(smp *Sample) (err error) {

	/* WHEN Write IS CALLED IN A GO ROUTINE, SEVERAL TRANSACTIONS MAY BE PENDING
	WE WANT TO PREVENT DISCONNECTION UNTIL THIS TRANSACTION HAS FINISHED */
	if pkg.FRP.WG != nil {
		pkg.FRP.WG.Add(1)
		defer pkg.FRP.WG.Done()
	}
	smp.SmpID = 0
	res := pkg.FRP.DB.Create(smp)
	return res.Error
}

/*
BUILD A SAMPLE FROM A POSTED SENSOR PAYLOAD

RETURNS THE NUMERIC METRICS ACTUALLY PRESENT SO THRESHOLD CHECKS CAN TELL
"NOT REPORTED" FROM ZERO
*/
func SampleFromPayload(devID int64, uploadID string, t int64, lat, lng float64, data map[string]interface{}) (smp Sample, metrics map[string]float32) {

	metrics = make(map[string]float32)
	for _, key := range []string{METRIC_TEMPERATURE, METRIC_HUMIDITY, METRIC_PRESSURE, METRIC_BATTERY, METRIC_SIGNAL} {
		if v, ok := data[key]; ok {
			if f, ok := v.(float64); ok {
				metrics[key] = float32(f)
			}
		}
	}

	js, err := json.Marshal(data)
	if err != nil {
		pkg.LogErr(err)
		js = []byte("{}")
	}

	smp = Sample{
		SmpUploadID: uploadID,
		SmpDevID:    devID,
		SmpTime:     t,
		SmpLat:      lat,
		SmpLng:      lng,
		SmpTemp:     metrics[METRIC_TEMPERATURE],
		SmpHumid:    metrics[METRIC_HUMIDITY],
		SmpPress:    metrics[METRIC_PRESSURE],
		SmpBat:      metrics[METRIC_BATTERY],
		SmpSig:      metrics[METRIC_SIGNAL],
		SmpData:     string(js),
	}
	return
}

/* SAMPLES FOR ONE DEVICE WITHIN [ start, end ]; UNIX MILLISECONDS, ASCENDING */
func GetSamples(devID, start, end int64) (smps []Sample, err error) {
	res := pkg.FRP.DB.
		Where("smp_dev_id = ? AND smp_time BETWEEN ? AND ?", devID, start, end).
		Order("smp_time ASC").
		Find(&smps)
	err = res.Error
	return
}

func CountSamples(devID int64) (count int64, err error) {
	res := pkg.FRP.DB.Model(&Sample{}).Where("smp_dev_id = ?", devID).Count(&count)
	err = res.Error
	return
}
