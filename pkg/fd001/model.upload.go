package fd001

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/terralab/frp/pkg"
)

/* UPLOAD BATCH STATUS ( DataUpload.UplStatus ) */
const UPLOAD_RECEIVED = "received"
const UPLOAD_PROCESSED = "processed"
const UPLOAD_FAILED = "failed"

/*
DATA UPLOAD - ONE ROW PER POSTED BATCH

A BATCH IS A SINGLE POST FROM A FIELD DEVICE CARRYING ONE OR MORE READINGS
*/
type DataUpload struct {
	UplID string `gorm:"primaryKey; varchar(36)" json:"upl_id"`

	UplDevID    int64  `gorm:"not null; index" json:"upl_dev_id"`
	UplTime     int64  `gorm:"not null" json:"upl_time"`
	UplAddr     string `gorm:"varchar(45)" json:"upl_addr"`
	UplRecords  int    `json:"upl_records"`
	UplStatus   string `gorm:"varchar(10)" json:"upl_status"`
	UplErrorLog string `gorm:"type:text" json:"upl_error_log"`
}

func NewDataUpload(devID int64, addr string, t int64) DataUpload {
	return DataUpload{
		UplID:     uuid.New().String(),
		UplDevID:  devID,
		UplTime:   t,
		UplAddr:   addr,
		UplStatus: UPLOAD_RECEIVED,
	}
}

func WriteDataUpload(upl *DataUpload) (err error) {
	res := pkg.FRP.DB.Create(upl)
	return res.Error
}

func (upl *DataUpload) UpdateStatus(status, errorLog string) (err error) {
	upl.UplStatus = status
	upl.UplErrorLog = errorLog
	res := pkg.FRP.DB.Model(&DataUpload{}).
		Where("upl_id = ?", upl.UplID).
		Updates(map[string]interface{}{
			"upl_records":   upl.UplRecords,
			"upl_status":    status,
			"upl_error_log": errorLog,
		})
	return res.Error
}

func GetDataUploads(devID int64, limit int) (upls []DataUpload, err error) {
	res := pkg.FRP.DB.
		Where("upl_dev_id = ?", devID).
		Order("upl_time DESC").
		Limit(limit).
		Find(&upls)
	err = res.Error
	return
}

/* EXTERNAL CONTRACT *******************************************************************************

POST /api/field-data-uploads/upload_data/

	{ device_id, timestamp ( ISO-8601 ), latitude, longitude, data: { ...sensor fields } }

OPTIONALLY, ADDITIONAL READINGS MAY RIDE ALONG IN records: [ ... ]
*/
type UploadRecord struct {
	Timestamp string                 `json:"timestamp"`
	Latitude  *float64               `json:"latitude"`
	Longitude *float64               `json:"longitude"`
	Data      map[string]interface{} `json:"data"`
}

type UploadRequest struct {
	DeviceID  string                 `json:"device_id"`
	Timestamp string                 `json:"timestamp"`
	Latitude  *float64               `json:"latitude"`
	Longitude *float64               `json:"longitude"`
	Data      map[string]interface{} `json:"data"`
	Records   []UploadRecord         `json:"records"`
}

/* VALIDATE ONE READING; RETURNS ITS TIME IN UNIX MILLISECONDS */
func (rec *UploadRecord) Validate() (t int64, err error) {

	if rec.Timestamp == "" {
		return 0, fmt.Errorf("timestamp is required")
	}
	if t, err = pkg.ISO8601ToUnixMilli(rec.Timestamp); err != nil {
		return 0, err
	}
	if rec.Latitude == nil {
		return 0, fmt.Errorf("latitude is required")
	}
	if rec.Longitude == nil {
		return 0, fmt.Errorf("longitude is required")
	}
	if *rec.Latitude < -90 || *rec.Latitude > 90 {
		return 0, fmt.Errorf("latitude must be between -90 and 90")
	}
	if *rec.Longitude < -180 || *rec.Longitude > 180 {
		return 0, fmt.Errorf("longitude must be between -180 and 180")
	}
	if len(rec.Data) == 0 {
		return 0, fmt.Errorf("data is required")
	}
	return
}

func (req *UploadRequest) Validate() (t int64, err error) {

	if req.DeviceID == "" {
		return 0, fmt.Errorf("device_id is required")
	}

	first := UploadRecord{
		Timestamp: req.Timestamp,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Data:      req.Data,
	}
	if t, err = first.Validate(); err != nil {
		return
	}

	for i := range req.Records {
		if _, err = req.Records[i].Validate(); err != nil {
			err = fmt.Errorf("records[%d]: %s", i, err.Error())
			return
		}
	}
	return
}
