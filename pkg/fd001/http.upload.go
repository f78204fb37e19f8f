package fd001

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terralab/frp/pkg"
)

const TSDB_MEASUREMENT_SAMPLE = "field_sample"

func InitializeUploadRoutes(app, api *fiber.App) {
	api.Route("/field-data-uploads", func(router fiber.Router) {
		/* POSTED BY FIELD DEVICES; DEVICES CARRY NO USER CREDENTIALS */
		router.Post("/upload_data/", HandleUploadData)
	})
}

/*
	TELEMETRY INGEST

POST /api/field-data-uploads/upload_data/

	{ device_id, timestamp, latitude, longitude, data: { ...sensor fields } }

ON SUCCESS, EVERY READING HAS BEEN VALIDATED, PERSISTED, CHECKED AGAINST
THE DEVICE TYPE'S ALERT BOUNDS AND BROADCAST TO SUBSCRIBED USER CLIENTS.
UNKNOWN DEVICES ARE REGISTERED ON FIRST CONTACT.

MALFORMED PAYLOADS GET 400 WITH { "error": "..." }; NOTHING IS PERSISTED
*/
func HandleUploadData(c *fiber.Ctx) (err error) {

	req := UploadRequest{}
	if err = c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON payload",
		})
	}

	/* VALIDATE EVERY READING BEFORE TOUCHING THE DATABASE */
	if _, err = req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	device, err := GetDeviceBySerialOrRegister(req.DeviceID, c.IP())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	upl := NewDataUpload(device.FRPDevID, c.IP(), time.Now().UTC().UnixMilli())
	if err = WriteDataUpload(&upl); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record upload",
		})
	}

	/* FIRST READING RIDES AT THE TOP LEVEL; ANY FURTHER READINGS IN records */
	recs := append([]UploadRecord{{
		Timestamp: req.Timestamp,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Data:      req.Data,
	}}, req.Records...)

	last := Sample{}
	lastMetrics := map[string]float32{}
	for _, rec := range recs {

		t, _ := pkg.ISO8601ToUnixMilli(rec.Timestamp) // VALIDATED ABOVE

		smp, metrics := SampleFromPayload(device.FRPDevID, upl.UplID, t, *rec.Latitude, *rec.Longitude, rec.Data)
		if err = WriteSMP(&smp); err != nil {
			pkg.LogErr(err)
			pkg.MakeFRPError(device.FRPDevID, "sample write failed", rec)
			upl.UpdateStatus(UPLOAD_FAILED, err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to persist sample",
			})
		}
		upl.UplRecords++

		device.ProcessSample(smp, metrics)
		last = smp
		lastMetrics = metrics
	}

	/* STATUS IS RECOMPUTED FROM THE NEWEST READING ONLY */
	device.SMP = last
	if err = device.UpdateStateFromSample(last, lastMetrics); err != nil {
		pkg.LogErr(err)
	}

	if err = upl.UpdateStatus(UPLOAD_PROCESSED, ""); err != nil {
		pkg.LogErr(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":        "success",
		"message":       fmt.Sprintf("%d record(s) processed for device %s", upl.UplRecords, device.FRPDevSerial),
		"upload_id":     upl.UplID,
		"records":       upl.UplRecords,
		"device_status": device.FRPDevStatus,
	})
}

/*
FAN ONE PERSISTED READING OUT TO THE TIME SERIES STORE, THE ALERT
EVALUATOR AND THE BROADCAST RELAY; ALL THREE ARE LOG-AND-CARRY-ON
*/
func (device *Device) ProcessSample(smp Sample, metrics map[string]float32) {

	fields := map[string]interface{}{
		"latitude":  smp.SmpLat,
		"longitude": smp.SmpLng,
	}
	for key, val := range metrics {
		fields[key] = float64(val)
	}
	pkg.TSDBWritePoint(
		context.Background(),
		TSDB_MEASUREMENT_SAMPLE,
		map[string]string{
			"serial": device.FRPDevSerial,
			"type":   device.FRPDevTypeCode,
		},
		fields,
		smp.SmpTime,
	)

	for _, alt := range device.EvaluateSample(smp, metrics) {
		device.MQTTPublication_DeviceClient_SIGAlert(alt)
	}

	device.MQTTPublication_DeviceClient_SIGSample(smp)
}
