package fd001

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/terralab/frp/pkg"
	"github.com/terralab/frp/pkg/portal"
)

/* IN-MEMORY DATABASE; NO BROKER, CACHE OR TSDB REQUIRED */
func setupTestDB(t *testing.T) {
	t.Helper()

	pkg.ConfigInit()
	/* NO BROKER IN TESTS; CONNECT FAILS FAST AND INGEST CARRIES ON */
	pkg.MQTT_BROKER = "tcp://127.0.0.1:1"

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	models := []interface{}{&pkg.FRPDev{}, &pkg.FRPError{}}
	models = append(models, Models()...)
	models = append(models, portal.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	pkg.FRP.DB = db
	pkg.FRP.WG = &sync.WaitGroup{}

	if err := EnsureDefaultDeviceType(); err != nil {
		t.Fatalf("failed to seed default device type: %v", err)
	}

	DevicesRWMutex.Lock()
	Devices = make(DevicesMap)
	DevicesRWMutex.Unlock()

	DevicePingsRWMutex.Lock()
	DevicePings = make(pkg.PingsMap)
	DevicePingsRWMutex.Unlock()
}

func setupUploadApp(t *testing.T) *fiber.App {
	t.Helper()
	setupTestDB(t)

	app := fiber.New()
	api := fiber.New()
	app.Mount("/api", api)
	InitializeUploadRoutes(app, api)
	return app
}

func postUpload(t *testing.T, app *fiber.App, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	js, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/field-data-uploads/upload_data/", bytes.NewReader(js))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return resp, body
}

func validPayload(serial string, data map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"device_id": serial,
		"timestamp": "2026-08-20T10:00:00Z",
		"latitude":  45.5017,
		"longitude": -73.5673,
		"data":      data,
	}
}

func TestUploadDataPersistsAndRegisters(t *testing.T) {
	app := setupUploadApp(t)

	resp, body := postUpload(t, app, validPayload("WX-100", map[string]interface{}{
		"temperature":   21.5,
		"humidity":      40.0,
		"battery_level": 88.0,
	}))

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	if body["status"] != "success" {
		t.Errorf("expected status success, got %v", body["status"])
	}
	if body["device_status"] != STATUS_ACTIVE {
		t.Errorf("expected device_status %q, got %v", STATUS_ACTIVE, body["device_status"])
	}

	/* UNKNOWN DEVICE IS REGISTERED ON FIRST CONTACT */
	reg, err := pkg.GetFRPDevBySerial("WX-100")
	if err != nil {
		t.Fatalf("device was not auto-registered: %v", err)
	}
	if reg.FRPDevRegUserID != "auto-registration" {
		t.Errorf("expected auto-registration marker, got %q", reg.FRPDevRegUserID)
	}
	if reg.FRPDevTypeCode != DEVICE_TYPE_DEFAULT {
		t.Errorf("expected default device type, got %q", reg.FRPDevTypeCode)
	}

	count, err := CountSamples(reg.FRPDevID)
	if err != nil {
		t.Fatalf("failed to count samples: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 sample, got %d", count)
	}

	upls, err := GetDataUploads(reg.FRPDevID, 10)
	if err != nil || len(upls) != 1 {
		t.Fatalf("expected 1 upload batch, got %d (err %v)", len(upls), err)
	}
	if upls[0].UplStatus != UPLOAD_PROCESSED {
		t.Errorf("expected upload status %q, got %q", UPLOAD_PROCESSED, upls[0].UplStatus)
	}
}

func TestUploadDataRejectsMalformedPayloads(t *testing.T) {
	app := setupUploadApp(t)

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing device_id", map[string]interface{}{
			"timestamp": "2026-08-20T10:00:00Z",
			"latitude":  45.5, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 20.0},
		}},
		{"missing timestamp", map[string]interface{}{
			"device_id": "WX-200",
			"latitude":  45.5, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 20.0},
		}},
		{"bad timestamp", map[string]interface{}{
			"device_id": "WX-200",
			"timestamp": "20/08/2026 10:00",
			"latitude":  45.5, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 20.0},
		}},
		{"missing latitude", map[string]interface{}{
			"device_id": "WX-200",
			"timestamp": "2026-08-20T10:00:00Z",
			"longitude": -73.5,
			"data":      map[string]interface{}{"temperature": 20.0},
		}},
		{"latitude out of range", map[string]interface{}{
			"device_id": "WX-200",
			"timestamp": "2026-08-20T10:00:00Z",
			"latitude":  91.0, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 20.0},
		}},
		{"empty data", map[string]interface{}{
			"device_id": "WX-200",
			"timestamp": "2026-08-20T10:00:00Z",
			"latitude":  45.5, "longitude": -73.5,
			"data": map[string]interface{}{},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postUpload(t, app, tc.payload)

			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %v", resp.StatusCode, body)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("expected an error field, got %v", body)
			}
		})
	}

	/* NOTHING WAS PERSISTED; THE BAD DEVICE WAS NEVER REGISTERED */
	if _, err := pkg.GetFRPDevBySerial("WX-200"); err == nil {
		t.Error("device should not be registered by a rejected upload")
	}
}

func TestUploadDataRaisesOneAlertPerCrossing(t *testing.T) {
	app := setupUploadApp(t)

	/* DEFAULT TempMax IS 60; THIS READING CROSSES IT */
	hot := validPayload("WX-300", map[string]interface{}{"temperature": 75.0})

	resp, body := postUpload(t, app, hot)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}

	reg, err := pkg.GetFRPDevBySerial("WX-300")
	if err != nil {
		t.Fatalf("device was not auto-registered: %v", err)
	}

	alts, err := GetAlerts(reg.FRPDevID, true)
	if err != nil {
		t.Fatalf("failed to load alerts: %v", err)
	}
	if len(alts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(alts))
	}
	if alts[0].AltType != ALERT_TEMP_HIGH {
		t.Errorf("expected alert type %q, got %q", ALERT_TEMP_HIGH, alts[0].AltType)
	}

	/* A SECOND CROSSING WHILE THE FIRST ALERT IS UNRESOLVED ADDS NOTHING */
	postUpload(t, app, hot)
	alts, _ = GetAlerts(reg.FRPDevID, false)
	if len(alts) != 1 {
		t.Fatalf("expected 1 alert after repeat crossing, got %d", len(alts))
	}

	/* ONCE RESOLVED, THE NEXT CROSSING RAISES A FRESH ALERT */
	if err = ResolveAlert(alts[0].AltID); err != nil {
		t.Fatalf("failed to resolve alert: %v", err)
	}
	postUpload(t, app, hot)
	alts, _ = GetAlerts(reg.FRPDevID, false)
	if len(alts) != 2 {
		t.Fatalf("expected 2 alerts after resolve and re-crossing, got %d", len(alts))
	}

	/* EACH NEW ALERT CARRIES AN ADMIN NOTIFICATION */
	ntfs, err := portal.GetNotifications(portal.NOTIFY_SCOPE_ADMIN, false)
	if err != nil {
		t.Fatalf("failed to load notifications: %v", err)
	}
	if len(ntfs) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(ntfs))
	}
}

func TestUploadDataLowBatteryParksDeviceInMaintenance(t *testing.T) {
	app := setupUploadApp(t)

	resp, body := postUpload(t, app, validPayload("WX-400", map[string]interface{}{
		"temperature":   20.0,
		"battery_level": 10.0, // DEFAULT BatteryMin IS 20
	}))

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	if body["device_status"] != STATUS_MAINTENANCE {
		t.Errorf("expected device_status %q, got %v", STATUS_MAINTENANCE, body["device_status"])
	}

	reg, _ := pkg.GetFRPDevBySerial("WX-400")
	alts, _ := GetAlerts(reg.FRPDevID, true)
	if len(alts) != 1 || alts[0].AltType != ALERT_BATTERY_LOW {
		t.Fatalf("expected a single %s alert, got %+v", ALERT_BATTERY_LOW, alts)
	}
}

/* A REPORTED ZERO IS A DEAD BATTERY, NOT A NEVER-REPORTED ONE */
func TestUploadDataDeadBatteryParksDeviceInMaintenance(t *testing.T) {
	app := setupUploadApp(t)

	resp, body := postUpload(t, app, validPayload("WX-410", map[string]interface{}{
		"temperature":   20.0,
		"battery_level": 0.0,
	}))

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	if body["device_status"] != STATUS_MAINTENANCE {
		t.Errorf("expected device_status %q, got %v", STATUS_MAINTENANCE, body["device_status"])
	}

	reg, _ := pkg.GetFRPDevBySerial("WX-410")
	alts, _ := GetAlerts(reg.FRPDevID, true)
	if len(alts) != 1 || alts[0].AltType != ALERT_BATTERY_LOW {
		t.Fatalf("expected a single %s alert, got %+v", ALERT_BATTERY_LOW, alts)
	}

	/* A READING WITH NO BATTERY FIELD DOES NOT PARK A HEALTHY DEVICE */
	resp, body = postUpload(t, app, validPayload("WX-420", map[string]interface{}{
		"temperature": 20.0,
	}))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	if body["device_status"] != STATUS_ACTIVE {
		t.Errorf("expected device_status %q, got %v", STATUS_ACTIVE, body["device_status"])
	}
}

func TestUploadDataBatchRecords(t *testing.T) {
	app := setupUploadApp(t)

	payload := validPayload("WX-500", map[string]interface{}{"temperature": 18.0})
	payload["records"] = []map[string]interface{}{
		{
			"timestamp": "2026-08-20T10:05:00Z",
			"latitude":  45.5, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 18.5},
		},
		{
			"timestamp": "2026-08-20T10:10:00Z",
			"latitude":  45.5, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 19.0},
		},
	}

	resp, body := postUpload(t, app, payload)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	if records, _ := body["records"].(float64); int(records) != 3 {
		t.Errorf("expected 3 records processed, got %v", body["records"])
	}

	reg, _ := pkg.GetFRPDevBySerial("WX-500")
	count, _ := CountSamples(reg.FRPDevID)
	if count != 3 {
		t.Errorf("expected 3 samples, got %d", count)
	}

	/* ONE INVALID RECORD REJECTS THE WHOLE BATCH */
	payload["records"] = []map[string]interface{}{
		{
			"timestamp": "2026-08-20T10:15:00Z",
			"latitude":  200.0, "longitude": -73.5,
			"data": map[string]interface{}{"temperature": 19.5},
		},
	}
	resp, body = postUpload(t, app, payload)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", resp.StatusCode, body)
	}
	count, _ = CountSamples(reg.FRPDevID)
	if count != 3 {
		t.Errorf("rejected batch must persist nothing; got %d samples", count)
	}
}
