package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/terralab/frp/pkg"
)

func setupPortalApp(t *testing.T) *fiber.App {
	t.Helper()

	pkg.ConfigInit()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	pkg.FRP.DB = db
	pkg.FRP.WG = &sync.WaitGroup{}

	app := fiber.New()
	api := fiber.New()
	app.Mount("/api", api)
	InitializeDatasetRoutes(app, api)
	InitializeContactRoutes(app, api)
	InitializeNotificationRoutes(app, api)
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()

	us := pkg.UserSession{USR: pkg.UserResponse{ID: uuid.New(), Role: role}}
	if err := us.CreateJWTAccessToken(); err != nil {
		t.Fatalf("failed to create access token: %v", err)
	}
	return us.ACCTok
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if payload != nil {
		js, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(js))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

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

func TestDatasetAccessLevels(t *testing.T) {
	app := setupPortalApp(t)
	admin := tokenForRole(t, pkg.ROLE_ADMIN)

	/* ANONYMOUS CALLERS CANNOT PUBLISH */
	resp, _ := doJSON(t, app, "POST", "/api/dataset/create", "", map[string]interface{}{
		"ds_title": "Site A temperatures 2026",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	/* NEITHER CAN VIEWERS */
	resp, _ = doJSON(t, app, "POST", "/api/dataset/create", tokenForRole(t, pkg.ROLE_VIEWER), map[string]interface{}{
		"ds_title": "Site A temperatures 2026",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	/* OPERATORS AND ABOVE CAN */
	operator := tokenForRole(t, pkg.ROLE_OPERATOR)
	resp, body := doJSON(t, app, "POST", "/api/dataset/create", operator, map[string]interface{}{
		"ds_title":      "Site A temperatures 2026",
		"ds_slug":       "site-a-temperatures-2026",
		"ds_discipline": "climatology",
		"ds_license":    "CC-BY-4.0",
		"ds_doi":        "10.5072/frp.site-a-2026",
		"ds_access":     DATASET_ACCESS_PUBLIC,
		"ds_url":        "https://data.terralab.edu/site-a-2026.csv",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := body["data"].(map[string]interface{})["dataset"].(map[string]interface{})
	got, err := GetDatasetByID(int64(created["ds_id"].(float64)))
	if err != nil {
		t.Fatal(err)
	}
	if got.DSSlug != "site-a-temperatures-2026" || got.DSDOI != "10.5072/frp.site-a-2026" ||
		got.DSDiscipline != "climatology" || got.DSLicense != "CC-BY-4.0" {
		t.Errorf("dataset metadata did not round-trip: %+v", got)
	}

	resp, _ = doJSON(t, app, "POST", "/api/dataset/create", admin, map[string]interface{}{
		"ds_title":  "Raw station logs",
		"ds_access": DATASET_ACCESS_MEMBERS,
		"ds_url":    "https://data.terralab.edu/raw-logs.tar.gz",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	/* ANONYMOUS LIST SEES PUBLIC DATASETS ONLY */
	resp, body = doJSON(t, app, "GET", "/api/dataset/list", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]interface{})
	if n := len(data["datasets"].([]interface{})); n != 1 {
		t.Errorf("anonymous list should hold 1 dataset, got %d", n)
	}

	/* MEMBERS SEE EVERYTHING */
	viewer := tokenForRole(t, pkg.ROLE_VIEWER)
	_, body = doJSON(t, app, "GET", "/api/dataset/list", viewer, nil)
	data = body["data"].(map[string]interface{})
	if n := len(data["datasets"].([]interface{})); n != 2 {
		t.Errorf("member list should hold 2 datasets, got %d", n)
	}

	/* VIEWERS CANNOT REMOVE; ADMINS CAN */
	dsID := data["datasets"].([]interface{})[0].(map[string]interface{})["ds_id"]
	resp, _ = doJSON(t, app, "POST", "/api/dataset/delete", viewer, map[string]interface{}{"ds_id": dsID})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "POST", "/api/dataset/delete", admin, map[string]interface{}{"ds_id": dsID})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	_, body = doJSON(t, app, "GET", "/api/dataset/list", viewer, nil)
	data = body["data"].(map[string]interface{})
	if n := len(data["datasets"].([]interface{})); n != 1 {
		t.Errorf("member list should hold 1 dataset after delete, got %d", n)
	}
}

func TestDatasetDownloadCounts(t *testing.T) {
	app := setupPortalApp(t)

	ds := Dataset{
		DSTitle:  "Humidity grids",
		DSAccess: DATASET_ACCESS_PUBLIC,
		DSURL:    "https://data.terralab.edu/humidity.nc",
	}
	if err := WriteDataset(&ds); err != nil {
		t.Fatal(err)
	}
	members := Dataset{
		DSTitle:  "Member archive",
		DSAccess: DATASET_ACCESS_MEMBERS,
		DSURL:    "https://data.terralab.edu/archive.zip",
	}
	if err := WriteDataset(&members); err != nil {
		t.Fatal(err)
	}

	target := fmt.Sprintf("/api/dataset/download?id=%d", ds.DSID)
	resp, body := doJSON(t, app, "GET", target, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	doJSON(t, app, "GET", target, "", nil)

	got, err := GetDatasetByID(ds.DSID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DSDownloads != 2 {
		t.Errorf("expected 2 downloads, got %d", got.DSDownloads)
	}

	/* MEMBERS-ONLY DATASETS STAY BEHIND THE LOGIN */
	target = fmt.Sprintf("/api/dataset/download?id=%d", members.DSID)
	resp, _ = doJSON(t, app, "GET", target, "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for anonymous member download, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", target, tokenForRole(t, pkg.ROLE_VIEWER), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for member download, got %d", resp.StatusCode)
	}
}

func TestContactFormCreatesNotification(t *testing.T) {
	app := setupPortalApp(t)

	resp, body := doJSON(t, app, "POST", "/api/contact/submit", "", map[string]interface{}{
		"cm_name":    "Ada",
		"cm_email":   "ada@example.org",
		"cm_subject": "Sensor placement",
		"cm_body":    "Where should we mount the riverbank unit?",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}

	cms, err := GetContactMessages(true)
	if err != nil || len(cms) != 1 {
		t.Fatalf("expected 1 unhandled message, got %d (err %v)", len(cms), err)
	}

	ntfs, err := GetNotifications(NOTIFY_SCOPE_ADMIN, true)
	if err != nil || len(ntfs) != 1 {
		t.Fatalf("expected 1 admin notification, got %d (err %v)", len(ntfs), err)
	}

	/* INVALID SUBMISSIONS ARE REJECTED AND LEAVE NO TRACE */
	resp, _ = doJSON(t, app, "POST", "/api/contact/submit", "", map[string]interface{}{
		"cm_name":  "Ada",
		"cm_email": "not-an-email",
		"cm_body":  "hello",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	cms, _ = GetContactMessages(false)
	if len(cms) != 1 {
		t.Errorf("rejected submission must not be stored; got %d messages", len(cms))
	}
}

func TestNotificationReadFlow(t *testing.T) {
	app := setupPortalApp(t)
	admin := tokenForRole(t, pkg.ROLE_ADMIN)

	CreateNotification(NOTIFY_SCOPE_ADMIN, "Device WX-100: temperature_high", "temperature 75.0 exceeds maximum 60.0")

	resp, body := doJSON(t, app, "GET", "/api/notification/list?unread=true", admin, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]interface{})
	ntfs := data["notifications"].([]interface{})
	if len(ntfs) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", len(ntfs))
	}
	ntfID := int64(ntfs[0].(map[string]interface{})["ntf_id"].(float64))

	resp, _ = doJSON(t, app, "POST", "/api/notification/read", admin, map[string]interface{}{
		"ntf_id": ntfID,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	_, body = doJSON(t, app, "GET", "/api/notification/list?unread=true", admin, nil)
	data = body["data"].(map[string]interface{})
	if lst, ok := data["notifications"].([]interface{}); ok && len(lst) != 0 {
		t.Errorf("expected 0 unread notifications after read, got %d", len(lst))
	}
}
