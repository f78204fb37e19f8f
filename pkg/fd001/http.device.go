package fd001

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/terralab/frp/pkg"
)

func InitializeDeviceRoutes(app, api *fiber.App) {
	api.Route("/001/001/device", func(router fiber.Router) {

		/* DEVICE-ADMIN-LEVEL OPERATIONS */
		router.Post("/register", pkg.FRPAuth, HandleRegisterDevice)
		router.Post("/status", pkg.FRPAuth, HandleSetDeviceStatus)
		router.Post("/thresholds", pkg.FRPAuth, HandleSetDeviceTypeThresholds)
		router.Post("/alert/resolve", pkg.FRPAuth, HandleResolveAlert)

		/* DEVICE-VIEWER-LEVEL OPERATIONS */
		router.Get("/list", pkg.FRPAuth, HandleGetDeviceList)
		router.Get("/alerts", pkg.FRPAuth, HandleGetDeviceAlerts)
		router.Get("/uploads", pkg.FRPAuth, HandleGetDeviceUploads)
		router.Get("/samples", pkg.FRPAuth, HandleGetDeviceSamples)
		router.Get("/types", pkg.FRPAuth, HandleGetDeviceTypeList)

		/* TODO: ROLES HANDLED PER MQTT TOPIC / WS */
		app.Use("/ws", pkg.HandleWSUpgrade)
		router.Get("/ws", pkg.FRPAuth, websocket.New(HandleDeviceUserClient_Connect))
	})
}

/*
USED WHEN PORTAL ADMIN WEB CLIENTS REGISTER NEW 001/001 DEVICES ON THIS FRP

PERFORMS REGISTRY ROW CREATION AND CONNECTS THE DEVICE'S MQTT CLIENT
*/
func HandleRegisterDevice(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Admin(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an administrator to register devices",
		})
	}

	/* PARSE AND VALIDATE REQUEST DATA */
	reg := pkg.FRPDev{}
	if err = c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	userID, _ := c.Locals("sub").(string)
	device, err := RegisterDevice(c.IP(), userID, reg)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"device": device},
	})
}

/* RETURNS THE LIST OF DEVICES REGISTERED TO THIS FRP */
func HandleGetDeviceList(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view the device list",
		})
	}

	devices, err := GetDeviceList()
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"devices": devices},
	})
}

/* ADMIN ONLY - FORCE A DEVICE STATUS AND BROADCAST THE CHANGE */
func HandleSetDeviceStatus(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Admin(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an administrator to set device status",
		})
	}

	sta := StatusChange{}
	if err = c.BodyParser(&sta); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	device, err := GetDeviceBySerial(sta.Serial)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	if err = device.SetStatus(sta.Status, STATUS_SOURCE_ADMIN); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"device": device},
	})
}

/* ADMIN ONLY - UPDATE A DEVICE TYPE'S ALERT BOUNDS AND NOTIFY LISTENING DEVICES */
func HandleSetDeviceTypeThresholds(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Admin(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an administrator to set alert thresholds",
		})
	}

	dty := DeviceType{}
	if err = c.BodyParser(&dty); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}
	pkg.Json("HandleSetDeviceTypeThresholds(): -> c.BodyParser(&dty) -> dty", dty)

	if _, err = GetDeviceTypeByCode(dty.DevTypeCode); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": fmt.Sprintf("device type %s is not registered", dty.DevTypeCode),
		})
	}

	if err = UpdateDeviceTypeThresholds(dty); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	/* EVERY MAPPED DEVICE OF THIS TYPE HEARS THE CHANGE ON ITS CMD TOPIC */
	for _, device := range DevicesMapCopy() {
		if device.FRPDevTypeCode != dty.DevTypeCode {
			continue
		}
		pkg.MQTTPublication{
			Topic:   device.MQTTTopic_CMDThresholds(),
			Message: pkg.MakeMQTTMessage(dty),
		}.Pub(device.FRPMQTTClient)

		device.DTY = dty
		DevicesMapWrite(device)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"device_type": dty},
	})
}

func HandleGetDeviceTypeList(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view device types",
		})
	}

	dtys, err := GetDeviceTypeList()
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"device_types": dtys},
	})
}

/* RETURNS ALERTS FOR ONE DEVICE; ?serial=...&active=true */
func HandleGetDeviceAlerts(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view alerts",
		})
	}

	device, err := GetDeviceBySerial(c.Query("serial"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	alts, err := GetAlerts(device.FRPDevID, c.QueryBool("active"))
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"alerts": alts},
	})
}

/* OPERATOR - MARK AN ALERT RESOLVED */
func HandleResolveAlert(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Operator(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an operator to resolve alerts",
		})
	}

	alt := Alert{}
	if err = c.BodyParser(&alt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	if err = ResolveAlert(alt.AltID); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("Alert %d resolved", alt.AltID),
	})
}

/* RETURNS RECENT UPLOAD BATCHES FOR ONE DEVICE; ?serial=...&limit=50 */
func HandleGetDeviceUploads(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view uploads",
		})
	}

	device, err := GetDeviceBySerial(c.Query("serial"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	limit := c.QueryInt("limit", 50)
	upls, err := GetDataUploads(device.FRPDevID, limit)
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"uploads": upls},
	})
}

/* RETURNS SAMPLES FOR ONE DEVICE WITHIN [ start, end ]; UNIX MILLISECONDS */
func HandleGetDeviceSamples(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view samples",
		})
	}

	device, err := GetDeviceBySerial(c.Query("serial"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	start, _ := strconv.ParseInt(c.Query("start", "0"), 10, 64)
	end, _ := strconv.ParseInt(c.Query("end", "9223372036854775807"), 10, 64)

	smps, err := GetSamples(device.FRPDevID, start, end)
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"samples": smps},
	})
}

/* USED TO OPEN A WEB SOCKET CONNECTION BETWEEN A USER AND A GIVEN DEVICE */
func HandleDeviceUserClient_Connect(c *websocket.Conn) {

	/* CHECK USER PERMISSION */
	role := c.Locals("role")
	if !pkg.UserRole_Viewer(role) {
		/* CREATE JSON WSMessage STRUCT */
		js, err := json.Marshal(&WSMessage{Type: "auth", Data: fiber.Map{
			"status":  "fail",
			"message": "You need permission to watch a live feed.",
		}})
		if err != nil {
			pkg.LogErr(err)
			return
		}
		c.WriteMessage(websocket.TextMessage, js)
		return
	}

	device, err := GetDeviceBySerial(c.Query("serial"))
	if err != nil {
		js, _ := json.Marshal(&WSMessage{Type: "auth", Data: fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		}})
		c.WriteMessage(websocket.TextMessage, js)
		return
	}

	sid := c.Query("sid")
	if sid == "" {
		sid = uuid.New().String()
	}

	/* CONNECTED DEVICE USER CLIENT *** DO NOT RUN IN GO ROUTINE *** */
	duc := DeviceUserClient{Device: device}
	duc.DeviceUserClient_Connect(c, sid)
}
