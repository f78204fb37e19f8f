package fd001

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/terralab/frp/pkg"
)

const DEVICE_CLASS = "001"
const DEVICE_VERSION = "001"

/* DEVICE STATUS ( FRPDev.FRPDevStatus ) ***********************************************************/
const STATUS_ACTIVE = "active"           // DEVICE IS REPORTING NORMALLY
const STATUS_MAINTENANCE = "maintenance" // A READING HAS CROSSED A SERVICE THRESHOLD
const STATUS_INACTIVE = "inactive"       // NO CONTACT WITHIN THE INACTIVE WINDOW
const STATUS_LOST = "lost"               // NO CONTACT WITHIN THE LOST WINDOW
const STATUS_CALIBRATION = "calibration" // SENSOR CALIBRATION IS DUE

/* END DEVICE STATUS *******************************************************************************/

func ValidStatus(status string) bool {
	switch status {
	case STATUS_ACTIVE, STATUS_MAINTENANCE, STATUS_INACTIVE, STATUS_LOST, STATUS_CALIBRATION:
		return true
	}
	return false
}

/*
	FOR EACH REGISTERED DEVICE, THE FRP MAINTAINS:

	THE MOST RECENT REGISTRY DATA FOR THE DEVICE ITSELF

	THE MOST RECENT SAMPLE RECEIVED FROM THE DEVICE

	A DEVICE-SPECIFIC MQTT CLIENT ( FOR LIFE ) USED TO BROADCAST
	SAMPLES, STATUS AND ALERTS TO SUBSCRIBED USER CLIENTS
*/
type Device struct {
	pkg.FRPDev        `json:"reg"`
	DTY               DeviceType `json:"dty"` // Device type and its alert thresholds
	SMP               Sample     `json:"smp"` // Last known Sample value
	pkg.FRPMQTTClient `json:"-"`
}

type DevicesMap map[string]Device

var Devices = make(DevicesMap)
var DevicesRWMutex = sync.RWMutex{}

/* WRITE LOCK PREVENTS DEVICE MAP READS DURING WRITE OPERATIONS */
func DevicesMapWrite(device Device) {
	DevicesRWMutex.Lock()
	Devices[device.FRPDevSerial] = device
	DevicesRWMutex.Unlock()
}
func DevicesMapRead(serial string) (device Device, ok bool) {
	DevicesRWMutex.RLock()
	device, ok = Devices[serial]
	DevicesRWMutex.RUnlock()
	return
}
func DevicesMapRemove(serial string) {
	DevicesRWMutex.Lock()
	delete(Devices, serial)
	DevicesRWMutex.Unlock()
}
func DevicesMapCopy() (dm DevicesMap) {
	dm = make(DevicesMap)
	DevicesRWMutex.RLock()
	for serial, device := range Devices {
		dm[serial] = device
	}
	DevicesRWMutex.RUnlock()
	return
}

/* LAST PING ANSWERED PER DEVICE; KEYED BY SERIAL */
var DevicePings = make(pkg.PingsMap)
var DevicePingsRWMutex = sync.RWMutex{}

func DevicePingsMapWrite(serial string, ping pkg.Ping) {
	DevicePingsRWMutex.Lock()
	DevicePings[serial] = ping
	DevicePingsRWMutex.Unlock()
}
func DevicePingsMapRead(serial string) (ping pkg.Ping, ok bool) {
	DevicePingsRWMutex.RLock()
	ping, ok = DevicePings[serial]
	DevicePingsRWMutex.RUnlock()
	return
}

/* GET THE CURRENT REGISTRY RECORD FOR ALL DEVICES ON THIS FRP */
func GetDeviceList() (devices []Device, err error) {

	regs, err := pkg.GetFRPDevList()
	if err != nil {
		return
	}

	for _, reg := range regs {
		device, ok := DevicesMapRead(reg.FRPDevSerial)
		if !ok {
			device = Device{}
		}
		device.FRPDev = reg
		devices = append(devices, device)
	}
	return
}

/* CONNECT MQTT CLIENTS FOR ALL REGISTERED DEVICES; CALLED ON SERVER STARTUP */
func DeviceClient_ConnectAll() {

	regs, err := pkg.GetFRPDevList()
	if err != nil {
		pkg.LogErr(err)
		return
	}

	for _, reg := range regs {
		device := Device{FRPDev: reg}
		device.DeviceClient_Connect()
	}
}

/* DISCONNECT MQTT CLIENTS FOR ALL REGISTERED DEVICES; CALLED ON SERVER SHUT DOWN */
func DeviceClient_DisconnectAll() {
	for _, device := range DevicesMapCopy() {
		device.DeviceClient_Disconnect()
	}
}

/* CONNECT THIS DEVICE'S MQTT CLIENT AND LOAD ITS TYPE; MAPS THE DEVICE EITHER WAY */
func (device *Device) DeviceClient_Connect() {

	dty, err := GetDeviceTypeByCode(device.FRPDevTypeCode)
	if err != nil {
		pkg.LogErr(err)
		dty = DefaultDeviceType()
	}
	device.DTY = dty

	/* A DEAD BROKER MUST NOT KEEP THE REGISTRY FROM SERVING; LOG AND CARRY ON */
	if err := device.MQTTDeviceClient_Connect(); err != nil {
		pkg.LogErr(err)
	}

	DevicesMapWrite(*device)
}

func (device *Device) DeviceClient_Disconnect() {
	device.MQTTDeviceClient_Disconnect()
	DevicesMapRemove(device.FRPDevSerial)
}

/* SERIAL NUMBERS ARE UPPER-CASE, 1 - 10 CHARS, NO SPACES */
func ValidateSerialNumber(serial string) (err error) {
	if serial == "" {
		return fmt.Errorf("serial number must not be empty")
	}
	if len(serial) > 10 {
		return fmt.Errorf("serial number must not exceed 10 characters")
	}
	if strings.Contains(serial, " ") {
		return fmt.Errorf("serial number must not contain spaces")
	}
	return
}

/*
CREATE A DEVICE RECORD IN THE FRP DB FOR THIS DEVICE

USED BY ADMINISTRATORS, AND BY THE UPLOAD ENDPOINT WHEN AN UNKNOWN
DEVICE MAKES FIRST CONTACT ( reg_user_id = "auto-registration" )
*/
func RegisterDevice(addr, userID string, reg pkg.FRPDev) (device Device, err error) {

	reg.FRPDevSerial = strings.ToUpper(reg.FRPDevSerial)
	if err = ValidateSerialNumber(reg.FRPDevSerial); err != nil {
		return
	}

	if _, err = pkg.GetFRPDevBySerial(reg.FRPDevSerial); err == nil {
		err = fmt.Errorf("device %s is already registered", reg.FRPDevSerial)
		return
	}
	err = nil

	reg.FRPDevRegTime = time.Now().UTC().UnixMilli()
	reg.FRPDevRegAddr = addr
	reg.FRPDevRegUserID = userID
	reg.FRPDevClass = DEVICE_CLASS
	reg.FRPDevVersion = DEVICE_VERSION
	if reg.FRPDevTypeCode == "" {
		reg.FRPDevTypeCode = DEVICE_TYPE_DEFAULT
	}
	if reg.FRPDevStatus == "" {
		reg.FRPDevStatus = STATUS_ACTIVE
	}

	if err = pkg.WriteFRPDev(&reg); err != nil {
		return
	}

	device = Device{FRPDev: reg}
	device.DeviceClient_Connect()
	return
}

/*
FETCH A DEVICE BY SERIAL, AUTO-REGISTERING ON FIRST CONTACT

ONLY THE UPLOAD ENDPOINT USES THE REGISTERING FORM; EVERY OTHER CALLER
TREATS AN UNKNOWN SERIAL AS NOT FOUND
*/
func GetDeviceBySerial(serial string) (device Device, err error) {

	serial = strings.ToUpper(serial)
	if device, ok := DevicesMapRead(serial); ok {
		return device, nil
	}

	reg, err := pkg.GetFRPDevBySerial(serial)
	if err != nil {
		err = fmt.Errorf("device %s is not registered", serial)
		return
	}

	device = Device{FRPDev: reg}
	device.DeviceClient_Connect()
	return
}

func GetDeviceBySerialOrRegister(serial, addr string) (device Device, err error) {

	device, err = GetDeviceBySerial(serial)
	if err == nil {
		return
	}

	return RegisterDevice(addr, "auto-registration", pkg.FRPDev{FRPDevSerial: serial})
}

/* MODELS OWNED BY THIS PACKAGE; PASSED TO pkg.FRP.CreateFRPTables AT STARTUP */
func Models() []interface{} {
	return []interface{}{
		&DeviceType{},
		&DataUpload{},
		&Sample{},
		&Alert{},
	}
}
