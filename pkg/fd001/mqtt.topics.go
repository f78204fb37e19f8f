package fd001

import "fmt"

/* MQTT TOPICS ************************************************************************
THESE ARE USED BY ALL TYPES OF CLIENTS: Device, User */

func (device *Device) MQTTTopic_DeviceRoot() (root string) {
	return fmt.Sprintf("%s/%s/%s", device.FRPDevClass, device.FRPDevVersion, device.FRPDevSerial)
}
func (device *Device) MQTTTopic_SIGRoot() (root string) {
	return fmt.Sprintf("%s/sig", device.MQTTTopic_DeviceRoot())
}
func (device *Device) MQTTTopic_CMDRoot() (root string) {
	return fmt.Sprintf("%s/cmd", device.MQTTTopic_DeviceRoot())
}

/* MQTT TOPICS - SIGNAL; FRP -> SUBSCRIBED USER CLIENTS */
func (device *Device) MQTTTopic_SIGSample() (topic string) {
	return fmt.Sprintf("%s/sample", device.MQTTTopic_SIGRoot())
}
func (device *Device) MQTTTopic_SIGStatus() (topic string) {
	return fmt.Sprintf("%s/status", device.MQTTTopic_SIGRoot())
}
func (device *Device) MQTTTopic_SIGAlert() (topic string) {
	return fmt.Sprintf("%s/alert", device.MQTTTopic_SIGRoot())
}
func (device *Device) MQTTTopic_SIGDevicePing() (topic string) {
	return fmt.Sprintf("%s/ping", device.MQTTTopic_SIGRoot())
}

/* MQTT TOPICS - COMMAND; ADMIN HTTP HANDLERS -> LISTENING DEVICES */
func (device *Device) MQTTTopic_CMDStatus() (topic string) {
	return fmt.Sprintf("%s/status", device.MQTTTopic_CMDRoot())
}
func (device *Device) MQTTTopic_CMDThresholds() (topic string) {
	return fmt.Sprintf("%s/thresholds", device.MQTTTopic_CMDRoot())
}
func (device *Device) MQTTTopic_CMDPing() (topic string) {
	return fmt.Sprintf("%s/ping", device.MQTTTopic_CMDRoot())
}
