package fd001

import (
	"encoding/json"
	"fmt"
	"time"

	phao "github.com/eclipse/paho.mqtt.golang"

	"github.com/terralab/frp/pkg"
)

/*
	MQTT DEVICE CLIENT

PUBLISHES ALL SIGNALS FOR A SINGLE DEVICE AS THEY ARE WRITTEN TO THE FRP DATABASE
SUBSCRIBES TO ALL COMMANDS SENT TO THAT DEVICE BY ADMINISTRATORS
*/
func (device *Device) MQTTDeviceClient_Connect() (err error) {

	device.MQTTUser = pkg.MQTT_USER
	device.MQTTPW = pkg.MQTT_PW
	device.MQTTClientID = fmt.Sprintf(
		"FRP-%s-%s-%s",
		device.FRPDevClass,
		device.FRPDevVersion,
		device.FRPDevSerial,
	)

	/* DEVICE CLIENTS AUTOMATICALLY RESUBSCRIBE ON RECONNECT */
	if err = device.FRPMQTTClient_Connect(false, true); err != nil {
		return err
	}

	device.MQTTSubscription_DeviceClient_CMDStatus().Sub(device.FRPMQTTClient)
	device.MQTTSubscription_DeviceClient_CMDThresholds().Sub(device.FRPMQTTClient)
	device.MQTTSubscription_DeviceClient_CMDPing().Sub(device.FRPMQTTClient)

	return err
}

func (device *Device) MQTTDeviceClient_Disconnect() {

	device.MQTTSubscription_DeviceClient_CMDStatus().UnSub(device.FRPMQTTClient)
	device.MQTTSubscription_DeviceClient_CMDThresholds().UnSub(device.FRPMQTTClient)
	device.MQTTSubscription_DeviceClient_CMDPing().UnSub(device.FRPMQTTClient)

	device.FRPMQTTClient_Disconnect()
}

/* SUBSCRIPTIONS ****************************************************************************************/

/* SUBSCRIPTION -> STATUS COMMAND; AN ADMINISTRATOR HAS FORCED A STATUS */
func (device *Device) MQTTSubscription_DeviceClient_CMDStatus() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: device.MQTTTopic_CMDStatus(),
		Handler: func(c phao.Client, msg phao.Message) {

			sta := StatusChange{}
			if err := json.Unmarshal(msg.Payload(), &sta); err != nil {
				pkg.LogErr(err)
				return
			}

			if err := device.SetStatus(sta.Status, sta.Source); err != nil {
				pkg.LogErr(err)
			}
		},
	}
}

/* SUBSCRIPTION -> THRESHOLDS COMMAND; ALERT BOUNDS FOR THIS DEVICE'S TYPE HAVE CHANGED */
func (device *Device) MQTTSubscription_DeviceClient_CMDThresholds() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: device.MQTTTopic_CMDThresholds(),
		Handler: func(c phao.Client, msg phao.Message) {

			dty := DeviceType{}
			if err := json.Unmarshal(msg.Payload(), &dty); err != nil {
				pkg.LogErr(err)
				return
			}

			if dty.DevTypeCode != device.FRPDevTypeCode {
				return
			}
			device.DTY = dty
			DevicesMapWrite(*device)
		},
	}
}

/* SUBSCRIPTION -> PING COMMAND; ANSWERED ON THE SIGNAL PING TOPIC */
func (device *Device) MQTTSubscription_DeviceClient_CMDPing() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: device.MQTTTopic_CMDPing(),
		Handler: func(c phao.Client, msg phao.Message) {
			device.MQTTPublication_DeviceClient_SIGDevicePing()
		},
	}
}

/* PUBLICATIONS ******************************************************************************************/

/* PUBLICATION -> SAMPLE; CALLED ONCE PER READING PERSISTED BY THE UPLOAD ENDPOINT */
func (device *Device) MQTTPublication_DeviceClient_SIGSample(smp Sample) (ok bool) {

	return pkg.MQTTPublication{
		Topic:    device.MQTTTopic_SIGSample(),
		Message:  pkg.MakeMQTTMessage(smp),
		Retained: false,
		WaitMS:   0,
		Qos:      0,
	}.Pub(device.FRPMQTTClient)
}

/* PUBLICATION -> STATUS; RETAINED SO LATE SUBSCRIBERS SEE THE CURRENT STATE */
func (device *Device) MQTTPublication_DeviceClient_SIGStatus(sta StatusChange) (ok bool) {

	return pkg.MQTTPublication{
		Topic:    device.MQTTTopic_SIGStatus(),
		Message:  pkg.MakeMQTTMessage(sta),
		Retained: true,
		WaitMS:   0,
		Qos:      0,
	}.Pub(device.FRPMQTTClient)
}

/* PUBLICATION -> ALERT */
func (device *Device) MQTTPublication_DeviceClient_SIGAlert(alt Alert) (ok bool) {

	return pkg.MQTTPublication{
		Topic:    device.MQTTTopic_SIGAlert(),
		Message:  pkg.MakeMQTTMessage(alt),
		Retained: false,
		WaitMS:   0,
		Qos:      0,
	}.Pub(device.FRPMQTTClient)
}

/* PUBLICATION -> PING; THE ANSWER IS ALSO RECORDED IN THE DevicePings MAP */
func (device *Device) MQTTPublication_DeviceClient_SIGDevicePing() (ok bool) {

	ping := pkg.Ping{
		Time: time.Now().UTC().UnixMilli(),
		OK:   true,
	}
	DevicePingsMapWrite(device.FRPDevSerial, ping)

	return pkg.MQTTPublication{
		Topic:    device.MQTTTopic_SIGDevicePing(),
		Message:  pkg.MakeMQTTMessage(ping),
		Retained: false,
		WaitMS:   0,
		Qos:      0,
	}.Pub(device.FRPMQTTClient)
}
