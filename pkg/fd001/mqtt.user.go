package fd001

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	phao "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/contrib/websocket"

	"github.com/terralab/frp/pkg"
)

/*
	MQTT DEVICE USER CLIENT

SUBSCRIBES TO ALL SIGNALS FOR A SINGLE DEVICE
  - SENDS LIVE DATA TO A SINGLE BROWSER SOCKET AS WSMessage JSON
*/
type DeviceUserClient struct {
	Device
	WSClientID string
	pkg.FRPMQTTClient
	DataOut chan string
	Close   chan struct{}
	Kill    chan struct{}
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

/* CONNECTED DEVICE USER CLIENT *** DO NOT RUN IN GO ROUTINE *** */
func (duc *DeviceUserClient) DeviceUserClient_Connect(c *websocket.Conn, sid string) {

	sid_node := strings.Split(sid, "-")
	duc.WSClientID = fmt.Sprintf("%s-%s", sid_node[len(sid_node)-1], duc.FRPDevSerial)
	duc.DataOut = make(chan string)
	duc.Close = make(chan struct{})
	duc.Kill = make(chan struct{})

	if err := duc.MQTTDeviceUserClient_Connect(); err != nil {
		pkg.LogErr(err)
	}

	/* LISTEN FOR MESSAGES FROM CONNECTED USER */
	go duc.ListenForMessages(c)

	/* KEEP ALIVE GO ROUTINE SEND "live" EVERY 30 SECONDS TO PREVENT DISCONNECT */
	go duc.RunKeepAlive()

	/* SEND THE LAST KNOWN DEVICE STATE AS OF WS CONNECT */
	go duc.SendStateOnConnect()

	/* *** DO NOT RUN IN GO ROUTINE *** SEND MESSAGES TO CONNECTED USER */
	duc.SendMessages(c)
}

func (duc DeviceUserClient) WriteDataOut(js string) {
	defer func() {
		/* SOCKET MAY HAVE CLOSED BETWEEN MQTT DELIVERY AND CHANNEL SEND */
		recover()
	}()
	if duc.DataOut != nil {
		duc.DataOut <- js
	}
}

/* SEND MESSAGES TO CONNECTED USER */
func (duc DeviceUserClient) SendMessages(c *websocket.Conn) {
	open := true
	for open {
		select {

		case <-duc.Close:
			duc.Kill <- struct{}{}
			open = false

		case data := <-duc.DataOut:
			if err := c.WriteMessage(websocket.TextMessage, []byte(data)); err != nil {
				duc.MQTTDeviceUserClient_Disconnect()
				duc.Close <- struct{}{}
			}
		}
	}

	if duc.Close != nil {
		close(duc.Close)
		duc.Close = nil
	}

	if duc.Kill != nil {
		close(duc.Kill)
		duc.Kill = nil
	}

	if duc.DataOut != nil {
		close(duc.DataOut)
		duc.DataOut = nil
	}
}

/* LISTEN FOR MESSAGES FROM CONNECTED USER */
func (duc DeviceUserClient) ListenForMessages(c *websocket.Conn) {
	listen := true
	for listen {
		_, msg, err := c.ReadMessage()
		if err != nil {
			duc.MQTTDeviceUserClient_Disconnect()
			duc.Close <- struct{}{}
			break
		}
		if string(msg) == "close" {
			/* USER HAS CLOSED THE CONNECTION */
			duc.MQTTDeviceUserClient_Disconnect()
			duc.Close <- struct{}{}
			listen = false
		}
	}
}

/* KEEP ALIVE GO ROUTINE SEND "live" EVERY 30 SECONDS TO PREVENT WS DISCONNECT */
func (duc DeviceUserClient) RunKeepAlive() {

	live := true
	for live {
		select {

		case <-duc.Kill:
			live = false

		default:
			time.Sleep(time.Second * 30)
			js, err := json.Marshal(&WSMessage{Type: "live", Data: ""})
			if err != nil {
				pkg.LogErr(err)
			}
			duc.WriteDataOut(string(js))
		}
	}
}

/* SEND THE CACHED DEVICE STATE AS OF WS CONNECT, FALLING BACK TO THE MAP */
func (duc DeviceUserClient) SendStateOnConnect() {
	/* WHEN CALLED FROM DeviceUserClient_Connect,
	WE WANT TO ENSURE duc.SendMessages HAS BEEN STARTED */
	time.Sleep(time.Second * 2)

	sta := duc.Device.StatusChange(STATUS_SOURCE_INGEST)
	if device, ok := DevicesMapRead(duc.FRPDevSerial); ok {
		sta = device.StatusChange(STATUS_SOURCE_INGEST)
	}

	js, err := json.Marshal(&WSMessage{Type: "status", Data: sta})
	if err != nil {
		pkg.LogErr(err)
	}
	duc.WriteDataOut(string(js))
}

/* SUBSCRIPTIONS ****************************************************************************************/

func (duc *DeviceUserClient) MQTTDeviceUserClient_Connect() (err error) {

	/* TODO: replace with user specific credentials */
	duc.MQTTUser = pkg.MQTT_USER
	duc.MQTTPW = pkg.MQTT_PW
	duc.MQTTClientID = fmt.Sprintf("FRP-USER-%s", duc.WSClientID)

	/* DEVICE USER CLIENTS ***DO NOT*** AUTOMATICALLY RESUBSCRIBE */
	if err = duc.FRPMQTTClient_Connect(true, false); err != nil {
		return err
	}

	duc.MQTTSubscription_DeviceUserClient_SIGSample().Sub(duc.FRPMQTTClient)
	duc.MQTTSubscription_DeviceUserClient_SIGStatus().Sub(duc.FRPMQTTClient)
	duc.MQTTSubscription_DeviceUserClient_SIGAlert().Sub(duc.FRPMQTTClient)
	duc.MQTTSubscription_DeviceUserClient_SIGDevicePing().Sub(duc.FRPMQTTClient)

	return err
}

func (duc *DeviceUserClient) MQTTDeviceUserClient_Disconnect() {

	/* UNSUBSCRIBE FROM ALL MQTTSubscriptions */
	duc.MQTTSubscription_DeviceUserClient_SIGSample().UnSub(duc.FRPMQTTClient)
	duc.MQTTSubscription_DeviceUserClient_SIGStatus().UnSub(duc.FRPMQTTClient)
	duc.MQTTSubscription_DeviceUserClient_SIGAlert().UnSub(duc.FRPMQTTClient)
	duc.MQTTSubscription_DeviceUserClient_SIGDevicePing().UnSub(duc.FRPMQTTClient)

	/* DISCONNECT THE FRPMQTTClient */
	duc.FRPMQTTClient_Disconnect()
}

/* SUBSCRIPTION -> SAMPLE */
func (duc *DeviceUserClient) MQTTSubscription_DeviceUserClient_SIGSample() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: duc.MQTTTopic_SIGSample(),
		Handler: func(c phao.Client, msg phao.Message) {

			/* DECODE MESSAGE PAYLOAD TO Sample STRUCT */
			smp := Sample{}
			if err := json.Unmarshal(msg.Payload(), &smp); err != nil {
				pkg.LogErr(err)
			}

			/* CREATE JSON WSMessage STRUCT */
			js, err := json.Marshal(&WSMessage{Type: "sample", Data: smp})
			if err != nil {
				pkg.LogErr(err)
			}

			/* SEND WSMessage AS JSON STRING */
			duc.WriteDataOut(string(js))
		},
	}
}

/* SUBSCRIPTION -> STATUS */
func (duc *DeviceUserClient) MQTTSubscription_DeviceUserClient_SIGStatus() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: duc.MQTTTopic_SIGStatus(),
		Handler: func(c phao.Client, msg phao.Message) {

			/* DECODE MESSAGE PAYLOAD TO StatusChange STRUCT */
			sta := StatusChange{}
			if err := json.Unmarshal(msg.Payload(), &sta); err != nil {
				pkg.LogErr(err)
			}

			/* CREATE JSON WSMessage STRUCT */
			js, err := json.Marshal(&WSMessage{Type: "status", Data: sta})
			if err != nil {
				pkg.LogErr(err)
			}

			/* SEND WSMessage AS JSON STRING */
			duc.WriteDataOut(string(js))
		},
	}
}

/* SUBSCRIPTION -> ALERT */
func (duc *DeviceUserClient) MQTTSubscription_DeviceUserClient_SIGAlert() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: duc.MQTTTopic_SIGAlert(),
		Handler: func(c phao.Client, msg phao.Message) {

			/* DECODE MESSAGE PAYLOAD TO Alert STRUCT */
			alt := Alert{}
			if err := json.Unmarshal(msg.Payload(), &alt); err != nil {
				pkg.LogErr(err)
			}

			/* CREATE JSON WSMessage STRUCT */
			js, err := json.Marshal(&WSMessage{Type: "alert", Data: alt})
			if err != nil {
				pkg.LogErr(err)
			}

			/* SEND WSMessage AS JSON STRING */
			duc.WriteDataOut(string(js))
		},
	}
}

/* SUBSCRIPTION -> DEVICE PING */
func (duc *DeviceUserClient) MQTTSubscription_DeviceUserClient_SIGDevicePing() pkg.MQTTSubscription {
	return pkg.MQTTSubscription{

		Qos:   0,
		Topic: duc.MQTTTopic_SIGDevicePing(),
		Handler: func(c phao.Client, msg phao.Message) {

			/* DECODE MESSAGE PAYLOAD TO Ping STRUCT */
			ping := pkg.Ping{}
			if err := json.Unmarshal(msg.Payload(), &ping); err != nil {
				pkg.LogErr(err)
			}

			/* CREATE JSON WSMessage STRUCT */
			js, err := json.Marshal(&WSMessage{Type: "ping", Data: ping})
			if err != nil {
				pkg.LogErr(err)
			}

			/* SEND WSMessage AS JSON STRING */
			duc.WriteDataOut(string(js))
		},
	}
}

/* PUBLICATIONS ******************************************************************************************/
/* NONE; WE DON'T DO THAT;
ALL COMMANDS SENT TO THE DEVICE GO THROUGH HTTP HANDLERS
*/
