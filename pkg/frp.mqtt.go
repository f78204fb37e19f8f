/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"encoding/json"
	"fmt"
	"time"

	phao "github.com/eclipse/paho.mqtt.golang" // go get github.com/eclipse/paho.mqtt.golang
)

/*
MQTT CLIENT WRAPPER

ONE PER REGISTERED DEVICE ( FOR LIFE ) AND ONE PER CONNECTED BROWSER SOCKET
*/
type FRPMQTTClient struct {
	MQTTUser     string
	MQTTPW       string
	MQTTClientID string
	phao.ClientOptions
	phao.Client
}

/*
CONNECT TO THE BROKER

clean     -> CleanSession FLAG PASSED TO THE BROKER
auto_sub  -> RESUME SUBSCRIPTIONS AUTOMATICALLY ON RECONNECT
*/
func (fmc *FRPMQTTClient) FRPMQTTClient_Connect(clean, auto_sub bool) (err error) {

	fmc.ClientOptions = *phao.NewClientOptions()
	fmc.AddBroker(MQTT_BROKER)
	fmc.SetUsername(fmc.MQTTUser)
	fmc.SetPassword(fmc.MQTTPW)
	fmc.SetClientID(fmc.MQTTClientID)
	fmc.SetCleanSession(clean)
	fmc.SetResumeSubs(auto_sub)
	fmc.SetKeepAlive(time.Second * 60)
	fmc.SetAutoReconnect(true)
	fmc.SetMaxReconnectInterval(time.Second * 60)
	fmc.OnConnect = func(c phao.Client) {
		LogChk(fmt.Sprintf("FRPMQTTClient: %s connected", fmc.MQTTClientID))
	}
	fmc.OnConnectionLost = func(c phao.Client, err error) {
		LogErr(fmt.Errorf("FRPMQTTClient: %s connection lost: %s", fmc.MQTTClientID, err.Error()))
	}
	fmc.DefaultPublishHandler = func(c phao.Client, msg phao.Message) {
		TraceFunc(fmt.Sprintf("FRPMQTTClient: %s default handler: %s", fmc.MQTTClientID, msg.Topic()))
	}

	c := phao.NewClient(&fmc.ClientOptions)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	fmc.Client = c

	return err
}

func (fmc *FRPMQTTClient) FRPMQTTClient_Disconnect() (err error) {
	if fmc.Client == nil {
		return
	}
	fmc.Client.Disconnect(0)
	fmc.Client = nil
	return err
}

type MQTTSubscription struct {
	Topic   string
	Qos     byte
	Handler phao.MessageHandler
}

func (sub MQTTSubscription) Sub(client FRPMQTTClient) {

	if client.Client == nil {
		return
	}
	token := client.Subscribe(sub.Topic, sub.Qos, sub.Handler)
	token.Wait()
}

func (sub MQTTSubscription) UnSub(client FRPMQTTClient) {

	if client.Client == nil {
		return
	}
	token := client.Unsubscribe(sub.Topic)
	token.Wait()
}

type MQTTPublication struct {
	Topic    string
	Qos      byte
	Retained bool
	Message  string
	WaitMS   int64
}

/*
PUBLISH; RETURNS false WHEN THE BROKER IS UNAVAILABLE

INGEST MUST NOT FAIL BECAUSE THE RELAY IS DOWN, SO CALLERS LOG AND CARRY ON
*/
func (pub MQTTPublication) Pub(client FRPMQTTClient) bool {

	if client.Client == nil {
		return false
	}

	token := client.Publish(
		pub.Topic,
		pub.Qos,
		pub.Retained,
		pub.Message,
	)

	if pub.WaitMS == 0 {
		return token.Wait()
	}
	return token.WaitTimeout(time.Millisecond * time.Duration(pub.WaitMS))
}

func MakeMQTTMessage(mqtt interface{}) (msg string) {

	js, err := json.Marshal(mqtt)
	if err != nil {
		LogErr(err)
	}
	return string(js)
}

/* LAST KNOWN CONTACT FOR A CLIENT; KEYED BY DEVICE SERIAL */
type Ping struct {
	Time int64 `json:"time"`
	OK   bool  `json:"ok"`
}

type PingsMap map[string]Ping
